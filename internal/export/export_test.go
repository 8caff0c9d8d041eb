package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
	"github.com/joseph-ayodele/invoice-extractor/internal/repository"
)

func samplePage(fileID uuid.UUID, page int) entity.PageResult {
	rec := entity.NewInvoiceRecord()
	rec.SKU = "mfymzabr"
	rec.Size = "Free Size"
	rec.Qty = 1
	rec.Color = "Gold"
	rec.OrderNo = "204827517525195264_1"
	rec.SellerGSTIN = "10DQLPA9951C1Z5"
	rec.InvoiceNo = "d2rnq26255"
	rec.LineItems = []entity.LineItem{
		{
			Description: "Cotton Kurti - L", HSN: "620442", Qty: "1",
			GrossAmount: entity.MustMoney("399.00"), Discount: entity.MustMoney("20"),
			TaxableValue: entity.MustMoney("361.00"), TaxClause: "CGST @2.5% Rs.9.03SGST @2.5% Rs.9.02", Total: entity.MustMoney("379.05"),
		},
	}
	rec.TotalTax = entity.MustMoney("18.05")
	rec.GrandTotal = entity.MustMoney("379.05")
	return entity.PageResult{
		FileID:      fileID,
		Page:        page,
		Status:      constants.PageStatusOK,
		Record:      rec,
		ExtractedAt: time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNewDocuments_SplitsTaxes(t *testing.T) {
	docs := NewDocuments("in/a.pdf", []entity.PageResult{samplePage(uuid.New(), 1)})
	require.Len(t, docs, 1)
	assert.Equal(t, "in/a.pdf", docs[0].Source)
	require.Len(t, docs[0].Taxes, 2)
	assert.Equal(t, "CGST", docs[0].Taxes[0].Kind)
	assert.Equal(t, "SGST", docs[0].Taxes[1].Kind)
	assert.Equal(t, "9.02", docs[0].Taxes[1].Amount.String())
	assert.Equal(t, 1, docs[0].Taxes[0].Line)
	assert.Equal(t, 1, docs[0].Taxes[1].Line)
}

func TestNewDocuments_TaxesKeepTheirLineItem(t *testing.T) {
	p := samplePage(uuid.New(), 1)
	p.Record.LineItems = append(p.Record.LineItems,
		entity.LineItem{Description: "no clause", HSN: "620442", Qty: "1"},
		entity.LineItem{
			Description: "Jhumka", HSN: "711790", Qty: "NA",
			GrossAmount: entity.MustMoney("570.00"), TaxableValue: entity.MustMoney("553.40"),
			TaxClause: "IGST @3.0% Rs.16.60", Total: entity.MustMoney("570.00"),
		},
	)

	docs := NewDocuments("a.pdf", []entity.PageResult{p})
	require.Len(t, docs[0].Taxes, 3)

	lines := make([]int, 0, 3)
	for _, tax := range docs[0].Taxes {
		lines = append(lines, tax.Line)
	}
	assert.Equal(t, []int{1, 1, 3}, lines)
	assert.Equal(t, "IGST", docs[0].Taxes[2].Kind)
	assert.Equal(t, "16.60", docs[0].Taxes[2].Amount.String())

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FormatJSON, docs))
	assert.Contains(t, buf.String(), `"line": 3`)
}

func TestEncode(t *testing.T) {
	docs := NewDocuments("a.pdf", []entity.PageResult{samplePage(uuid.New(), 1)})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, FormatJSON, docs))

		var got []map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		require.Len(t, got, 1)
		inv := got[0]["invoice"].(map[string]any)
		assert.Equal(t, "mfymzabr", inv["sku"])
		assert.Equal(t, "379.05", inv["grand_total"])
		item := inv["line_items"].([]any)[0].(map[string]any)
		assert.Equal(t, "20.00", item["discount"])
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, FormatYAML, docs))

		var got []map[string]any
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		require.Len(t, got, 1)
		inv := got[0]["invoice"].(map[string]any)
		assert.Equal(t, "d2rnq26255", inv["invoice_no"])
		assert.Equal(t, "18.05", fmt.Sprint(inv["total_tax"]))
	})

	t.Run("empty list is valid json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, FormatJSON, nil))
		assert.Equal(t, "[]\n", buf.String())
	})

	t.Run("unsupported format", func(t *testing.T) {
		assert.ErrorIs(t, Encode(io.Discard, "csv", docs), common.ErrUnsupportedFormat)
	})
}

func TestEncode_JSONRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *Document)
	}{
		{"short sku", func(d *Document) { d.Invoice.SKU = "abc" }},
		{"order no without suffix", func(d *Document) { d.Invoice.OrderNo = "204827517525195264" }},
		{"hsn length", func(d *Document) { d.Invoice.LineItems[0].HSN = "6204" }},
		{"unknown status", func(d *Document) { d.Status = "DONE" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs := NewDocuments("a.pdf", []entity.PageResult{samplePage(uuid.New(), 1)})
			tt.mutate(&docs[0])

			var buf bytes.Buffer
			err := Encode(&buf, FormatJSON, docs)
			assert.ErrorIs(t, err, common.ErrValidation)
			assert.Zero(t, buf.Len(), "nothing is written for an invalid document")
		})
	}
}

func TestEncode_JSONAcceptsMissingFields(t *testing.T) {
	p := samplePage(uuid.New(), 1)
	p.Record = entity.NewInvoiceRecord()
	p.Status = constants.PageStatusEmpty
	assert.NoError(t, Encode(io.Discard, FormatJSON, NewDocuments("a.pdf", []entity.PageResult{p})))
}

func TestWriteXLSX(t *testing.T) {
	id := uuid.New()
	docs := NewDocuments("a.pdf", []entity.PageResult{samplePage(id, 1), samplePage(id, 2)})

	b, err := WriteXLSX(docs)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetInvoices, SheetLineItems}, f.GetSheetList())

	rows, err := f.GetRows(SheetInvoices)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, invoiceHeaders, rows[0])
	assert.Equal(t, "mfymzabr", rows[1][4])
	assert.Equal(t, "379.05", rows[2][17])

	items, err := f.GetRows(SheetLineItems)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "620442", items[1][5])
	assert.Equal(t, "18.05", items[1][11])
}

func TestService_Export(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, err := repository.Open(ctx, repository.Config{Driver: repository.DriverSQLite, DSN: ":memory:"}, logger)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(ctx))

	files := repository.NewInvoiceFileRepository(db, logger)
	invoices := repository.NewInvoiceRepository(db, logger)

	file := &entity.InvoiceFile{SourcePath: "/in/a.pdf", Filename: "a.pdf", FileExt: "pdf", ContentHash: []byte{1, 2}, Pages: 1}
	require.NoError(t, files.Create(ctx, file))
	p := samplePage(file.ID, 1)
	require.NoError(t, invoices.SavePage(ctx, &p))

	svc := NewService(files, invoices, logger)

	docs, err := svc.Documents(ctx, uuid.Nil)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "/in/a.pdf", docs[0].Source)

	var buf bytes.Buffer
	require.NoError(t, svc.Export(ctx, &buf, FormatJSON, file.ID))
	assert.Contains(t, buf.String(), `"sku": "mfymzabr"`)

	b, err := svc.ExportXLSX(ctx, file.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, b)
}
