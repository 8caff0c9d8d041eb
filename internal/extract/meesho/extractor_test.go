package meesho

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

const (
	headerBlock = "Product DetailsSKUSizeQtyColorOrder No.mfymzabrFree Size1Gold204827517525195264_1"
	shipToBlock = "BILL TO / SHIP TO Jane Doe, 12 MG Road, Bengaluru, Karnataka - 560001 "
	sellerBlock = "Sold by : FAIZAN AHMAD Shop No 4, Main Bazaar, Patna GSTIN - 10DQLPA9951C1Z5 "
	orderBlock  = "Purchase Order No.204827517525195264Invoice No.d2rnq26255Order Date01.10.2025Invoice Date02.10.2025"
	tableHeader = "DescriptionHSNQtyGross AmountDiscountTaxable ValueTaxesTotal"
	igstRow     = "Kanaka Mayuri Jhumka - Free Size711790NARs.570.00Rs.0.00Rs.553.40IGST @3.0% Rs.16.60Rs.570.00"
	otherRow    = "Other Charges Rs.0.00"
	trailer     = "TotalRs.17.85Rs.613.00"
)

func samplePage() string {
	return headerBlock + shipToBlock + sellerBlock + orderBlock + tableHeader + igstRow + otherRow + trailer
}

func newTestExtractor() *Extractor {
	return NewExtractor(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestExtract_FullPage(t *testing.T) {
	rec := newTestExtractor().Extract(samplePage())

	assert.Equal(t, "mfymzabr", rec.SKU)
	assert.Equal(t, "Free Size", rec.Size)
	assert.Equal(t, 1, rec.Qty)
	assert.Equal(t, "Gold", rec.Color)
	assert.Equal(t, "204827517525195264_1", rec.OrderNo)
	assert.Equal(t, "Jane Doe, 12 MG Road, Bengaluru, Karnataka - 560001", rec.ShipTo)
	assert.Equal(t, "FAIZAN AHMAD", rec.SellerName)
	assert.Equal(t, "10DQLPA9951C1Z5", rec.SellerGSTIN)
	assert.Equal(t, "204827517525195264", rec.PurchaseOrderNo)
	assert.Equal(t, "d2rnq26255", rec.InvoiceNo)
	assert.Equal(t, "01.10.2025", rec.OrderDate)
	assert.Equal(t, "02.10.2025", rec.InvoiceDate)

	require.Len(t, rec.LineItems, 1)
	assert.Equal(t, "Kanaka Mayuri Jhumka - Free Size", rec.LineItems[0].Description)
	assert.Equal(t, "17.85", rec.TotalTax.String())
	assert.Equal(t, "613.00", rec.GrandTotal.String())
}

func TestExtract_Scenarios(t *testing.T) {
	e := newTestExtractor()

	t.Run("header", func(t *testing.T) {
		rec := e.Extract("xx " + headerBlock + " yy")
		assert.Equal(t, "mfymzabr", rec.SKU)
		assert.Equal(t, "Free Size", rec.Size)
		assert.Equal(t, 1, rec.Qty)
		assert.Equal(t, "Gold", rec.Color)
		assert.Equal(t, "204827517525195264_1", rec.OrderNo)
	})

	t.Run("ship to", func(t *testing.T) {
		rec := e.Extract("BILL TO / SHIP TO Jane Doe, 12 MG Road Sold by")
		assert.Equal(t, "Jane Doe, 12 MG Road", rec.ShipTo)
	})

	t.Run("ship to across lines", func(t *testing.T) {
		rec := e.Extract("BILL TO / SHIP TO\nJane Doe\n12 MG Road\nSold by")
		assert.Equal(t, "Jane Doe\n12 MG Road", rec.ShipTo)
	})

	t.Run("seller", func(t *testing.T) {
		rec := e.Extract("Sold by : FAIZAN AHMAD Shop No 4 GSTIN - 10DQLPA9951C1Z5")
		assert.Equal(t, "FAIZAN AHMAD", rec.SellerName)
		assert.Equal(t, "10DQLPA9951C1Z5", rec.SellerGSTIN)
	})

	t.Run("seller name followed by GSTIN", func(t *testing.T) {
		rec := e.Extract("Sold by : ABC TRADERS GSTIN: 27AAAAA0000A1Z5")
		assert.Equal(t, "ABC TRADERS", rec.SellerName)
		assert.Equal(t, "27AAAAA0000A1Z5", rec.SellerGSTIN)
	})

	t.Run("line item", func(t *testing.T) {
		rec := e.Extract(tableHeader + igstRow + trailer)
		require.Len(t, rec.LineItems, 1)
		item := rec.LineItems[0]
		assert.Equal(t, "711790", item.HSN)
		assert.Equal(t, "NA", item.Qty)
		assert.Equal(t, "570.00", item.GrossAmount.String())
		assert.Equal(t, "0.00", item.Discount.String())
		assert.Equal(t, "553.40", item.TaxableValue.String())
		assert.Equal(t, "IGST @3.0% Rs.16.60", item.TaxClause)
		assert.Equal(t, "570.00", item.Total.String())
	})

	t.Run("totals", func(t *testing.T) {
		rec := e.Extract(trailer)
		assert.Equal(t, "17.85", rec.TotalTax.String())
		assert.Equal(t, "613.00", rec.GrandTotal.String())
	})
}

func TestExtract_CGSTAndSGSTRow(t *testing.T) {
	row := "Cotton Kurti - L6204421Rs.399.00Rs.20.00Rs.361.00CGST @2.5% Rs.9.03SGST @2.5% Rs.9.02Rs.379.05"
	rec := newTestExtractor().Extract(tableHeader + igstRow + row + trailer)

	require.Len(t, rec.LineItems, 2)
	assert.Equal(t, "Kanaka Mayuri Jhumka - Free Size", rec.LineItems[0].Description)

	item := rec.LineItems[1]
	assert.Equal(t, "Cotton Kurti - L", item.Description)
	assert.Equal(t, "620442", item.HSN)
	assert.Equal(t, "1", item.Qty)
	assert.Equal(t, "CGST @2.5% Rs.9.03SGST @2.5% Rs.9.02", item.TaxClause)
	assert.Equal(t, "379.05", item.Total.String())

	parts, err := ParseTaxClause(item.TaxClause)
	require.NoError(t, err)
	require.Len(t, parts, 2)
	assert.Equal(t, "CGST", parts[0].Kind)
	assert.Equal(t, "SGST", parts[1].Kind)
}

func TestExtract_TableTerminatedByBareTotal(t *testing.T) {
	rec := newTestExtractor().Extract(tableHeader + igstRow + "Total: Rs. 17.85 Rs. 613.00")

	require.Len(t, rec.LineItems, 1)
	assert.Equal(t, "711790", rec.LineItems[0].HSN)
	assert.True(t, rec.TotalTax.IsZero())
	assert.True(t, rec.GrandTotal.IsZero())
}

func TestExtract_UnmatchedRowsAreSkipped(t *testing.T) {
	rec := newTestExtractor().Extract(tableHeader + igstRow + "garbled 123 Rs.x" + trailer)
	require.Len(t, rec.LineItems, 1)
}

func TestExtract_HeaderFallbacks(t *testing.T) {
	// A six-character SKU defeats the composite pattern; the per-field patterns still apply.
	rec := newTestExtractor().Extract("Product DetailsSKUSizeQtyColorOrder No.abc123XL2Blue204827517525195264_3")

	assert.Equal(t, "", rec.Size)
	assert.Equal(t, 2, rec.Qty)
	assert.Equal(t, "Blue", rec.Color)
	assert.Equal(t, "204827517525195264_3", rec.OrderNo)
}

func TestExtract_HeaderFieldsStayInProductDetailsBlock(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"no product details block", orderBlock + tableHeader + igstRow + trailer},
		{"short sku then table", "Product DetailsSKUSizeQtyColorOrder No.abc123 " + sellerBlock + orderBlock + tableHeader + igstRow + trailer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newTestExtractor().Extract(tt.text)

			assert.Equal(t, "", rec.SKU)
			assert.Equal(t, 0, rec.Qty, "line-item qty must not leak into the header")
			assert.Equal(t, "", rec.Size)
			assert.Equal(t, "", rec.Color)
			assert.Equal(t, "", rec.OrderNo)
			require.Len(t, rec.LineItems, 1)
			assert.Equal(t, "d2rnq26255", rec.InvoiceNo)
		})
	}
}

func TestHeaderScope(t *testing.T) {
	_, ok := headerScope(orderBlock + tableHeader)
	assert.False(t, ok, "Purchase Order No. is not a header label")

	scope, ok := headerScope("xx " + headerBlock + shipToBlock + orderBlock)
	require.True(t, ok)
	assert.Equal(t, headerBlock, scope)
}

func TestExtract_UnknownColourIsKept(t *testing.T) {
	rec := newTestExtractor().Extract("Product DetailsSKUSizeQtyColorOrder No.abcd1234M3Chartreuse204827517525195264_2")
	assert.Equal(t, "M", rec.Size)
	assert.Equal(t, 3, rec.Qty)
	assert.Equal(t, "Chartreuse", rec.Color)
}

func TestExtract_PartialFailureWithoutTableHeader(t *testing.T) {
	text := strings.Replace(samplePage(), tableHeader, "", 1)
	res := newTestExtractor().ExtractFields(text)

	require.NoError(t, res.Err)
	assert.Empty(t, res.Record.LineItems)
	assert.NotNil(t, res.Record.LineItems)
	assert.Equal(t, "mfymzabr", res.Record.SKU)
	assert.Equal(t, "204827517525195264_1", res.Record.OrderNo)
	assert.Equal(t, "FAIZAN AHMAD", res.Record.SellerName)
	assert.Equal(t, "10DQLPA9951C1Z5", res.Record.SellerGSTIN)
	assert.Equal(t, "d2rnq26255", res.Record.InvoiceNo)
	assert.Equal(t, constants.PageStatusPartial, res.Status)
}

func TestExtractFields_MalformedNumericStopsRun(t *testing.T) {
	badRow := strings.Replace(igstRow, "Rs.570.00Rs.0.00", "Rs.57.0.00Rs.0.00", 1)
	text := headerBlock + sellerBlock + tableHeader + badRow + trailer

	res := newTestExtractor().ExtractFields(text)

	require.Error(t, res.Err)
	var stageErr *StageError
	require.True(t, errors.As(res.Err, &stageErr))
	assert.Equal(t, stageTable, stageErr.Stage)
	assert.True(t, errors.Is(res.Err, common.ErrMalformedNumeric))
	assert.True(t, IsMalformedNumeric(res.Err))

	assert.Equal(t, []string{stageHeader, stageShipTo, stageSeller, stageOrder}, res.Stages)
	assert.Equal(t, constants.PageStatusFailed, res.Status)
	assert.Equal(t, "mfymzabr", res.Record.SKU)
	assert.Equal(t, "FAIZAN AHMAD", res.Record.SellerName)
	assert.Empty(t, res.Record.LineItems)
	assert.True(t, res.Record.GrandTotal.IsZero(), "totals must not run after a failed stage")
}

func TestExtractFields_FailedStageLeavesNothingBehind(t *testing.T) {
	header := "Product DetailsSKUSizeQtyColorOrder No.mfymzabrFree Size99999999999999999999Gold204827517525195264_1"

	res := newTestExtractor().ExtractFields(header + sellerBlock)

	var stageErr *StageError
	require.True(t, errors.As(res.Err, &stageErr))
	assert.Equal(t, stageHeader, stageErr.Stage)
	assert.True(t, IsMalformedNumeric(res.Err))
	assert.Empty(t, res.Stages)
	assert.Equal(t, "", res.Record.SKU, "sku was matched before qty failed but belongs to the failed stage")
	assert.Equal(t, 0, res.Record.Qty)
	assert.Equal(t, constants.PageStatusFailed, res.Status)
}

func TestExtractFields_Status(t *testing.T) {
	e := newTestExtractor()
	tests := []struct {
		name string
		text string
		want constants.PageStatus
	}{
		{"complete page", samplePage(), constants.PageStatusOK},
		{"empty text", "", constants.PageStatusEmpty},
		{"unrelated text", "Lorem ipsum dolor sit amet", constants.PageStatusEmpty},
		{"seller only", sellerBlock, constants.PageStatusPartial},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.ExtractFields(tt.text)
			assert.Equal(t, tt.want, res.Status)
			assert.NoError(t, res.Err)
			assert.NotNil(t, res.Record.LineItems)
		})
	}
}

func TestExtract_Idempotent(t *testing.T) {
	e := newTestExtractor()
	text := samplePage()
	assert.Equal(t, e.Extract(text), e.Extract(text))
}

func TestExtract_ConcurrentUse(t *testing.T) {
	e := newTestExtractor()
	text := samplePage()
	want := e.Extract(text)

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = e.Extract(text).OrderNo
		}(i)
	}
	wg.Wait()
	for _, got := range results {
		assert.Equal(t, want.OrderNo, got)
	}
}

func TestExtract_FieldProperties(t *testing.T) {
	rec := newTestExtractor().Extract(samplePage())
	assert.Len(t, rec.SKU, 8)
	assert.Len(t, rec.SellerGSTIN, 15)
	assert.Len(t, rec.InvoiceNo, 10)
	assert.Regexp(t, `^\d{15,}_\d+$`, rec.OrderNo)
	assert.Empty(t, ValidateRecord(rec))
}
