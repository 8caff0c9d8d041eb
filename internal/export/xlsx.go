package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
	"github.com/joseph-ayodele/invoice-extractor/internal/extract/meesho"
)

const (
	SheetInvoices  = "Invoices"
	SheetLineItems = "Line Items"
)

var invoiceHeaders = []string{
	"Source", "Page", "Status", "Needs Review",
	"SKU", "Size", "Qty", "Color", "Order No",
	"Ship To", "Seller", "Seller GSTIN",
	"Purchase Order No", "Invoice No", "Order Date", "Invoice Date",
	"Total Tax", "Grand Total", "Issues",
}

var lineItemHeaders = []string{
	"Source", "Page", "Invoice No", "#",
	"Description", "HSN", "Qty",
	"Gross Amount", "Discount", "Taxable Value", "Taxes", "Tax Amount", "Total",
}

// WriteXLSX returns a workbook (as bytes) with one row per page on the Invoices
// sheet and one row per product on the Line Items sheet.
func WriteXLSX(docs []Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetInvoices); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetLineItems); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx style: %w", err)
	}

	writeHeader(f, SheetInvoices, invoiceHeaders, bold)
	writeHeader(f, SheetLineItems, lineItemHeaders, bold)

	row, itemRow := 2, 2
	for _, d := range docs {
		rec := d.Invoice
		writeRow(f, SheetInvoices, row,
			d.Source, d.Page, string(d.Status), d.NeedsReview,
			rec.SKU, rec.Size, rec.Qty, rec.Color, rec.OrderNo,
			rec.ShipTo, rec.SellerName, rec.SellerGSTIN,
			rec.PurchaseOrderNo, rec.InvoiceNo, rec.OrderDate, rec.InvoiceDate,
			amount(rec.TotalTax), amount(rec.GrandTotal), strings.Join(d.Issues, "; "),
		)
		row++

		for i, it := range rec.LineItems {
			var tax any
			if comps, err := meesho.ParseTaxClause(it.TaxClause); err == nil && len(comps) > 0 {
				tax = amount(meesho.SumTax(comps))
			}
			writeRow(f, SheetLineItems, itemRow,
				d.Source, d.Page, rec.InvoiceNo, i+1,
				it.Description, it.HSN, it.Qty,
				amount(it.GrossAmount), amount(it.Discount), amount(it.TaxableValue),
				it.TaxClause, tax, amount(it.Total),
			)
			itemRow++
		}
	}

	_ = f.SetColWidth(SheetInvoices, "A", "A", 40) // source
	_ = f.SetColWidth(SheetInvoices, "E", "I", 16)
	_ = f.SetColWidth(SheetInvoices, "J", "J", 50) // ship to
	_ = f.SetColWidth(SheetInvoices, "K", "P", 20)
	_ = f.SetColWidth(SheetInvoices, "S", "S", 60) // issues
	_ = f.SetColWidth(SheetLineItems, "A", "A", 40)
	_ = f.SetColWidth(SheetLineItems, "E", "E", 48) // description
	_ = f.SetColWidth(SheetLineItems, "K", "K", 36) // tax clause

	idx, _ := f.GetSheetIndex(SheetInvoices)
	f.SetActiveSheet(idx)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.SetCellStyle(sheet, "A1", last, style)
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) {
	for i, v := range values {
		if v == nil {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

// amount keeps the two-decimal text rendering so spreadsheets show 570.00, not 570.
func amount(m entity.Money) string {
	return m.String()
}
