package meesho

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/invoice-extractor/constants"
)

// Literal anchors of the Meesho invoice layout as they appear in flattened text.
const (
	productDetailsLabel = `Product DetailsSKUSizeQtyColorOrder No\.`
	tableHeaderLabel    = tableHeaderText
)

// Plain-text forms of the section labels, for bounding the header block.
const (
	productDetailsText = "Product DetailsSKUSizeQtyColorOrder No."
	shipToText         = "BILL TO / SHIP TO"
	soldByText         = "Sold by"
	purchaseOrderText  = "Purchase Order No."
	tableHeaderText    = "DescriptionHSNQtyGross AmountDiscountTaxable ValueTaxesTotal"
)

// FieldPattern is an ordered chain of patterns for one logical field.
// Capture group 1 (and up) carries the value.
type FieldPattern struct {
	Field     string
	Primary   *regexp.Regexp
	Fallbacks []*regexp.Regexp
}

// Find returns the submatches of the first pattern in the chain that matches, or nil.
func (fp FieldPattern) Find(text string) []string {
	m, _ := fp.FindIndexed(text)
	return m
}

// FindIndexed is Find plus the position in the chain that matched (0 = primary).
func (fp FieldPattern) FindIndexed(text string) ([]string, int) {
	if fp.Primary != nil {
		if m := fp.Primary.FindStringSubmatch(text); m != nil {
			return m, 0
		}
	}
	for i, re := range fp.Fallbacks {
		if m := re.FindStringSubmatch(text); m != nil {
			return m, i + 1
		}
	}
	return nil, -1
}

// Patterns is the compiled catalogue. Build it once with NewPatterns and share it;
// *regexp.Regexp is safe for concurrent use.
type Patterns struct {
	SKU FieldPattern
	// Details spans size, qty, colour and order number right after the SKU.
	Details FieldPattern

	// Per-field header patterns, used only when Details does not match.
	Size    FieldPattern
	OrderNo FieldPattern
	Color   FieldPattern
	Qty     FieldPattern

	ShipTo      FieldPattern
	SellerName  FieldPattern
	SellerGSTIN FieldPattern

	PurchaseOrderNo FieldPattern
	InvoiceNo       FieldPattern
	OrderDate       FieldPattern
	InvoiceDate     FieldPattern

	TableRegion  FieldPattern
	Row          *regexp.Regexp
	TaxComponent *regexp.Regexp
	Totals       FieldPattern
}

// sizeAlternation renders the size vocabulary in try-order, then numeric dimensions.
func sizeAlternation() string {
	sizes := constants.SizesAsStringSlice()
	quoted := make([]string, len(sizes))
	for i, s := range sizes {
		quoted[i] = regexp.QuoteMeta(s)
	}
	return strings.Join(quoted, "|") + `|\d+\s*(?:cm|inch)`
}

// NewPatterns compiles the catalogue. It panics only on a programming error in the literals.
func NewPatterns() *Patterns {
	sizes := sizeAlternation()

	return &Patterns{
		SKU: FieldPattern{
			Field:   "sku",
			Primary: regexp.MustCompile(productDetailsLabel + `(\w{8})`),
		},
		Details: FieldPattern{
			Field:   "details",
			Primary: regexp.MustCompile(`(?i)` + productDetailsLabel + `\w{8}(` + sizes + `)(\d+)(\w+?)(\d{15,}_\d+)`),
		},

		Size: FieldPattern{
			Field:   "size",
			Primary: regexp.MustCompile(`(?i)Order No\.\w{8}(` + sizes + `)`),
		},
		OrderNo: FieldPattern{
			Field:   "order_no",
			Primary: regexp.MustCompile(`Order No\.[\w\s]+?(\d{15,}_\d+)`),
		},
		Color: FieldPattern{
			Field:   "color",
			Primary: regexp.MustCompile(`(?i)(?:Free Size|Size|XL|L|M|S)\d+(\w+?)\d{15,}_`),
		},
		Qty: FieldPattern{
			Field:   "qty",
			Primary: regexp.MustCompile(`(?i)(?:Free Size|Size|XL|L|M|S)(\d+)`),
		},

		ShipTo: FieldPattern{
			Field:   "ship_to",
			Primary: regexp.MustCompile(`(?s)BILL TO / SHIP TO\s*(.+?)Sold by`),
		},
		SellerName: FieldPattern{
			Field: "seller_name",
			// The name is the upper-case run before the first Capitalised word or GSTIN.
			Primary: regexp.MustCompile(`Sold by\s*:\s*([A-Z\s]+?)(?:\s+[A-Z][a-z]|\s+GSTIN)`),
		},
		SellerGSTIN: FieldPattern{
			Field:   "seller_gstin",
			Primary: regexp.MustCompile(`(?i)GSTIN\s*[:\-–]?\s*([A-Z0-9]{15})`),
		},

		PurchaseOrderNo: FieldPattern{
			Field:   "purchase_order_no",
			Primary: regexp.MustCompile(`Purchase Order No\.(\d+)`),
		},
		InvoiceNo: FieldPattern{
			Field:   "invoice_no",
			Primary: regexp.MustCompile(`(?i)Invoice No\.([a-z0-9]{10})`),
		},
		OrderDate: FieldPattern{
			Field:     "order_date",
			Primary:   regexp.MustCompile(`Order Date([\d.]+)`),
			Fallbacks: []*regexp.Regexp{regexp.MustCompile(`Order Date\s*:?\s*(\d[\d.]*)`)},
		},
		InvoiceDate: FieldPattern{
			Field:     "invoice_date",
			Primary:   regexp.MustCompile(`Invoice Date([\d.]+)`),
			Fallbacks: []*regexp.Regexp{regexp.MustCompile(`Invoice Date\s*:?\s*(\d[\d.]*)`)},
		},

		TableRegion: FieldPattern{
			Field:     "line_items",
			Primary:   regexp.MustCompile(`(?s)` + tableHeaderLabel + `(.+?)TotalRs\.`),
			Fallbacks: []*regexp.Regexp{regexp.MustCompile(`(?s)` + tableHeaderLabel + `(.+?)Total`)},
		},
		// description, hsn, qty, gross, discount, taxable, tax clause(s), total
		Row: regexp.MustCompile(`(?s)(.+?)(\d{6})(\d+|NA)Rs\.([\d.]+)Rs\.([\d.]+)Rs\.([\d.]+)` +
			`((?:(?:IGST|CGST|SGST)\s*@[\d.]+%\s*:?\s*Rs\.[\d.]+\s*)+)Rs\.([\d.]+)`),
		TaxComponent: taxComponentRe,
		Totals: FieldPattern{
			Field:   "totals",
			Primary: regexp.MustCompile(`TotalRs\.([\d.]+)Rs\.([\d.]+)`),
		},
	}
}

// headerScope returns the product details block: from its label up to the next
// section label. The loose per-field header patterns only ever see this block.
// ok is false when the page has no product details label.
func headerScope(text string) (string, bool) {
	start := strings.Index(text, productDetailsText)
	if start < 0 {
		return "", false
	}
	block := text[start:]
	end := len(block)
	for _, next := range []string{shipToText, soldByText, purchaseOrderText, tableHeaderText} {
		if i := strings.Index(block[len(productDetailsText):], next); i >= 0 && len(productDetailsText)+i < end {
			end = len(productDetailsText) + i
		}
	}
	return block[:end], true
}
