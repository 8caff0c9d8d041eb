package entity

// InvoiceRecord is the structured result of one invoice page.
// Fields that were not found keep their zero value.
type InvoiceRecord struct {
	// Product details header
	SKU     string `json:"sku" yaml:"sku"`
	Size    string `json:"size" yaml:"size"`
	Qty     int    `json:"qty" yaml:"qty"`
	Color   string `json:"color" yaml:"color"`
	OrderNo string `json:"order_no" yaml:"order_no"`

	ShipTo string `json:"ship_to" yaml:"ship_to"`

	SellerName  string `json:"seller_name" yaml:"seller_name"`
	SellerGSTIN string `json:"seller_gstin" yaml:"seller_gstin"`

	PurchaseOrderNo string `json:"purchase_order_no" yaml:"purchase_order_no"`
	InvoiceNo       string `json:"invoice_no" yaml:"invoice_no"`
	OrderDate       string `json:"order_date" yaml:"order_date"`
	InvoiceDate     string `json:"invoice_date" yaml:"invoice_date"`

	LineItems []LineItem `json:"line_items" yaml:"line_items"`

	TotalTax   Money `json:"total_tax" yaml:"total_tax"`
	GrandTotal Money `json:"grand_total" yaml:"grand_total"`
}

// LineItem is one product row of the invoice table.
type LineItem struct {
	Description  string `json:"description" yaml:"description"`
	HSN          string `json:"hsn" yaml:"hsn"`
	Qty          string `json:"qty" yaml:"qty"` // digits or "NA"
	GrossAmount  Money  `json:"gross_amount" yaml:"gross_amount"`
	Discount     Money  `json:"discount" yaml:"discount"`
	TaxableValue Money  `json:"taxable_value" yaml:"taxable_value"`
	TaxClause    string `json:"tax_clause" yaml:"tax_clause"` // raw, e.g. "CGST @1.5% Rs.8.30SGST @1.5% Rs.8.30"
	Total        Money  `json:"total" yaml:"total"`
}

// TaxComponent is one "{IGST|CGST|SGST} @rate% Rs.amount" part of a tax clause.
type TaxComponent struct {
	Kind   string `json:"kind" yaml:"kind"`
	Rate   Money  `json:"rate" yaml:"rate"`
	Amount Money  `json:"amount" yaml:"amount"`
}

// NewInvoiceRecord returns a record with every field at its default.
func NewInvoiceRecord() InvoiceRecord {
	return InvoiceRecord{LineItems: []LineItem{}}
}

// Clone returns a copy that shares no slice memory with r.
func (r InvoiceRecord) Clone() InvoiceRecord {
	items := make([]LineItem, len(r.LineItems))
	copy(items, r.LineItems)
	r.LineItems = items
	return r
}

// IsEmpty reports whether no anchor matched at all.
func (r InvoiceRecord) IsEmpty() bool {
	return r.SKU == "" && r.Size == "" && r.Qty == 0 && r.Color == "" && r.OrderNo == "" &&
		r.ShipTo == "" && r.SellerName == "" && r.SellerGSTIN == "" &&
		r.PurchaseOrderNo == "" && r.InvoiceNo == "" && r.OrderDate == "" && r.InvoiceDate == "" &&
		len(r.LineItems) == 0 && r.TotalTax.IsZero() && r.GrandTotal.IsZero()
}
