package constants

// PageStatus is the canonical status for rows in invoice_page.
type PageStatus string

// Stable values (store these exact strings in DB).
const (
	PageStatusOK      PageStatus = "OK"      // all core anchors matched
	PageStatusPartial PageStatus = "PARTIAL" // some fields defaulted
	PageStatusEmpty   PageStatus = "EMPTY"   // page did not look like an invoice
	PageStatusFailed  PageStatus = "FAILED"  // a stage escalated; record holds what ran before it
)
