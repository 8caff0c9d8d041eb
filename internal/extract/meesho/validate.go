package meesho

import (
	"fmt"
	"regexp"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

var (
	reSKU       = regexp.MustCompile(`^[A-Za-z0-9]{8}$`)
	reGSTIN     = regexp.MustCompile(`^[A-Za-z0-9]{15}$`)
	reInvoiceNo = regexp.MustCompile(`^[A-Za-z0-9]{10}$`)
	reOrderNo   = regexp.MustCompile(`^\d{15,}_\d+$`)
	reHSN       = regexp.MustCompile(`^\d{6}$`)
	reItemQty   = regexp.MustCompile(`^(\d+|NA)$`)
)

// ValidateRecord checks the shape of the populated fields. Empty fields are not
// violations. Callers flag the page for review; the record is never rejected.
func ValidateRecord(rec entity.InvoiceRecord) []common.ValidationError {
	v := common.NewValidator().
		Field("sku", rec.SKU, common.Optional(common.Matches(reSKU, "8 alphanumeric characters"))).
		Field("order_no", rec.OrderNo, common.Optional(common.Matches(reOrderNo, "digits_digits with at least 15 leading digits"))).
		Field("seller_gstin", rec.SellerGSTIN, common.Optional(common.Matches(reGSTIN, "15 alphanumeric characters"))).
		Field("invoice_no", rec.InvoiceNo, common.Optional(common.Matches(reInvoiceNo, "10 alphanumeric characters")))

	if rec.Size != "" && !constants.IsKnownSize(rec.Size) {
		v.Field("size", rec.Size, unknownSize)
	}
	if rec.Qty < 0 {
		v.Field("qty", rec.Qty, func(name string, value interface{}) *common.ValidationError {
			return &common.ValidationError{Field: name, Value: value, Message: "must not be negative"}
		})
	}

	for i, item := range rec.LineItems {
		prefix := fmt.Sprintf("line_items[%d].", i)
		v.Field(prefix+"hsn", item.HSN, common.Required, common.Matches(reHSN, "6 digits")).
			Field(prefix+"qty", item.Qty, common.Matches(reItemQty, "digits or NA"))
	}
	return v.Errors()
}

func unknownSize(name string, value interface{}) *common.ValidationError {
	return &common.ValidationError{Field: name, Value: value, Message: "is not a known size token"}
}

// ReviewIssues renders validation errors as strings for storage.
func ReviewIssues(errs []common.ValidationError) []string {
	if len(errs) == 0 {
		return nil
	}
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Error()
	}
	return out
}
