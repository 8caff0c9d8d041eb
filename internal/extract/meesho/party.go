package meesho

import (
	"strings"

	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

func (e *Extractor) extractShipTo(text string, rec *entity.InvoiceRecord) error {
	m := e.patterns.ShipTo.Find(text)
	if m == nil {
		e.notFound(stageShipTo, e.patterns.ShipTo.Field)
		return nil
	}
	rec.ShipTo = strings.TrimSpace(m[1])
	return nil
}

func (e *Extractor) extractSeller(text string, rec *entity.InvoiceRecord) error {
	var name, gstin string
	if m := e.patterns.SellerName.Find(text); m != nil {
		name = strings.TrimSpace(m[1])
	} else {
		e.notFound(stageSeller, e.patterns.SellerName.Field)
	}
	if m := e.patterns.SellerGSTIN.Find(text); m != nil {
		gstin = m[1]
	} else {
		e.notFound(stageSeller, e.patterns.SellerGSTIN.Field)
	}
	rec.SellerName, rec.SellerGSTIN = name, gstin
	return nil
}

// extractOrder captures the four order metadata values, each independently.
func (e *Extractor) extractOrder(text string, rec *entity.InvoiceRecord) error {
	fields := []struct {
		fp  FieldPattern
		dst *string
	}{
		{e.patterns.PurchaseOrderNo, &rec.PurchaseOrderNo},
		{e.patterns.InvoiceNo, &rec.InvoiceNo},
		{e.patterns.OrderDate, &rec.OrderDate},
		{e.patterns.InvoiceDate, &rec.InvoiceDate},
	}
	for _, f := range fields {
		m := f.fp.Find(text)
		if m == nil {
			e.notFound(stageOrder, f.fp.Field)
			continue
		}
		*f.dst = m[1]
	}
	return nil
}
