package meesho

import (
	"fmt"
	"strconv"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

type headerFields struct {
	sku, size, color, orderNo string
	qty                       int
}

// extractHeader fills sku, size, qty, color and order number from the product details block.
// Each step defaults on its own; only an unparseable quantity fails the stage.
func (e *Extractor) extractHeader(text string, rec *entity.InvoiceRecord) error {
	var h headerFields

	if m := e.patterns.SKU.Find(text); m != nil {
		h.sku = m[1]
	} else {
		e.notFound(stageHeader, e.patterns.SKU.Field)
	}

	if m := e.patterns.Details.Find(text); m != nil {
		qty, err := parseQty(m[2])
		if err != nil {
			return err
		}
		h.size, h.qty, h.color, h.orderNo = m[1], qty, m[3], m[4]
	} else if scope, ok := headerScope(text); ok {
		if err := e.headerFallbacks(scope, &h); err != nil {
			return err
		}
	} else {
		// no product details block: size, qty, colour and order number stay unset
		e.notFound(stageHeader, e.patterns.Details.Field)
	}

	if h.color != "" && !e.lexicon.IsKnownColor(h.color) {
		e.logger.Debug("colour not in lexicon, keeping token", "stage", stageHeader, "color", h.color)
	}

	rec.SKU, rec.Size, rec.Qty, rec.Color, rec.OrderNo = h.sku, h.size, h.qty, h.color, h.orderNo
	return nil
}

// headerFallbacks runs the per-field patterns independently of each other.
func (e *Extractor) headerFallbacks(text string, h *headerFields) error {
	e.logger.Debug("composite header pattern missed, trying per-field patterns", "stage", stageHeader)

	if m := e.patterns.Size.Find(text); m != nil {
		h.size = m[1]
	} else {
		e.notFound(stageHeader, e.patterns.Size.Field)
	}
	if m := e.patterns.OrderNo.Find(text); m != nil {
		h.orderNo = m[1]
	} else {
		e.notFound(stageHeader, e.patterns.OrderNo.Field)
	}
	if m := e.patterns.Color.Find(text); m != nil {
		h.color = m[1]
	} else {
		e.notFound(stageHeader, e.patterns.Color.Field)
	}
	if m := e.patterns.Qty.Find(text); m != nil {
		qty, err := parseQty(m[1])
		if err != nil {
			return err
		}
		h.qty = qty
	} else {
		e.notFound(stageHeader, e.patterns.Qty.Field)
	}
	return nil
}

func parseQty(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("qty %q: %w", raw, common.ErrMalformedNumeric)
	}
	return n, nil
}
