package meesho

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

// extractTable parses the line-item table. A missing table header leaves the items empty.
// Rows that do not match the full row pattern are skipped.
func (e *Extractor) extractTable(text string, rec *entity.InvoiceRecord) error {
	region, ok := e.tableRegion(text)
	if !ok {
		e.logger.Debug("line-item table absent", "stage", stageTable, "error", common.ErrTableNotFound)
		return nil
	}

	matches := e.patterns.Row.FindAllStringSubmatch(region, -1)
	items := make([]entity.LineItem, 0, len(matches))
	for _, m := range matches {
		item, err := parseRow(m)
		if err != nil {
			return err
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		e.logger.Debug("table region has no parsable rows", "stage", stageTable)
	}

	rec.LineItems = items
	return nil
}

// tableRegion returns the text between the table header and the terminal Total anchor.
func (e *Extractor) tableRegion(text string) (string, bool) {
	m, idx := e.patterns.TableRegion.FindIndexed(text)
	if m == nil {
		return "", false
	}
	if idx > 0 {
		e.logger.Debug("table terminated by bare Total anchor", "stage", stageTable)
	}
	return m[1], true
}

func parseRow(m []string) (entity.LineItem, error) {
	amounts := []struct {
		name string
		raw  string
	}{
		{"gross_amount", m[4]},
		{"discount", m[5]},
		{"taxable_value", m[6]},
		{"total", m[8]},
	}
	parsed := make([]entity.Money, len(amounts))
	for i, a := range amounts {
		v, err := parseAmount(a.name, a.raw)
		if err != nil {
			return entity.LineItem{}, err
		}
		parsed[i] = v
	}

	return entity.LineItem{
		Description:  strings.TrimSpace(m[1]),
		HSN:          m[2],
		Qty:          m[3],
		GrossAmount:  parsed[0],
		Discount:     parsed[1],
		TaxableValue: parsed[2],
		TaxClause:    strings.TrimSpace(m[7]),
		Total:        parsed[3],
	}, nil
}

func parseAmount(field, raw string) (entity.Money, error) {
	v, err := entity.ParseMoney(raw)
	if err != nil {
		return entity.Money{}, fmt.Errorf("%s %q: %w", field, raw, common.ErrMalformedNumeric)
	}
	return v, nil
}
