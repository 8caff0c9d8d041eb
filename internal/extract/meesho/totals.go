package meesho

import "github.com/joseph-ayodele/invoice-extractor/internal/entity"

// extractTotals reads the two amounts after the table's terminal Total: tax, then grand total.
func (e *Extractor) extractTotals(text string, rec *entity.InvoiceRecord) error {
	m := e.patterns.Totals.Find(text)
	if m == nil {
		e.notFound(stageTotals, e.patterns.Totals.Field)
		return nil
	}
	tax, err := parseAmount("total_tax", m[1])
	if err != nil {
		return err
	}
	grand, err := parseAmount("grand_total", m[2])
	if err != nil {
		return err
	}
	rec.TotalTax, rec.GrandTotal = tax, grand
	return nil
}
