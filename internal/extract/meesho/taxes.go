package meesho

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

var taxComponentRe = regexp.MustCompile(`(IGST|CGST|SGST)\s*@([\d.]+)%\s*:?\s*Rs\.([\d.]+)`)

// ParseTaxClause splits a raw tax clause such as "CGST @1.5% Rs.8.30SGST @1.5% Rs.8.30"
// into its components, in clause order. An empty clause yields no components.
// The extraction pipeline never calls this; records keep the clause verbatim.
func ParseTaxClause(clause string) ([]entity.TaxComponent, error) {
	clause = strings.TrimSpace(clause)
	if clause == "" {
		return nil, nil
	}
	matches := taxComponentRe.FindAllStringSubmatch(clause, -1)
	if len(matches) == 0 {
		return nil, fmt.Errorf("tax clause %q: %w", clause, common.ErrFieldNotFound)
	}
	out := make([]entity.TaxComponent, 0, len(matches))
	for _, m := range matches {
		rate, err := parseAmount("tax_rate", m[2])
		if err != nil {
			return nil, err
		}
		amount, err := parseAmount("tax_amount", m[3])
		if err != nil {
			return nil, err
		}
		out = append(out, entity.TaxComponent{Kind: m[1], Rate: rate, Amount: amount})
	}
	return out, nil
}

// SumTax adds the amounts of all components.
func SumTax(components []entity.TaxComponent) entity.Money {
	var total entity.Money
	for _, c := range components {
		total = entity.Money{Decimal: total.Add(c.Amount.Decimal)}
	}
	return total
}
