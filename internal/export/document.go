package export

import (
	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
	"github.com/joseph-ayodele/invoice-extractor/internal/extract/meesho"
)

// Document is the exported form of one processed page.
type Document struct {
	Source      string               `json:"source" yaml:"source"`
	Page        int                  `json:"page" yaml:"page"`
	Status      constants.PageStatus `json:"status" yaml:"status"`
	NeedsReview bool                 `json:"needs_review" yaml:"needs_review"`
	Issues      []string             `json:"issues,omitempty" yaml:"issues,omitempty"`
	Error       string               `json:"error,omitempty" yaml:"error,omitempty"`
	Invoice     entity.InvoiceRecord `json:"invoice" yaml:"invoice"`
	Taxes       []Tax                `json:"taxes,omitempty" yaml:"taxes,omitempty"`
}

// Tax is one decomposed tax component of a line item. Line is the 1-based
// position of that item in Invoice.LineItems.
type Tax struct {
	Line   int          `json:"line" yaml:"line"`
	Kind   string       `json:"kind" yaml:"kind"`
	Rate   entity.Money `json:"rate" yaml:"rate"`
	Amount entity.Money `json:"amount" yaml:"amount"`
}

// NewDocuments converts the pages of one source file. Tax clauses that cannot be
// decomposed are left out of Taxes; the clause itself stays on the line item.
func NewDocuments(source string, pages []entity.PageResult) []Document {
	docs := make([]Document, 0, len(pages))
	for _, p := range pages {
		docs = append(docs, Document{
			Source:      source,
			Page:        p.Page,
			Status:      p.Status,
			NeedsReview: p.NeedsReview,
			Issues:      p.Issues,
			Error:       p.ErrorMessage,
			Invoice:     p.Record,
			Taxes:       taxes(p.Record.LineItems),
		})
	}
	return docs
}

func taxes(items []entity.LineItem) []Tax {
	var out []Tax
	for i, it := range items {
		comps, err := meesho.ParseTaxClause(it.TaxClause)
		if err != nil {
			continue
		}
		for _, c := range comps {
			out = append(out, Tax{Line: i + 1, Kind: c.Kind, Rate: c.Rate, Amount: c.Amount})
		}
	}
	return out
}
