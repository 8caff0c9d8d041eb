package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-extractor/constants"
)

// InvoiceFile represents an ingested source document.
type InvoiceFile struct {
	ID          uuid.UUID `json:"id"`
	SourcePath  string    `json:"source_path"`
	Filename    string    `json:"filename"`
	FileExt     string    `json:"file_ext"`
	ContentHash []byte    `json:"content_hash"`
	Pages       int       `json:"pages"`
	Method      string    `json:"method"`
	IngestedAt  time.Time `json:"ingested_at"`
}

// PageResult is the outcome of running the extractor over one page.
type PageResult struct {
	ID           uuid.UUID            `json:"id"`
	FileID       uuid.UUID            `json:"file_id"`
	Page         int                  `json:"page"` // 1-based
	Status       constants.PageStatus `json:"status"`
	NeedsReview  bool                 `json:"needs_review"`
	Issues       []string             `json:"issues,omitempty"`
	ErrorMessage string               `json:"error_message,omitempty"`
	Record       InvoiceRecord        `json:"invoice"`
	ExtractedAt  time.Time            `json:"extracted_at"`
}
