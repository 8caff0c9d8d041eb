package extract

import (
	"context"
	"time"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

// TextExtractor is Stage 1: file -> page texts.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Pages      []string // one flattened string per page, in document order
	SourceType string   // constants.PDF | constants.TXT
	Method     string   // "pdf-text" | "plain-text"
	Duration   time.Duration
	Warnings   []string
}

// FieldExtractor is Stage 2: page text -> invoice record.
type FieldExtractor interface {
	ExtractFields(text string) FieldsResult
}

type FieldsResult struct {
	Record entity.InvoiceRecord
	Stages []string // stages that completed, in run order
	Status constants.PageStatus
	// Err is the error that stopped the run, nil when every stage ran.
	// Record still holds whatever the earlier stages produced.
	Err error
}
