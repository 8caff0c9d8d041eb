package extract

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/invoice-extractor/internal/pdftext"
)

type PDFAdapter struct {
	extractor *pdftext.Extractor
	logger    *slog.Logger
}

func NewPDFAdapter(e *pdftext.Extractor, l *slog.Logger) *PDFAdapter {
	if l == nil {
		l = slog.Default()
	}
	return &PDFAdapter{
		extractor: e,
		logger:    l,
	}
}

func (a *PDFAdapter) Extract(ctx context.Context, path string) (TextExtractionResult, error) {
	r, err := a.extractor.Extract(ctx, path)
	if err != nil {
		a.logger.Error("text extraction failed", "path", path, "error", err)
		return TextExtractionResult{}, err
	}
	for _, w := range r.Warnings {
		a.logger.Warn("text extraction warning", "path", path, "warning", w)
	}
	return TextExtractionResult{
		Pages:      r.Pages,
		SourceType: r.SourceType,
		Method:     r.Method,
		Duration:   r.Duration,
		Warnings:   r.Warnings,
	}, nil
}
