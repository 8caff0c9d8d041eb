package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
	"github.com/joseph-ayodele/invoice-extractor/internal/extract"
	"github.com/joseph-ayodele/invoice-extractor/internal/ingest"
	"github.com/joseph-ayodele/invoice-extractor/internal/repository"
)

// TextStage resolves a source file against the store and extracts its page text.
type TextStage struct {
	Files  repository.InvoiceFileRepository // nil = no deduplication
	Text   extract.TextExtractor
	Logger *slog.Logger
}

func NewTextStage(files repository.InvoiceFileRepository, tx extract.TextExtractor, logger *slog.Logger) *TextStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &TextStage{Files: files, Text: tx, Logger: logger}
}

// Lookup returns the stored file with the same content, if any.
func (s *TextStage) Lookup(ctx context.Context, src ingest.Source) (*entity.InvoiceFile, error) {
	if s.Files == nil {
		return nil, nil
	}
	existing, err := s.Files.GetByHash(ctx, src.Hash)
	if errors.Is(err, common.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup by hash: %w", err)
	}
	return existing, nil
}

// Run extracts page text and fills in the file's page count and method.
func (s *TextStage) Run(ctx context.Context, src ingest.Source, file *entity.InvoiceFile) (extract.TextExtractionResult, error) {
	if file.ID == uuid.Nil {
		*file = entity.InvoiceFile{
			ID:          uuid.New(),
			SourcePath:  src.Path,
			Filename:    src.Filename,
			FileExt:     src.Ext,
			ContentHash: src.Hash,
			IngestedAt:  time.Now().UTC(),
		}
	}

	res, err := s.Text.Extract(ctx, src.Path)
	if err != nil {
		s.Logger.Error("text extraction failed", "file_id", file.ID, "path", src.Path, "error", err)
		return res, err
	}
	for _, w := range res.Warnings {
		s.Logger.Warn("text extraction warning", "file_id", file.ID, "warning", w)
	}
	file.Pages = len(res.Pages)
	file.Method = res.Method
	return res, nil
}

// Persist stores the file row: insert when new, page count update when re-processed.
func (s *TextStage) Persist(ctx context.Context, file *entity.InvoiceFile, existed bool) error {
	if s.Files == nil {
		return nil
	}
	if existed {
		return s.Files.UpdatePages(ctx, file.ID, file.Pages, file.Method)
	}
	return s.Files.Create(ctx, file)
}
