package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
	"github.com/joseph-ayodele/invoice-extractor/internal/repository"
)

// Service is a tiny façade over the repositories that produces export files.
type Service struct {
	files    repository.InvoiceFileRepository
	invoices repository.InvoiceRepository
	logger   *slog.Logger
}

func NewService(files repository.InvoiceFileRepository, invoices repository.InvoiceRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{files: files, invoices: invoices, logger: logger}
}

// Documents loads stored pages as export documents. uuid.Nil selects every file.
func (s *Service) Documents(ctx context.Context, fileID uuid.UUID) ([]Document, error) {
	var (
		pages []entity.PageResult
		err   error
	)
	if fileID == uuid.Nil {
		pages, err = s.invoices.ListAllPages(ctx)
	} else {
		pages, err = s.invoices.ListPages(ctx, fileID)
	}
	if err != nil {
		return nil, fmt.Errorf("query pages: %w", err)
	}

	// pages arrive grouped by file; resolve each source path once
	sources := map[uuid.UUID]string{}
	docs := make([]Document, 0, len(pages))
	for _, p := range pages {
		src, ok := sources[p.FileID]
		if !ok {
			src, err = s.source(ctx, p.FileID)
			if err != nil {
				return nil, err
			}
			sources[p.FileID] = src
		}
		docs = append(docs, NewDocuments(src, []entity.PageResult{p})...)
	}
	return docs, nil
}

func (s *Service) source(ctx context.Context, fileID uuid.UUID) (string, error) {
	f, err := s.files.GetByID(ctx, fileID)
	if errors.Is(err, common.ErrNotFound) {
		s.logger.Warn("page without file row", "file_id", fileID)
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query file: %w", err)
	}
	return f.SourcePath, nil
}

// ExportXLSX returns an XLSX workbook (as bytes) for one file, or for all files when fileID is uuid.Nil.
func (s *Service) ExportXLSX(ctx context.Context, fileID uuid.UUID) ([]byte, error) {
	start := time.Now()
	docs, err := s.Documents(ctx, fileID)
	if err != nil {
		return nil, err
	}
	b, err := WriteXLSX(docs)
	if err != nil {
		return nil, err
	}
	s.logger.Info("export.xlsx.ok",
		"file_id", fileID.String(),
		"rows", len(docs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return b, nil
}

// Export writes stored pages to w in the given format.
func (s *Service) Export(ctx context.Context, w io.Writer, format string, fileID uuid.UUID) error {
	if format == FormatXLSX {
		b, err := s.ExportXLSX(ctx, fileID)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	}

	start := time.Now()
	docs, err := s.Documents(ctx, fileID)
	if err != nil {
		return err
	}
	if err := Encode(w, format, docs); err != nil {
		s.logger.Error("export failed", "format", format, "error", err)
		return err
	}
	s.logger.Info("export.ok",
		"format", format,
		"file_id", fileID.String(),
		"rows", len(docs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
