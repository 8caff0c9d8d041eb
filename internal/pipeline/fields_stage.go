package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
	"github.com/joseph-ayodele/invoice-extractor/internal/extract"
	"github.com/joseph-ayodele/invoice-extractor/internal/extract/meesho"
)

// FieldsStage runs the field extractor over every page of a document.
type FieldsStage struct {
	Fields  extract.FieldExtractor
	Workers int
	Logger  *slog.Logger
}

func NewFieldsStage(fe extract.FieldExtractor, workers int, logger *slog.Logger) *FieldsStage {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = 1
	}
	return &FieldsStage{Fields: fe, Workers: workers, Logger: logger}
}

// Run extracts every page concurrently. Results are in page order. A page whose
// extraction stopped early is returned with status FAILED; only ctx ends the run.
func (s *FieldsStage) Run(ctx context.Context, fileID uuid.UUID, pages []string) ([]entity.PageResult, error) {
	out := make([]entity.PageResult, len(pages))
	now := time.Now().UTC()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Workers)
	for i, text := range pages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = s.page(fileID, i+1, text, now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *FieldsStage) page(fileID uuid.UUID, n int, text string, at time.Time) entity.PageResult {
	res := s.Fields.ExtractFields(text)
	issues := meesho.ReviewIssues(meesho.ValidateRecord(res.Record))

	pr := entity.PageResult{
		ID:          uuid.New(),
		FileID:      fileID,
		Page:        n,
		Status:      res.Status,
		NeedsReview: len(issues) > 0 || res.Status != constants.PageStatusOK,
		Issues:      issues,
		Record:      res.Record,
		ExtractedAt: at,
	}
	if res.Err != nil {
		pr.ErrorMessage = res.Err.Error()
	}

	log := s.Logger.Debug
	if res.Status == constants.PageStatusFailed {
		log = s.Logger.Warn
	}
	log("page extracted",
		"file_id", fileID,
		"page", n,
		"status", res.Status,
		"stages", len(res.Stages),
		"line_items", len(res.Record.LineItems),
		"issues", len(issues),
	)
	return pr
}
