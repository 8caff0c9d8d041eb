package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
	"github.com/joseph-ayodele/invoice-extractor/internal/ingest"
	"github.com/joseph-ayodele/invoice-extractor/internal/repository"
)

// FileResult is the outcome of processing one document.
type FileResult struct {
	File     entity.InvoiceFile
	Pages    []entity.PageResult
	Skipped  bool // same content was already processed
	Warnings []string
	Duration time.Duration
}

// StatusCounts tallies pages by status.
func (r FileResult) StatusCounts() map[constants.PageStatus]int {
	counts := make(map[constants.PageStatus]int, 4)
	for _, p := range r.Pages {
		counts[p.Status]++
	}
	return counts
}

// Processor coordinates text extraction then field extraction, then storage.
type Processor struct {
	Logger   *slog.Logger
	Text     *TextStage
	Fields   *FieldsStage
	Invoices repository.InvoiceRepository // nil = results are not stored
}

func NewProcessor(logger *slog.Logger, text *TextStage, fields *FieldsStage, invoices repository.InvoiceRepository) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Text: text, Fields: fields, Invoices: invoices}
}

// ProcessFile extracts every page of the document at path. A document whose content
// was already processed is skipped unless force is set, in which case its pages are replaced.
func (p *Processor) ProcessFile(ctx context.Context, path string, force bool) (FileResult, error) {
	start := time.Now()
	runID := common.RunIDFromContext(ctx)
	if runID == "" {
		ctx, runID = common.NewRunContext(ctx)
	}

	src, err := ingest.Stat(ctx, path)
	if err != nil {
		p.Logger.Error("processor.stat.failed", "run_id", runID, "path", path, "error", err)
		return FileResult{}, err
	}

	existing, err := p.Text.Lookup(ctx, src)
	if err != nil {
		p.Logger.Error("processor.lookup.failed", "run_id", runID, "path", src.Path, "error", err)
		return FileResult{}, err
	}
	if existing != nil && !force {
		p.Logger.Info("processor.skip.duplicate", "run_id", runID, "path", src.Path, "file_id", existing.ID)
		return FileResult{File: *existing, Skipped: true, Duration: time.Since(start)}, nil
	}

	var file entity.InvoiceFile
	if existing != nil {
		file = *existing
	}
	text, err := p.Text.Run(ctx, src, &file)
	if err != nil {
		return FileResult{File: file, Warnings: text.Warnings}, err
	}
	ctx = common.WithFileID(ctx, file.ID)
	p.Logger.Info("processor.text.ok",
		"run_id", runID,
		"file_id", file.ID,
		"method", text.Method,
		"pages", len(text.Pages),
		"duration_ms", text.Duration.Milliseconds(),
	)

	pages, err := p.Fields.Run(ctx, file.ID, text.Pages)
	if err != nil {
		p.Logger.Error("processor.fields.failed", "run_id", runID, "file_id", file.ID, "error", err)
		return FileResult{File: file, Warnings: text.Warnings}, err
	}

	if err := p.persist(ctx, &file, existing != nil, pages); err != nil {
		p.Logger.Error("processor.persist.failed", "run_id", runID, "file_id", file.ID, "error", err)
		return FileResult{File: file, Pages: pages, Warnings: text.Warnings}, err
	}

	res := FileResult{File: file, Pages: pages, Warnings: text.Warnings, Duration: time.Since(start)}
	counts := res.StatusCounts()
	p.Logger.Info("processor.file.ok",
		"run_id", runID,
		"file_id", file.ID,
		"filename", file.Filename,
		"pages", len(pages),
		"ok", counts[constants.PageStatusOK],
		"partial", counts[constants.PageStatusPartial],
		"empty", counts[constants.PageStatusEmpty],
		"failed", counts[constants.PageStatusFailed],
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// ProcessText runs field extraction over already extracted page texts. Nothing is stored.
func (p *Processor) ProcessText(ctx context.Context, name string, pages []string) (FileResult, error) {
	start := time.Now()
	file := entity.InvoiceFile{Filename: name, Pages: len(pages), Method: "inline", IngestedAt: start.UTC()}
	results, err := p.Fields.Run(ctx, file.ID, pages)
	if err != nil {
		return FileResult{File: file}, err
	}
	return FileResult{File: file, Pages: results, Duration: time.Since(start)}, nil
}

func (p *Processor) persist(ctx context.Context, file *entity.InvoiceFile, existed bool, pages []entity.PageResult) error {
	if err := p.Text.Persist(ctx, file, existed); err != nil {
		return err
	}
	if p.Invoices == nil {
		return nil
	}
	for i := range pages {
		if err := p.Invoices.SavePage(ctx, &pages[i]); err != nil {
			return err
		}
	}
	return nil
}
