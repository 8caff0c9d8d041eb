package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/async"
	"github.com/joseph-ayodele/invoice-extractor/internal/export"
	"github.com/joseph-ayodele/invoice-extractor/internal/ingest"
	"github.com/joseph-ayodele/invoice-extractor/internal/pipeline"
	"github.com/joseph-ayodele/invoice-extractor/internal/report"
	repo "github.com/joseph-ayodele/invoice-extractor/internal/repository"
)

// shutdownTimeout bounds how long a stopping command waits for in-flight files.
const shutdownTimeout = 30 * time.Second

type batchFlags struct {
	dir        string
	out        string
	jsonOut    string
	inmem      bool
	force      bool
	workers    int
	skipHidden bool
}

func newBatchCmd(a *app) *cobra.Command {
	var f batchFlags
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Process every invoice under a directory and export the results to XLSX",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.runBatch(ctx, cmd, f)
		},
	}
	cmd.Flags().StringVar(&f.dir, "dir", "", "directory to process invoices from (required)")
	cmd.Flags().StringVar(&f.out, "out", "", "output XLSX file path (defaults to invoices.xlsx next to --dir)")
	cmd.Flags().StringVar(&f.jsonOut, "json", "", "also write the pages as JSON to this file")
	cmd.Flags().BoolVar(&f.inmem, "inmem", false, "use in-memory SQLite database")
	cmd.Flags().BoolVar(&f.force, "force", false, "re-process files whose content was processed before")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "files processed in parallel (defaults to FILE_WORKERS)")
	cmd.Flags().BoolVar(&f.skipHidden, "skip-hidden", true, "skip dot files and directories")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}

func (a *app) runBatch(ctx context.Context, cmd *cobra.Command, f batchFlags) error {
	if f.out == "" {
		f.out = filepath.Join(filepath.Dir(filepath.Clean(f.dir)), "invoices.xlsx")
	}
	if f.workers <= 0 {
		f.workers = a.cfg.Extract.FileWorkers
	}

	db, err := a.openDB(ctx, f.inmem)
	if err != nil {
		return err
	}
	defer db.Close()
	proc, _ := a.processor(db)

	paths, stats, err := ingest.WalkDirectory(ctx, f.dir, nil, f.skipHidden)
	if err != nil {
		return err
	}
	a.logger.Info("ingestion scan complete", "dir", f.dir, "scanned", stats.Scanned, "matched", stats.Matched, "skipped", stats.Skipped)

	var (
		mu      sync.Mutex
		rows    = make(map[string]report.FileSummary, len(paths))
		fileIDs []uuid.UUID
	)
	q := async.NewProcessorQueue(proc, a.logger,
		async.WithWorkers(f.workers),
		async.WithQueueSize(a.cfg.Extract.QueueSize),
		async.WithProcessTimeout(a.cfg.Extract.ProcessTimeout),
		async.WithResultFunc(func(job async.Job, res pipeline.FileResult, err error) {
			mu.Lock()
			defer mu.Unlock()
			rows[job.Path] = summarize(job.Path, res, err)
			if err == nil {
				fileIDs = append(fileIDs, res.File.ID)
			}
		}),
	)
	for _, p := range paths {
		if err := q.Enqueue(ctx, async.Job{Path: p, Force: f.force}); err != nil {
			a.logger.Error("failed to enqueue file", "path", p, "error", err)
			break
		}
	}
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	q.Shutdown(sctx)

	mu.Lock()
	summaries := make([]report.FileSummary, 0, len(paths))
	for _, p := range paths {
		if r, ok := rows[p]; ok {
			summaries = append(summaries, r)
		}
	}
	ids := append([]uuid.UUID(nil), fileIDs...)
	mu.Unlock()
	report.Summary(cmd.OutOrStdout(), summaries)

	if err := a.writeBatchExports(ctx, db, ids, f); err != nil {
		return err
	}
	st := q.Stats()
	a.logger.Info("batch processing complete",
		"files_processed", st.Processed,
		"files_skipped", st.Skipped,
		"failures", st.Failed,
		"pages", st.Pages,
		"output_file", f.out,
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Output: %s\n", f.out)
	return nil
}

func (a *app) writeBatchExports(ctx context.Context, db *repo.DB, fileIDs []uuid.UUID, f batchFlags) error {
	svc := export.NewService(repo.NewInvoiceFileRepository(db, a.logger), repo.NewInvoiceRepository(db, a.logger), a.logger)

	var docs []export.Document
	for _, id := range fileIDs {
		d, err := svc.Documents(ctx, id)
		if err != nil {
			return err
		}
		docs = append(docs, d...)
	}

	xlsx, err := export.WriteXLSX(docs)
	if err != nil {
		return err
	}
	if err := os.WriteFile(f.out, xlsx, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", f.out, err)
	}
	if f.jsonOut == "" {
		return nil
	}
	var buf bytes.Buffer
	if err := export.Encode(&buf, export.FormatJSON, docs); err != nil {
		return err
	}
	if err := os.WriteFile(f.jsonOut, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", f.jsonOut, err)
	}
	return nil
}

func summarize(path string, res pipeline.FileResult, err error) report.FileSummary {
	s := report.FileSummary{Source: filepath.Base(path), Pages: res.File.Pages, Skipped: res.Skipped}
	if err != nil {
		s.Err = err.Error()
		return s
	}
	counts := res.StatusCounts()
	s.OK = counts[constants.PageStatusOK]
	s.Partial = counts[constants.PageStatusPartial]
	s.Empty = counts[constants.PageStatusEmpty]
	s.Failed = counts[constants.PageStatusFailed]
	return s
}
