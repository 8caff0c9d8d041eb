package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-extractor/internal/async"
	"github.com/joseph-ayodele/invoice-extractor/internal/ingest"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		dirs        []string
		inmem       bool
		force       bool
		initialScan bool
		debounce    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Process invoices as they appear under one or more directories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			db, err := a.openDB(ctx, inmem)
			if err != nil {
				return err
			}
			defer db.Close()
			proc, _ := a.processor(db)

			q := async.NewProcessorQueue(proc, a.logger,
				async.WithWorkers(a.cfg.Extract.FileWorkers),
				async.WithQueueSize(a.cfg.Extract.QueueSize),
				async.WithProcessTimeout(a.cfg.Extract.ProcessTimeout),
			)
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				q.Shutdown(sctx)
			}()

			events, errs, err := ingest.Watch(ctx, ingest.WatchConfig{
				Roots:       dirs,
				SkipHidden:  true,
				InitialScan: initialScan,
				Debounce:    debounce,
				Logger:      a.logger,
			})
			if err != nil {
				return err
			}
			a.logger.Info("watching for invoices", "dirs", dirs)

			for {
				select {
				case path, ok := <-events:
					if !ok {
						return nil
					}
					if err := q.Enqueue(ctx, async.Job{Path: path, Force: force}); err != nil {
						a.logger.Warn("failed to enqueue file", "path", path, "error", err)
					}
				case err, ok := <-errs:
					if !ok {
						errs = nil
						continue
					}
					a.logger.Warn("watch error", "error", err)
				case <-ctx.Done():
					a.logger.Info("stopping watcher")
					return nil
				}
			}
		},
	}
	cmd.Flags().StringSliceVar(&dirs, "dir", nil, "directory to watch, repeatable (required)")
	cmd.Flags().BoolVar(&inmem, "inmem", false, "use in-memory SQLite database")
	cmd.Flags().BoolVar(&force, "force", false, "re-process files whose content was processed before")
	cmd.Flags().BoolVar(&initialScan, "initial-scan", true, "process files already present at start")
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "wait this long after the last write before processing")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}
