package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	repo "github.com/joseph-ayodele/invoice-extractor/internal/repository"
)

func newDBHealthCmd(a *app) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "dbhealth",
		Short: "Check the database connection and list stored files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := a.openDB(ctx, false)
			if err != nil {
				return fmt.Errorf("opening DB: %w", err)
			}
			defer db.Close()

			if err := db.HealthCheck(ctx, timeout); err != nil {
				return fmt.Errorf("DB health: FAIL (%w)", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "DB health: OK (%s)\n", db.Dialect())

			files, err := repo.NewInvoiceFileRepository(db, a.logger).List(ctx)
			if err != nil {
				return fmt.Errorf("listing files: %w", err)
			}
			fmt.Fprintf(out, "invoice files: %d\n", len(files))
			for _, f := range files {
				fmt.Fprintf(out, "- [%s] %s (%d pages, %s)\n", f.ID, f.Filename, f.Pages, f.Method)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", time.Second, "ping timeout")
	return cmd
}
