package main

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-extractor/internal/export"
	repo "github.com/joseph-ayodele/invoice-extractor/internal/repository"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		out    string
		format string
		fileID string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored pages from the database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format == "" {
				format = a.cfg.Export.Format
			}
			id := uuid.Nil
			if fileID != "" {
				parsed, err := uuid.Parse(fileID)
				if err != nil {
					return fmt.Errorf("invalid --file-id: %w", err)
				}
				id = parsed
			}

			ctx := cmd.Context()
			db, err := a.openDB(ctx, false)
			if err != nil {
				return err
			}
			defer db.Close()
			svc := export.NewService(repo.NewInvoiceFileRepository(db, a.logger), repo.NewInvoiceRepository(db, a.logger), a.logger)

			var w io.Writer = cmd.OutOrStdout()
			if out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return svc.Export(ctx, w, format, id)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, - for stdout (required)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "xlsx|json|yaml (defaults to EXPORT_FORMAT)")
	cmd.Flags().StringVar(&fileID, "file-id", "", "export a single file")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
