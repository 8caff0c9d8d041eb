package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-extractor/internal/export"
	"github.com/joseph-ayodele/invoice-extractor/internal/pipeline"
	"github.com/joseph-ayodele/invoice-extractor/internal/report"
)

const formatConsole = "console"

func newExtractCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "extract <file|->",
		Short: "Extract one PDF or TXT invoice and print every page (use - to read text from stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			proc, text := a.processor(nil)
			var (
				res    pipeline.FileResult
				source = args[0]
				err    error
			)
			if source == "-" {
				b, readErr := io.ReadAll(cmd.InOrStdin())
				if readErr != nil {
					return fmt.Errorf("read stdin: %w", readErr)
				}
				source = "stdin"
				res, err = proc.ProcessText(ctx, source, text.SplitText(string(b)))
			} else {
				res, err = proc.ProcessFile(ctx, source, true)
			}
			if err != nil {
				return err
			}
			for _, w := range res.Warnings {
				a.logger.Warn("extract warning", "source", source, "warning", w)
			}
			return writePages(cmd.OutOrStdout(), format, source, res)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatConsole, "console|json|yaml")
	return cmd
}

func writePages(w io.Writer, format, source string, res pipeline.FileResult) error {
	if format != formatConsole {
		return export.Encode(w, format, export.NewDocuments(source, res.Pages))
	}
	for _, p := range res.Pages {
		if err := report.Page(w, source, p); err != nil {
			return err
		}
	}
	return nil
}
