package main

import (
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-extractor/internal/tool"
)

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the extract_invoice tool over MCP on stdin/stdout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			proc, text := a.processor(nil)
			server := tool.NewServer(version, tool.NewInvoiceTool(proc, text, a.logger))
			a.logger.Info("mcp server starting", "version", version)
			return tool.ServeStdio(cmd.Context(), server)
		},
	}
}
