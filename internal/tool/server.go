package tool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer returns an MCP server with the invoice tools registered.
func NewServer(version string, invoices *InvoiceTool) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "invoice-extractor", Version: version}, nil)
	mcp.AddTool(server, MetadataExtractInvoice, invoices.ExtractInvoice)
	return server
}

// ServeStdio runs the server on stdin/stdout until the client disconnects or ctx is done.
func ServeStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}
