package tool

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/joseph-ayodele/invoice-extractor/internal/export"
	"github.com/joseph-ayodele/invoice-extractor/internal/pdftext"
	"github.com/joseph-ayodele/invoice-extractor/internal/pipeline"
)

// MetadataExtractInvoice describes the extract_invoice tool.
var MetadataExtractInvoice = &mcp.Tool{
	Name: "extract_invoice",
	Description: "Extract structured fields from Meesho invoice pages. " +
		"Pass either the flattened page text as content (pages separated by form feed) " +
		"or the path of a PDF or TXT file readable by the server. " +
		"Returns one record per page with its status (OK, PARTIAL, EMPTY, FAILED) " +
		"and the validation issues that flag it for review.",
	InputSchema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"content": map[string]any{
				"type":        "string",
				"description": "Flattened invoice text. Pages are separated by \\f.",
			},
			"path": map[string]any{
				"type":        "string",
				"description": "Path of a .pdf or .txt invoice on the server.",
			},
			"source_id": map[string]any{
				"type":        "string",
				"description": "Optional name reported back on every page when content is given.",
			},
		},
	},
	OutputSchema: map[string]any{
		"type":     "object",
		"required": []string{"pages"},
		"properties": map[string]any{
			"source":     map[string]any{"type": "string"},
			"page_count": map[string]any{"type": "integer"},
			"pages":      map[string]any{"type": "array", "items": map[string]any{"type": "object"}},
		},
	},
}

// InputExtractInvoice is the input for the extract_invoice tool.
type InputExtractInvoice struct {
	Content  string `json:"content"`
	Path     string `json:"path"`
	SourceID string `json:"source_id"`
}

// OutputExtractInvoice is the output for the extract_invoice tool.
type OutputExtractInvoice struct {
	Source    string            `json:"source"`
	PageCount int               `json:"page_count"`
	Pages     []export.Document `json:"pages"`
}

// InvoiceTool runs the processor for MCP calls. It never stores results.
type InvoiceTool struct {
	proc   *pipeline.Processor
	text   *pdftext.Extractor
	logger *slog.Logger
}

func NewInvoiceTool(proc *pipeline.Processor, text *pdftext.Extractor, logger *slog.Logger) *InvoiceTool {
	if logger == nil {
		logger = slog.Default()
	}
	return &InvoiceTool{proc: proc, text: text, logger: logger}
}

// ExtractInvoice handles one extract_invoice call.
func (t *InvoiceTool) ExtractInvoice(ctx context.Context, _ *mcp.CallToolRequest, input InputExtractInvoice) (*mcp.CallToolResult, OutputExtractInvoice, error) {
	var (
		res    pipeline.FileResult
		source string
		err    error
	)
	switch {
	case input.Content != "" && input.Path != "":
		return nil, OutputExtractInvoice{}, fmt.Errorf("content and path are mutually exclusive")
	case input.Content != "":
		source = input.SourceID
		if source == "" {
			source = "content"
		}
		res, err = t.proc.ProcessText(ctx, source, t.text.SplitText(input.Content))
	case input.Path != "":
		source = input.Path
		res, err = t.proc.ProcessFile(ctx, input.Path, true)
	default:
		return nil, OutputExtractInvoice{}, fmt.Errorf("content or path is required")
	}
	if err != nil {
		t.logger.Error("extract_invoice failed", "source", source, "error", err)
		return nil, OutputExtractInvoice{}, err
	}

	return nil, OutputExtractInvoice{
		Source:    source,
		PageCount: len(res.Pages),
		Pages:     export.NewDocuments(source, res.Pages),
	}, nil
}
