package pdftext

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

const (
	MethodPDFText   = "pdf-text"
	MethodPlainText = "plain-text"
)

type Config struct {
	MaxPages int // 0 = no limit
	// Raw skips Normalize so callers see the text exactly as the reader produced it.
	Raw bool
}

type ExtractionResult struct {
	Pages      []string // one string per page; blank pages are kept as ""
	SourceType string   // constants.PDF | constants.TXT
	Method     string   // "pdf-text" | "plain-text"
	Duration   time.Duration
	Warnings   []string
}

type Extractor struct {
	cfg    Config
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxPages < 0 {
		cfg.MaxPages = 0
	}
	return &Extractor{cfg: cfg, logger: logger}
}

// Extract picks a strategy based on file extension.
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("starting text extraction", "path", path, "ext", ext)

	var (
		res ExtractionResult
		err error
	)
	switch constants.MapExtToFormat(ext) {
	case constants.PDF:
		res, err = e.extractPDF(ctx, path)
	case constants.TXT:
		res, err = e.extractTXT(ctx, path)
	default:
		e.logger.Error("unsupported extension", "extension", ext)
		return ExtractionResult{}, fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, ext)
	}
	res.Duration = time.Since(start)
	if err != nil {
		return res, err
	}
	e.logger.Debug("text extraction done",
		"path", path,
		"method", res.Method,
		"pages", len(res.Pages),
		"duration_ms", res.Duration.Milliseconds(),
		"warnings", len(res.Warnings),
	)
	return res, nil
}

// SplitText turns already extracted text into pages on form feeds.
func (e *Extractor) SplitText(text string) []string {
	raw := strings.Split(text, "\f")
	if e.cfg.MaxPages > 0 && len(raw) > e.cfg.MaxPages {
		raw = raw[:e.cfg.MaxPages]
	}
	pages := make([]string, len(raw))
	for i, p := range raw {
		pages[i] = e.clean(p)
	}
	return pages
}

func (e *Extractor) extractTXT(ctx context.Context, path string) (ExtractionResult, error) {
	res := ExtractionResult{SourceType: constants.TXT, Method: MethodPlainText}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return res, fmt.Errorf("read %s: %w", path, err)
	}
	res.Pages = e.SplitText(string(b))
	return res, nil
}

func (e *Extractor) extractPDF(ctx context.Context, path string) (res ExtractionResult, err error) {
	res = ExtractionResult{SourceType: constants.PDF, Method: MethodPDFText}

	f, r, err := pdf.Open(path)
	if err != nil {
		return res, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			e.logger.Warn("failed to close pdf", "path", path, "error", cerr)
		}
	}()

	total := r.NumPage()
	if e.cfg.MaxPages > 0 && total > e.cfg.MaxPages {
		res.Warnings = append(res.Warnings, fmt.Sprintf("truncated to %d of %d pages", e.cfg.MaxPages, total))
		total = e.cfg.MaxPages
	}

	res.Pages = make([]string, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		txt, warn := pageText(r, i)
		if warn != "" {
			res.Warnings = append(res.Warnings, warn)
			e.logger.Warn("page text unavailable", "path", path, "page", i, "reason", warn)
		}
		res.Pages = append(res.Pages, e.clean(txt))
	}
	return res, nil
}

// pageText reads one page. The reader panics on some malformed content streams,
// so a panic is turned into a warning and an empty page.
func pageText(r *pdf.Reader, n int) (text string, warning string) {
	defer func() {
		if rec := recover(); rec != nil {
			text, warning = "", fmt.Sprintf("page %d: unreadable content: %v", n, rec)
		}
	}()
	p := r.Page(n)
	if p.V.IsNull() {
		return "", fmt.Sprintf("page %d: missing page object", n)
	}
	txt, err := p.GetPlainText(nil)
	if err != nil {
		return "", fmt.Sprintf("page %d: %v", n, err)
	}
	return txt, ""
}

func (e *Extractor) clean(s string) string {
	if e.cfg.Raw {
		return s
	}
	return Normalize(s)
}
