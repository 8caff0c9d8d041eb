package extract

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/pdftext"
)

func newAdapter(buf *bytes.Buffer) *PDFAdapter {
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewPDFAdapter(pdftext.NewExtractor(pdftext.Config{}, logger), logger)
}

func TestPDFAdapter_Extract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoice.txt")
	require.NoError(t, os.WriteFile(path, []byte("page one\fpage two"), 0o644))

	var logs bytes.Buffer
	res, err := newAdapter(&logs).Extract(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, []string{"page one", "page two"}, res.Pages)
	assert.Equal(t, constants.TXT, res.SourceType)
	assert.Empty(t, res.Warnings)
}

func TestPDFAdapter_ExtractErrors(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"unsupported extension", "invoice.csv", common.ErrUnsupportedFormat},
		{"missing file", filepath.Join("does", "not", "exist.txt"), os.ErrNotExist},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			_, err := newAdapter(&logs).Extract(context.Background(), tt.path)

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, logs.String(), "text extraction failed")
			assert.Contains(t, logs.String(), tt.path)
		})
	}
}
