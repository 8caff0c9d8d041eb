package pdftext

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestExtract_TextPages(t *testing.T) {
	path := writeFile(t, "invoice.txt", "Order No.abc\r\n\fBILL TO  / SHIP\tTO x\f\f")

	res, err := NewExtractor(Config{}, nil).Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, constants.TXT, res.SourceType)
	assert.Equal(t, MethodPlainText, res.Method)
	assert.Equal(t, []string{"Order No.abc", "BILL TO / SHIP TO x", "", ""}, res.Pages)
}

func TestExtract_MaxPages(t *testing.T) {
	path := writeFile(t, "invoice.TXT", "one\ftwo\fthree")

	res, err := NewExtractor(Config{MaxPages: 2}, nil).Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, res.Pages)
}

func TestExtract_Raw(t *testing.T) {
	path := writeFile(t, "invoice.txt", "  a  b  ")

	res, err := NewExtractor(Config{Raw: true}, nil).Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"  a  b  "}, res.Pages)
}

func TestExtract_UnsupportedExtension(t *testing.T) {
	path := writeFile(t, "invoice.docx", "x")

	_, err := NewExtractor(Config{}, nil).Extract(context.Background(), path)
	require.ErrorIs(t, err, common.ErrUnsupportedFormat)
}

func TestExtract_CancelledContext(t *testing.T) {
	path := writeFile(t, "invoice.txt", "x")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExtractor(Config{}, nil).Extract(ctx, path)
	require.ErrorIs(t, err, context.Canceled)
}

func TestExtract_BrokenPDF(t *testing.T) {
	path := writeFile(t, "invoice.pdf", "not a pdf")

	res, err := NewExtractor(Config{}, nil).Extract(context.Background(), path)
	require.Error(t, err)
	assert.Equal(t, constants.PDF, res.SourceType)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"crlf", "a\r\nb\rc", "a\nb\nc"},
		{"tabs and spaces", "a\t\tb   c", "a b c"},
		{"blank lines", "a\n\n\n\nb", "a\n\nb"},
		{"trailing spaces", "a  \nb ", "a\nb"},
		{"glued labels stay glued", "Order No.mfymzabrFree Size1Gold", "Order No.mfymzabrFree Size1Gold"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}
