package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

// Source describes one file on disk ready for processing.
type Source struct {
	Path     string // absolute
	Filename string
	Ext      string // lowercased, no dot
	Size     int64
	Hash     []byte // sha256 of the content
	ModTime  time.Time
}

// HashHex returns the content hash as lowercase hex.
func (s Source) HashHex() string {
	return hex.EncodeToString(s.Hash)
}

// DirStats summarizes a directory walk.
type DirStats struct {
	Scanned uint32
	Matched uint32
	Skipped uint32
	Failed  uint32
}

// Stat resolves path, checks its extension and hashes its content.
func Stat(ctx context.Context, path string) (Source, error) {
	var out Source
	if err := ctx.Err(); err != nil {
		return out, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return out, fmt.Errorf("abs path: %w", err)
	}
	ext := constants.NormalizeExt(filepath.Ext(abs))
	if ext == "" || !AllowedExt(ext) {
		return out, fmt.Errorf("%w: extension %q", common.ErrUnsupportedFormat, ext)
	}

	fi, err := os.Stat(abs)
	if err != nil {
		return out, fmt.Errorf("stat: %w", err)
	}
	if fi.IsDir() {
		return out, fmt.Errorf("%w: %s is a directory", common.ErrInvalidInput, abs)
	}

	sum, err := HashFile(abs)
	if err != nil {
		return out, err
	}
	return Source{
		Path:     abs,
		Filename: filepath.Base(abs),
		Ext:      ext,
		Size:     fi.Size(),
		Hash:     sum,
		ModTime:  fi.ModTime().UTC(),
	}, nil
}

// HashFile returns the sha256 of the file content.
func HashFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, fmt.Errorf("hash: %w", err)
	}
	return h.Sum(nil), nil
}
