package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

// WalkDirectory walks root and returns the files whose extension is in includeExts
// (or the default set when empty), in lexical order. Hidden files and directories are
// skipped when skipHidden is set. Unreadable entries are counted and skipped.
func WalkDirectory(ctx context.Context, root string, includeExts []string, skipHidden bool) ([]string, DirStats, error) {
	var stats DirStats
	if strings.TrimSpace(root) == "" {
		return nil, stats, fmt.Errorf("%w: root path is required", common.ErrInvalidInput)
	}
	exts := extSet(includeExts)

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			stats.Failed++
			return nil // continue walking
		}
		if skipHidden && path != root && IsHidden(path) {
			stats.Skipped++
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !matches(path, exts) {
			stats.Skipped++
			return nil
		}
		stats.Matched++
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return paths, stats, err
		}
		return paths, stats, fmt.Errorf("walk: %w", err)
	}
	return paths, stats, nil
}
