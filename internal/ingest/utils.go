package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/invoice-extractor/constants"
)

// AllowedExt checks if a file extension is in the allowed set (pdf/txt).
func AllowedExt(ext string) bool {
	return constants.IsAllowedExt(ext)
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}

// extSet builds a lookup from user-supplied extensions; empty input means the default set.
func extSet(exts []string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, e := range exts {
		if e = constants.NormalizeExt(e); e != "" {
			set[e] = struct{}{}
		}
	}
	if len(set) == 0 {
		return constants.AllowedExtensions
	}
	return set
}

func matches(path string, exts map[string]struct{}) bool {
	_, ok := exts[constants.NormalizeExt(filepath.Ext(path))]
	return ok
}
