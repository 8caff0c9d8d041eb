package constants

import (
	"regexp"
	"strings"
)

type Size string

// Size tokens in the order the header pattern tries them. Order matters:
// multi-word tokens first, then the longer letter codes before their suffixes.
const (
	FreeSize     Size = "Free Size"
	OneSize      Size = "One Size"
	StandardSize Size = "Standard Size"
	XXL          Size = "XXL"
	XL           Size = "XL"
	L            Size = "L"
	M            Size = "M"
	S            Size = "S"
	XS           Size = "XS"
	XXS          Size = "XXS"
)

var allSizes = []Size{
	FreeSize,
	OneSize,
	StandardSize,
	XXL,
	XL,
	L,
	M,
	S,
	XS,
	XXS,
}

var reDimension = regexp.MustCompile(`(?i)^\d+\s*(?:cm|inch)$`)

func SizesAsStringSlice() []string {
	result := make([]string, len(allSizes))
	for i, s := range allSizes {
		result[i] = string(s)
	}
	return result
}

// IsKnownSize reports whether input is a size token or a numeric dimension such as "32 cm".
func IsKnownSize(input string) bool {
	normalized := strings.TrimSpace(input)
	if normalized == "" {
		return false
	}
	for _, s := range allSizes {
		if strings.EqualFold(normalized, string(s)) {
			return true
		}
	}
	return reDimension.MatchString(normalized)
}
