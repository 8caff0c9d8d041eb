package meesho

import "strings"

// defaultColors is the catalogue of colour names seen on product listings.
var defaultColors = []string{
	// basic
	"Red", "Blue", "Green", "Yellow", "Orange", "Purple", "Pink", "Brown", "Black", "White",
	"Grey", "Gray", "Beige", "Cream", "Ivory", "Navy", "Maroon", "Teal", "Cyan", "Magenta",
	"Lavender", "Turquoise", "Tan", "Olive", "Peach", "Mint", "Coral", "Salmon", "Gold",
	"Silver", "Bronze", "Copper", "Platinum", "Rose", "Burgundy", "Indigo", "Violet",
	"Mustard", "Khaki", "Rust", "Plum", "Mauve", "Crimson", "Scarlet", "Azure",

	// multi-word
	"Light Blue", "Dark Blue", "Sky Blue", "Royal Blue", "Baby Blue", "Powder Blue",
	"Light Green", "Dark Green", "Lime Green", "Mint Green", "Sea Green", "Forest Green",
	"Light Pink", "Hot Pink", "Baby Pink", "Rose Pink", "Dusty Pink",
	"Light Yellow", "Lemon Yellow", "Golden Yellow",
	"Light Grey", "Dark Grey", "Charcoal Grey", "Ash Grey",
	"Off White", "Pure White", "Cream White",
	"Wine Red", "Blood Red", "Cherry Red",

	// aggregates
	"Multicolor", "Multi Color", "Multicolour", "Multi Colour",
	"Assorted", "Mixed", "Rainbow", "Combo",
}

// Lexicon is an immutable set of colour names.
type Lexicon struct {
	colors map[string]struct{}
}

// NewLexicon builds a lexicon from names. Matching is case-insensitive.
func NewLexicon(names ...string) Lexicon {
	colors := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			colors[strings.ToLower(n)] = struct{}{}
		}
	}
	return Lexicon{colors: colors}
}

// DefaultLexicon returns the built-in colour catalogue.
func DefaultLexicon() Lexicon {
	return NewLexicon(defaultColors...)
}

// IsKnownColor reports whether token exactly names a catalogued colour, ignoring case.
func (l Lexicon) IsKnownColor(token string) bool {
	_, ok := l.colors[strings.ToLower(token)]
	return ok
}

// Len returns the number of catalogued names.
func (l Lexicon) Len() int {
	return len(l.colors)
}
