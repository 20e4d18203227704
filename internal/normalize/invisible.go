package normalize

import (
	"strings"
	"unicode"
)

// Characters that render as nothing, or reorder what is displayed, would let
// an "rm -rf /" with a zero-width space inside slip past every pattern. They
// are dropped before matching.

func isInvisible(r rune) bool {
	switch r {
	case '\u200B', '\u200C', '\u200D', '\uFEFF', '\u2060', '\u180E', '\u200E', '\u200F': // zero-width
		return true
	case '\u202A', '\u202B', '\u202C', '\u202D', '\u202E': // bidi embedding and override
		return true
	case '\u2066', '\u2067', '\u2068', '\u2069': // bidi isolates
		return true
	}
	if r >= 0xE0001 && r <= 0xE007F { // tag characters
		return true
	}
	// tab, newline and CR are whitespace and handled by strings.Fields.
	return unicode.IsControl(r) && !unicode.IsSpace(r)
}

func stripInvisible(s string) string {
	return strings.Map(func(r rune) rune {
		if isInvisible(r) {
			return -1
		}
		return r
	}, s)
}

// confusables maps lower-case Cyrillic and Greek letters to the Latin letter
// they are indistinguishable from in a terminal.
var confusables = map[rune]rune{
	// Cyrillic
	'\u0430': 'a', '\u0441': 'c', '\u0501': 'd', '\u0435': 'e',
	'\u0456': 'i', '\u0458': 'j', '\u043E': 'o', '\u0440': 'p',
	'\u0455': 's', '\u0445': 'x', '\u0443': 'y',
	// Greek
	'\u03B1': 'a', '\u03B5': 'e', '\u03B9': 'i', '\u03BA': 'k',
	'\u03BF': 'o', '\u03C1': 'p', '\u03C5': 'u', '\u03BD': 'v',
	'\u03C7': 'x',
}

func foldConfusables(s string) string {
	return strings.Map(func(r rune) rune {
		if l, ok := confusables[r]; ok {
			return l
		}
		return r
	}, s)
}
