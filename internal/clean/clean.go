package clean

import (
	"html"
	"strings"
)

const (
	// MaxLength bounds every cleaned description.
	MaxLength = 200
	// sentenceWindow is how far into the text we look for a sentence boundary
	// before falling back to a hard cut.
	sentenceWindow = 150
	hardCut        = 197
)

// Description turns raw feed markup into a short, safe plain-text excerpt.
// Entities are decoded, tags stripped, publisher truncation markers removed,
// and the result is bounded at MaxLength runes. If a sentence ends within the
// first sentenceWindow characters we cut there; otherwise we hard-truncate
// and append an ellipsis.
func Description(raw string) string {
	s := html.UnescapeString(raw)
	s = stripTags(s)
	s = stripTruncationMarkers(s)
	s = strings.Join(strings.Fields(s), " ")
	return bound(s)
}

// stripTags removes angle-bracket delimited spans. An unterminated tag
// swallows the rest of the string, which is the conservative choice for
// malformed markup.
func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}

var truncationMarkers = []string{"[...]", "[…]", "[..]", "(...)"}

func stripTruncationMarkers(s string) string {
	for _, m := range truncationMarkers {
		s = strings.ReplaceAll(s, m, "")
	}
	return strings.TrimSpace(s)
}

func bound(s string) string {
	runes := []rune(s)
	if len(runes) <= MaxLength {
		return s
	}

	window := string(runes[:sentenceWindow])
	if i := strings.IndexByte(window, '.'); i > 0 {
		// Cut at the first sentence boundary, keeping the period.
		return strings.TrimSpace(window[:i]) + "."
	}
	return strings.TrimSpace(string(runes[:hardCut])) + "..."
}
