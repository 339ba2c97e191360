package routes

import (
	"strings"
	"unicode/utf8"
)

const (
	// maxEditDistance is the typo tolerance for fuzzy matches.
	maxEditDistance = 2
	// shortQueryLength is the longest query compared against the whole field.
	shortQueryLength = 3
)

// NormalizeQuery trims surrounding whitespace and lower-cases the query.
func NormalizeQuery(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// MatchesQuery reports whether text matches an already normalized query.
//
// A contiguous substring always matches. Queries of up to three runes are
// compared against the whole field with a distance of at most two in either
// direction, which tolerates typos in bus codes like "e1" for "E-1". Longer
// queries are compared word by word, so a single mistyped stop name still
// matches but a typo spanning two words does not.
func MatchesQuery(text, query string) bool {
	if query == "" {
		return true
	}

	lowered := strings.ToLower(text)
	if strings.Contains(lowered, query) {
		return true
	}

	if utf8.RuneCountInString(query) <= shortQueryLength {
		return Levenshtein(lowered, query) <= maxEditDistance ||
			Levenshtein(query, lowered) <= maxEditDistance
	}

	for _, word := range strings.Fields(lowered) {
		if Levenshtein(word, query) <= maxEditDistance {
			return true
		}
	}
	return false
}
