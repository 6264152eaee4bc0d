// Package stringutil provides common string manipulation utilities.
package stringutil

import "strings"

// NormalizeQuery trims surrounding whitespace and lower-cases a search query.
// The result is the form expected by ContainsFold.
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// ContainsFold reports whether s contains the already-normalized query.
// An empty query matches everything.
//
// Example:
//
//	ContainsFold("Пермский ГАТУ", "гату") returns true
func ContainsFold(s, normalizedQuery string) bool {
	if normalizedQuery == "" {
		return true
	}
	if s == "" {
		return false
	}
	return strings.Contains(strings.ToLower(s), normalizedQuery)
}

// FirstNonEmpty returns the first argument that is not blank, trimmed.
// Used to resolve field aliases such as site/website.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if t := strings.TrimSpace(v); t != "" {
			return t
		}
	}
	return ""
}
