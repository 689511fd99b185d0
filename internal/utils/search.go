package utils

import "strings"

// queryOperators are the characters and keywords that mark a search input as
// already carrying explicit query-language syntax.
var queryOperators = []string{":", "*", "\"", "(", ")", " AND ", " OR ", " NOT "}

// NormalizeSearchTerm appends a trailing wildcard to free-text input. Input
// that already uses query syntax is passed through unmodified.
func NormalizeSearchTerm(term string) string {
	trimmed := strings.TrimSpace(term)
	if trimmed == "" {
		return trimmed
	}
	for _, op := range queryOperators {
		if strings.Contains(trimmed, op) {
			return trimmed
		}
	}
	return trimmed + "*"
}
