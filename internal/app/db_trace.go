package app

import (
	"fmt"
	"regexp"
	"strings"
)

const maxTracedQueryLength = 512

var (
	queryWhitespaceRegex = regexp.MustCompile(`\s+`)
	// Page commits insert one tuple per manager; spans keep the first one.
	queryValuesRegex = regexp.MustCompile(`(?i)(VALUES \([^()]*\))((?:, ?\([^()]*\))+)`)
)

func formatDBQueryForTrace(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	normalized := queryWhitespaceRegex.ReplaceAllString(query, " ")
	normalized = queryValuesRegex.ReplaceAllStringFunc(normalized, func(match string) string {
		parts := queryValuesRegex.FindStringSubmatch(match)
		extra := strings.Count(parts[2], "(")
		return fmt.Sprintf("%s /* +%d rows */", parts[1], extra)
	})
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}

	return normalized[:maxTracedQueryLength] + "..."
}
