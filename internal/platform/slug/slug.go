package slug

import (
	"regexp"
	"strings"
)

var separators = regexp.MustCompile(`[^a-z0-9]+`)

// Make lowercases input and joins its alphanumeric runs with dashes. Input
// with nothing usable yields fallback.
func Make(input, fallback string) string {
	s := separators.ReplaceAllString(strings.ToLower(strings.TrimSpace(input)), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return fallback
	}
	return s
}

// Short is Make cut to at most n characters without a trailing dash.
func Short(input string, n int, fallback string) string {
	s := Make(input, fallback)
	if n > 0 && len(s) > n {
		s = strings.TrimRight(s[:n], "-")
	}
	if s == "" {
		return fallback
	}
	return s
}
