package util

import (
	"regexp"
	"strings"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and joins its alphanumeric runs with dashes. fallback
// is returned when nothing is left.
func Slugify(s, fallback string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonSlug.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return fallback
	}
	return s
}

// Page converts a 1-based page number into a SQL offset and clamps bad input
// to the first page.
func Page(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	return page, (page - 1) * limit
}

// TotalPages is ceil(count/limit).
func TotalPages(count, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (count + limit - 1) / limit
}
