package services

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultSupplier is used when an import carries no usable supplier
// name, so mapping memory still accumulates under one shared bucket.
const DefaultSupplier = "General"

var (
	stripMarks     = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// NormalizeSourceColumn canonicalizes a free-form spreadsheet header
// into the key used to join differently-spelled headers: accents are
// decomposed and stripped, the result lowercased and trimmed.
// "Matière" and "matiere" normalize identically. Total and idempotent.
func NormalizeSourceColumn(value string) string {
	stripped, _, err := transform.String(stripMarks, value)
	if err != nil {
		// transform only fails on malformed input; fall back to the raw
		// string so the function stays total.
		stripped = value
	}
	return strings.TrimSpace(strings.ToLower(stripped))
}

// NormalizeSupplierName trims and collapses internal whitespace runs so
// formatting differences in a supplier's display name do not fragment
// its learned-mapping history. Empty or whitespace-only input maps to
// DefaultSupplier.
func NormalizeSupplierName(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return DefaultSupplier
	}
	return whitespaceRuns.ReplaceAllString(trimmed, " ")
}
