package pep508

import (
	"regexp"
	"strings"
)

var separatorRE = regexp.MustCompile(`[-_.]+`)

// NormalizeExtra converts an extra name to its canonical form (PEP 685):
// every run of "-", "_" and "." becomes a single "-", then the result is
// lowercased. NormalizeExtra is idempotent.
func NormalizeExtra(extra string) string {
	return strings.ToLower(separatorRE.ReplaceAllString(extra, "-"))
}

// NormalizeName converts a distribution name to its canonical form (PEP 503).
// Surrounding whitespace is dropped.
func NormalizeName(name string) string {
	return NormalizeExtra(strings.TrimSpace(name))
}
