// Package matcher performs deterministic company-name matching. Gazette
// notices and the company registry disagree on casing, punctuation, and the
// usual LIMITED/LTD and &/AND variants; both sides are reduced to a
// canonical form before an exact-equality comparison.
package matcher

import (
	"regexp"
	"strings"

	"distress/internal/registry"
)

var (
	thePrefix  = regexp.MustCompile(`^THE\s+`)
	limited    = regexp.MustCompile(`\bLIMITED\b`)
	ampersand  = regexp.MustCompile(`\s*&\s*`)
	punct      = regexp.MustCompile(`[^\w\s]`)
	whitespace = regexp.MustCompile(`\s+`)
)

// Normalize reduces a company name to its canonical comparison form:
// uppercase, leading THE stripped, LIMITED collapsed to LTD, ampersands
// collapsed to AND, punctuation removed, whitespace collapsed.
// Normalize is idempotent.
func Normalize(name string) string {
	n := strings.ToUpper(strings.TrimSpace(name))
	n = thePrefix.ReplaceAllString(n, "")
	n = limited.ReplaceAllString(n, "LTD")
	n = ampersand.ReplaceAllString(n, " AND ")
	n = punct.ReplaceAllString(n, "")
	n = whitespace.ReplaceAllString(n, " ")
	return strings.TrimSpace(n)
}

// Match returns the first candidate whose normalized title equals the
// normalized name, in input order. Pure, no I/O.
func Match(name string, candidates []registry.Candidate) (registry.Candidate, bool) {
	want := Normalize(name)
	for _, c := range candidates {
		if Normalize(c.Title) == want {
			return c, true
		}
	}
	return registry.Candidate{}, false
}

// NamesMatch reports whether two company names are equal after
// normalization.
func NamesMatch(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
