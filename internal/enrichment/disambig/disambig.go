// Package disambig breaks name-matching ties that the deterministic matcher
// cannot resolve. A reasoning service is shown the gazette name and the
// enumerated registry candidates and asked for a structured selection; the
// parsing here is deliberately defensive because the reply is free text that
// only promises to contain one JSON object.
package disambig

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"distress/internal/registry"
)

// Selection is the assistant's verdict: a zero-based index into the
// candidate slice, or -1 for no match, with a 0-100 confidence.
type Selection struct {
	Index      int `json:"index"`
	Confidence int `json:"confidence"`
}

// NoSelection is the degraded verdict used whenever the assistant's reply
// cannot be trusted.
var NoSelection = Selection{Index: -1, Confidence: 0}

// Disambiguator selects the best candidate for a gazette name, or reports
// no match. Implementations do not retry; transport concerns stay in the
// transport.
type Disambiguator interface {
	SelectMatch(ctx context.Context, name string, candidates []registry.Candidate) (Selection, error)
}

// ParseSelection extracts and validates a Selection from a free-text reply.
// Malformed JSON, an index outside [0, len(candidates)), or a negative
// index all degrade to NoSelection. The confidence is only honored together
// with a valid index, and is clamped to [0, 99]: full confidence is
// reserved for the deterministic matcher.
func ParseSelection(reply string, numCandidates int) Selection {
	obj, ok := extractJSONObject(reply)
	if !ok {
		return NoSelection
	}

	var sel Selection
	if err := json.Unmarshal([]byte(obj), &sel); err != nil {
		return NoSelection
	}
	if sel.Index < 0 || sel.Index >= numCandidates {
		return NoSelection
	}

	if sel.Confidence < 0 {
		sel.Confidence = 0
	}
	if sel.Confidence > 99 {
		sel.Confidence = 99
	}
	return sel
}

// extractJSONObject returns the first balanced JSON object embedded in s.
// Braces inside JSON strings are ignored.
func extractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// FormatCandidates enumerates candidates for the assistant prompt, one per
// line, zero-indexed.
func FormatCandidates(candidates []registry.Candidate) string {
	var b strings.Builder
	for i, c := range candidates {
		fmt.Fprintf(&b, "%d. %s (Number: %s, Status: %s)\n", i, c.Title, c.CompanyNumber, c.Status)
	}
	return strings.TrimRight(b.String(), "\n")
}
