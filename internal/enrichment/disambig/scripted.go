package disambig

import (
	"context"
	"sync"

	"distress/internal/registry"
)

// Scripted is a deterministic, table-driven Disambiguator for tests. Each
// call consumes the next scripted raw reply (in order) and parses it through
// the same defensive path as the production client, so tests exercise real
// parsing against canned transcripts.
type Scripted struct {
	mu      sync.Mutex
	replies []string
	calls   []string
}

// NewScripted builds a Scripted assistant that will return the given raw
// replies in order. Once exhausted it reports no selection.
func NewScripted(replies ...string) *Scripted {
	return &Scripted{replies: replies}
}

func (s *Scripted) SelectMatch(_ context.Context, name string, candidates []registry.Candidate) (Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, name)
	if len(s.replies) == 0 {
		return NoSelection, nil
	}
	reply := s.replies[0]
	s.replies = s.replies[1:]
	return ParseSelection(reply, len(candidates)), nil
}

// Calls returns the company names the assistant was asked about, in order.
func (s *Scripted) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}
