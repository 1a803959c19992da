package property

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-memory property index for tests and local runs. The
// fuzzy lookup mirrors pg_trgm's trigram similarity so unit tests exercise
// the same floor and ranking semantics as the PostgreSQL store.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record // keyed by title number
}

// NewMemoryStore constructs an empty in-memory property store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// Seed inserts records directly, for test setup.
func (s *MemoryStore) Seed(records ...Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		s.records[r.TitleNumber] = r
	}
}

func (s *MemoryStore) FindByCompanyNumber(_ context.Context, companyNumber string) ([]Ref, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	refs := []Ref{}
	for _, r := range s.records {
		if r.CompanyNumber != "" && r.CompanyNumber == companyNumber {
			refs = append(refs, Ref{TitleNumber: r.TitleNumber, Address: r.Address})
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].TitleNumber < refs[j].TitleNumber })
	return refs, nil
}

func (s *MemoryStore) FindByNameSimilarity(_ context.Context, companyName string) ([]Ref, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		ref Ref
		sim float64
	}
	matches := []scored{}
	for _, r := range s.records {
		sim := trigramSimilarity(companyName, r.CompanyName)
		if sim > SimilarityFloor {
			matches = append(matches, scored{Ref{TitleNumber: r.TitleNumber, Address: r.Address}, sim})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].sim != matches[j].sim {
			return matches[i].sim > matches[j].sim
		}
		return matches[i].ref.TitleNumber < matches[j].ref.TitleNumber
	})

	refs := []Ref{}
	for _, m := range matches {
		if len(refs) == FuzzyResultCap {
			break
		}
		refs = append(refs, m.ref)
	}
	return refs, nil
}

func (s *MemoryStore) Truncate(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]Record)
	return nil
}

func (s *MemoryStore) UpsertBatch(_ context.Context, records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		s.records[r.TitleNumber] = r
	}
	return nil
}

// Len reports the number of stored records, for loader tests.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// trigramSimilarity computes pg_trgm-style similarity: the Jaccard ratio of
// the two names' trigram sets, on lowercased text padded with two leading
// and one trailing space per word.
func trigramSimilarity(a, b string) float64 {
	ta, tb := trigrams(a), trigrams(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	shared := 0
	for t := range ta {
		if _, ok := tb[t]; ok {
			shared++
		}
	}
	union := len(ta) + len(tb) - shared
	return float64(shared) / float64(union)
}

func trigrams(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, word := range strings.Fields(strings.ToLower(s)) {
		padded := "  " + word + " "
		for i := 0; i+3 <= len(padded); i++ {
			set[padded[i:i+3]] = struct{}{}
		}
	}
	return set
}
