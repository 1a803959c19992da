package enrichment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"distress/internal/enrichment/disambig"
	"distress/internal/enrichment/matcher"
	"distress/internal/enrichment/metrics"
	"distress/internal/property"
	"distress/internal/registry"
)

// state tags one step of the per-record resolution machine. Transitions are
// strictly forward: searching -> (disambiguating) -> resolving ->
// classifying.
type state int

const (
	stateSearching state = iota
	stateDisambiguating
	stateResolving
	stateClassifying
)

func (s state) String() string {
	switch s {
	case stateSearching:
		return "searching"
	case stateDisambiguating:
		return "disambiguating"
	case stateResolving:
		return "resolving"
	case stateClassifying:
		return "classifying"
	default:
		return "unknown"
	}
}

// Machine resolves a single gazette record to a classified outcome. It owns
// no mutable state of its own; each Resolve call builds a fresh
// resolutionContext, so one Machine is safe for concurrent records.
type Machine struct {
	searcher   registry.Searcher
	detailer   registry.Detailer
	assistant  disambig.Disambiguator
	properties property.Store
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// MachineOption configures a Machine.
type MachineOption func(m *Machine)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) MachineOption {
	return func(m *Machine) {
		m.logger = logger
	}
}

// WithMetrics attaches pipeline metrics.
func WithMetrics(met *metrics.Metrics) MachineOption {
	return func(m *Machine) {
		m.metrics = met
	}
}

// NewMachine constructs the resolution machine from its collaborators.
func NewMachine(
	searcher registry.Searcher,
	detailer registry.Detailer,
	assistant disambig.Disambiguator,
	properties property.Store,
	opts ...MachineOption,
) (*Machine, error) {
	if searcher == nil {
		return nil, fmt.Errorf("registry searcher is required")
	}
	if detailer == nil {
		return nil, fmt.Errorf("registry detailer is required")
	}
	if assistant == nil {
		return nil, fmt.Errorf("disambiguator is required")
	}
	if properties == nil {
		return nil, fmt.Errorf("property store is required")
	}

	m := &Machine{
		searcher:   searcher,
		detailer:   detailer,
		assistant:  assistant,
		properties: properties,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Resolve runs one record through the state machine and classifies it.
// Registry and assistant failures degrade the record; a property store
// failure is returned as an error because the index has no degraded mode
// (a silent zero-property result would be misclassified as a rejection).
func (m *Machine) Resolve(ctx context.Context, record GazetteRecord) (Outcome, error) {
	rc := &resolutionContext{record: record}

	st := stateSearching
	for {
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}

		start := time.Now()
		var (
			next state
			err  error
		)
		switch st {
		case stateSearching:
			next = m.search(ctx, rc)
		case stateDisambiguating:
			next, err = m.disambiguate(ctx, rc)
		case stateResolving:
			next, err = m.resolve(ctx, rc)
		case stateClassifying:
			return m.classify(rc), nil
		}
		m.metrics.ObserveStep(st.String(), time.Since(start))
		if err != nil {
			return Outcome{}, err
		}
		st = next
	}
}

// search queries the registry and attempts a deterministic match. An empty
// candidate set skips disambiguation entirely; detail lookups are skipped
// later because no company number was resolved, but property resolution by
// name still runs.
func (m *Machine) search(ctx context.Context, rc *resolutionContext) state {
	candidates, err := m.searcher.Search(ctx, rc.record.CompanyName, registry.DefaultSearchLimit)
	if err != nil {
		m.logger.Warn("registry search degraded to no candidates",
			"company", rc.record.CompanyName, "error", err)
		candidates = nil
	}
	rc.candidates = candidates

	if len(candidates) == 0 {
		rc.confidence = 0
		return stateResolving
	}

	if match, ok := matcher.Match(rc.record.CompanyName, candidates); ok {
		rc.companyNumber = match.CompanyNumber
		rc.confidence = 100
		m.metrics.IncrementExactMatch()
		return stateResolving
	}
	return stateDisambiguating
}

// disambiguate consults the assistant. Selection and confidence are applied
// atomically; any failure leaves the context unresolved with confidence 0.
func (m *Machine) disambiguate(ctx context.Context, rc *resolutionContext) (state, error) {
	sel, err := m.assistant.SelectMatch(ctx, rc.record.CompanyName, rc.candidates)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		m.logger.Warn("disambiguation degraded to no selection",
			"company", rc.record.CompanyName, "error", err)
		sel = disambig.NoSelection
	}

	if sel.Index >= 0 && sel.Index < len(rc.candidates) {
		rc.companyNumber = rc.candidates[sel.Index].CompanyNumber
		rc.confidence = sel.Confidence
		m.metrics.IncrementAssistedMatch()
	}
	return stateResolving, nil
}

// resolve fetches company detail (when a number was resolved) and the
// property list: exact company-number lookup first, fuzzy name similarity
// only when the exact lookup finds nothing.
func (m *Machine) resolve(ctx context.Context, rc *resolutionContext) (state, error) {
	if rc.companyNumber != "" {
		profile, err := m.detailer.Profile(ctx, rc.companyNumber)
		if err != nil {
			m.logger.Warn("company profile unavailable", "company_number", rc.companyNumber, "error", err)
		} else {
			rc.profile = profile
		}

		insolvency, err := m.detailer.Insolvency(ctx, rc.companyNumber)
		if err != nil {
			m.logger.Warn("insolvency detail unavailable", "company_number", rc.companyNumber, "error", err)
		} else {
			rc.insolvency = insolvency
		}

		refs, err := m.properties.FindByCompanyNumber(ctx, rc.companyNumber)
		if err != nil {
			return 0, fmt.Errorf("property lookup by company number: %w", err)
		}
		if len(refs) > 0 {
			rc.properties = refs
			return stateClassifying, nil
		}
	}

	refs, err := m.properties.FindByNameSimilarity(ctx, rc.record.CompanyName)
	if err != nil {
		return 0, fmt.Errorf("property lookup by name: %w", err)
	}
	rc.properties = refs
	return stateClassifying, nil
}
