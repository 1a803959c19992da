package enrichment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"distress/internal/audit"
	"distress/internal/enrichment/metrics"
)

// Service runs gazette batches through the resolution machine and collects
// the two ordered output sets. Records are processed strictly sequentially
// unless workers > 1, in which case each record still owns an independent
// resolution context and outputs are compacted back into input order.
type Service struct {
	machine *Machine
	audit   audit.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
	workers int
}

// ServiceOption configures a Service.
type ServiceOption func(s *Service)

// WithAuditPublisher attaches an outcome event publisher.
func WithAuditPublisher(p audit.Publisher) ServiceOption {
	return func(s *Service) {
		s.audit = p
	}
}

// WithServiceMetrics attaches pipeline metrics.
func WithServiceMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithServiceLogger attaches a structured logger.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithWorkers enables the parallel batch mode. Values below 2 keep the
// sequential reference behavior.
func WithWorkers(n int) ServiceOption {
	return func(s *Service) {
		if n > 1 {
			s.workers = n
		}
	}
}

// NewService constructs a batch service around a resolution machine.
func NewService(machine *Machine, opts ...ServiceOption) (*Service, error) {
	if machine == nil {
		return nil, fmt.Errorf("resolution machine is required")
	}
	s := &Service{
		machine: machine,
		logger:  slog.Default(),
		workers: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run processes one batch. Records with empty company names never enter the
// machine. On a fatal error (property index down, cancellation) the output
// produced so far is returned alongside the error; prior records are never
// discarded.
func (s *Service) Run(ctx context.Context, records []GazetteRecord) (*BatchResult, error) {
	result := &BatchResult{
		BatchID:  uuid.New(),
		Accepted: []EnrichedCompany{},
		Rejected: []FailedRecord{},
	}

	eligible := make([]GazetteRecord, 0, len(records))
	for _, rec := range records {
		if rec.CompanyName == "" {
			continue
		}
		eligible = append(eligible, rec)
	}

	s.logger.Info("batch started",
		"batch_id", result.BatchID,
		"records", len(eligible),
		"workers", s.workers,
	)

	var (
		outcomes []*Outcome
		runErr   error
	)
	if s.workers > 1 {
		outcomes, runErr = s.runParallel(ctx, eligible)
	} else {
		outcomes, runErr = s.runSequential(ctx, eligible)
	}

	for _, out := range outcomes {
		if out != nil {
			s.collect(ctx, result, *out)
		}
	}

	s.logger.Info("batch finished",
		"batch_id", result.BatchID,
		"accepted", len(result.Accepted),
		"rejected", len(result.Rejected),
		"dropped", result.Dropped,
	)
	return result, runErr
}

func (s *Service) runSequential(ctx context.Context, records []GazetteRecord) ([]*Outcome, error) {
	outcomes := make([]*Outcome, 0, len(records))
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		out, err := s.machine.Resolve(ctx, rec)
		if err != nil {
			return outcomes, fmt.Errorf("resolve %q: %w", rec.CompanyName, err)
		}
		outcomes = append(outcomes, &out)
	}
	return outcomes, nil
}

// runParallel fans records out over a bounded worker group. Outcomes land
// in index-addressed slots so input order survives reordering; no lock is
// held across any network call.
func (s *Service) runParallel(ctx context.Context, records []GazetteRecord) ([]*Outcome, error) {
	outcomes := make([]*Outcome, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, rec := range records {
		g.Go(func() error {
			out, err := s.machine.Resolve(gctx, rec)
			if err != nil {
				return fmt.Errorf("resolve %q: %w", rec.CompanyName, err)
			}
			outcomes[i] = &out
			return nil
		})
	}
	err := g.Wait()
	return outcomes, err
}

// collect appends one outcome to the batch output and emits its metrics and
// audit event.
func (s *Service) collect(ctx context.Context, result *BatchResult, out Outcome) {
	eventType := audit.EventRecordDropped
	switch out.Kind {
	case OutcomeAccepted:
		result.Accepted = append(result.Accepted, *out.Accepted)
		eventType = audit.EventRecordAccepted
	case OutcomeRejected:
		result.Rejected = append(result.Rejected, *out.Rejected)
		eventType = audit.EventRecordRejected
	case OutcomeDropped:
		result.Dropped++
	}
	s.metrics.RecordOutcome(string(out.Kind))

	if s.audit == nil {
		return
	}
	err := s.audit.Emit(ctx, audit.Event{
		BatchID:       result.BatchID,
		Type:          eventType,
		CompanyName:   out.CompanyName,
		CompanyNumber: out.CompanyNumber,
		Confidence:    out.Confidence,
		PropertyCount: out.PropertyCount,
	})
	if err != nil {
		s.logger.Warn("outcome event emit failed", "batch_id", result.BatchID, "error", err)
	}
}
