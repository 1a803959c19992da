package enrichment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"distress/internal/audit"
	"distress/internal/enrichment/disambig"
	"distress/internal/property"
	"distress/internal/registry"
)

// faultyStore delegates to a MemoryStore but fails fuzzy lookups for one
// specific company name, to exercise mid-batch fatal errors.
type faultyStore struct {
	*property.MemoryStore
	failFor string
}

func (s *faultyStore) FindByNameSimilarity(ctx context.Context, name string) ([]property.Ref, error) {
	if name == s.failFor {
		return nil, errors.New("property index unavailable")
	}
	return s.MemoryStore.FindByNameSimilarity(ctx, name)
}

type ServiceSuite struct {
	suite.Suite
	searcher *stubSearcher
	store    *property.MemoryStore
	machine  *Machine
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

// The fixture avoids the assistant entirely: every searched name either
// matches its single candidate exactly or finds no candidates, so outcomes
// are deterministic under any processing order.
func (s *ServiceSuite) SetupTest() {
	s.searcher = &stubSearcher{results: map[string][]registry.Candidate{
		"Alpha Properties Ltd": {{CompanyNumber: "10000001", Title: "ALPHA PROPERTIES LTD", Status: "liquidation"}},
		"Beta Holdings Ltd":    {{CompanyNumber: "10000002", Title: "BETA HOLDINGS LTD", Status: "liquidation"}},
	}}
	s.store = property.NewMemoryStore()
	s.store.Seed(
		property.Record{TitleNumber: "DN000001", Address: "1 Alpha Way", CompanyName: "Alpha Properties Ltd", CompanyNumber: "10000001"},
		property.Record{TitleNumber: "DN000002", Address: "2 Alpha Way", CompanyName: "Alpha Properties Ltd", CompanyNumber: "10000001"},
	)

	machine, err := NewMachine(s.searcher, &stubDetailer{}, disambig.NewScripted(), s.store)
	s.Require().NoError(err)
	s.machine = machine
}

// batch covers all three outcomes plus a filtered empty name:
// Alpha accepts (exact match, two properties), Beta drops (exact match, no
// properties), Gamma rejects (no candidates, no properties).
func (s *ServiceSuite) batch() []GazetteRecord {
	return []GazetteRecord{
		{CompanyName: "Alpha Properties Ltd", InsolvencyType: "liquidation"},
		{CompanyName: ""},
		{CompanyName: "Beta Holdings Ltd"},
		{CompanyName: "Gamma Ventures Ltd"},
	}
}

func (s *ServiceSuite) TestNewService() {
	_, err := NewService(nil)
	s.Error(err)

	svc, err := NewService(s.machine)
	s.NoError(err)
	s.NotNil(svc)
}

func (s *ServiceSuite) TestRunSequential() {
	publisher := audit.NewMemoryPublisher()
	svc, err := NewService(s.machine, WithAuditPublisher(publisher))
	s.Require().NoError(err)

	result, err := svc.Run(context.Background(), s.batch())
	s.Require().NoError(err)

	s.NotEqual("00000000-0000-0000-0000-000000000000", result.BatchID.String())

	s.Require().Len(result.Accepted, 1)
	s.Equal("Alpha Properties Ltd", result.Accepted[0].CompanyName)
	s.Equal("10000001", result.Accepted[0].CompanyNumber)
	s.Equal(100, result.Accepted[0].MatchConfidence)
	s.Equal(2, result.Accepted[0].PropertyCount)

	s.Require().Len(result.Rejected, 1)
	s.Equal("Gamma Ventures Ltd", result.Rejected[0].CompanyName)
	s.Equal(ReasonLowConfidence, result.Rejected[0].Reason)

	s.Equal(1, result.Dropped)

	// One event per processed record, tagged with the batch and in input
	// order; the empty-name record never produced one.
	events := publisher.Events()
	s.Require().Len(events, 3)
	s.Equal(audit.EventRecordAccepted, events[0].Type)
	s.Equal(audit.EventRecordDropped, events[1].Type)
	s.Equal(audit.EventRecordRejected, events[2].Type)
	for _, e := range events {
		s.Equal(result.BatchID, e.BatchID)
		s.False(e.Timestamp.IsZero())
	}
}

// Parallel mode must produce the same output sets in the same order as the
// sequential reference.
func (s *ServiceSuite) TestParallelMatchesSequential() {
	records := append(s.batch(),
		GazetteRecord{CompanyName: "Delta Ltd"},
		GazetteRecord{CompanyName: "Alpha Properties Ltd"},
	)

	sequential, err := NewService(s.machine)
	s.Require().NoError(err)
	parallel, err := NewService(s.machine, WithWorkers(4))
	s.Require().NoError(err)

	seqResult, err := sequential.Run(context.Background(), records)
	s.Require().NoError(err)
	parResult, err := parallel.Run(context.Background(), records)
	s.Require().NoError(err)

	s.Equal(seqResult.Accepted, parResult.Accepted)
	s.Equal(seqResult.Rejected, parResult.Rejected)
	s.Equal(seqResult.Dropped, parResult.Dropped)
}

// WithWorkers below 2 keeps the sequential path.
func (s *ServiceSuite) TestWorkerFloor() {
	svc, err := NewService(s.machine, WithWorkers(0))
	s.Require().NoError(err)
	s.Equal(1, svc.workers)
}

// A fatal mid-batch failure surfaces as an error without discarding the
// records already processed.
func (s *ServiceSuite) TestFatalErrorKeepsPartialOutput() {
	machine, err := NewMachine(s.searcher, &stubDetailer{}, disambig.NewScripted(),
		&faultyStore{MemoryStore: s.store, failFor: "Broken Ltd"})
	s.Require().NoError(err)
	svc, err := NewService(machine)
	s.Require().NoError(err)

	result, err := svc.Run(context.Background(), []GazetteRecord{
		{CompanyName: "Alpha Properties Ltd"},
		{CompanyName: "Broken Ltd"},
		{CompanyName: "Gamma Ventures Ltd"},
	})
	s.Require().Error(err)
	s.Require().NotNil(result)
	s.Len(result.Accepted, 1)
	s.Empty(result.Rejected)
}

func (s *ServiceSuite) TestCancelledBatch() {
	svc, err := NewService(s.machine)
	s.Require().NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = svc.Run(ctx, s.batch())
	s.ErrorIs(err, context.Canceled)
}
