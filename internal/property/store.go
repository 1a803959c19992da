package property

import "context"

// Fuzzy lookup bounds. The floor keeps pg_trgm noise out of client
// deliveries; the cap keeps pathological names from dragging back the whole
// index.
const (
	SimilarityFloor = 0.8
	FuzzyResultCap  = 100
)

// Store is the read side of the property index. Both lookups return refs in
// store order (exact lookups by title number, fuzzy lookups by descending
// similarity); no rows is an empty slice, not an error. A returned error
// means the index itself is unavailable, which is fatal for a batch.
type Store interface {
	FindByCompanyNumber(ctx context.Context, companyNumber string) ([]Ref, error)
	FindByNameSimilarity(ctx context.Context, companyName string) ([]Ref, error)
}

// BulkStore is the write side used by the CCOD refresh job.
type BulkStore interface {
	Truncate(ctx context.Context) error
	UpsertBatch(ctx context.Context, records []Record) error
}
