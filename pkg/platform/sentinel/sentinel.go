package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Adapters and stores return these
// (optionally wrapped) so the pipeline can tell factual absence apart from
// infrastructure failure:
// - ErrNotFound: record does not exist; valid absence, not a failure
// - ErrUnavailable: dependency temporarily unavailable after retries
var (
	ErrNotFound    = errors.New("not found")
	ErrUnavailable = errors.New("unavailable")
)
