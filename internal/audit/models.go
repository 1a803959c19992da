package audit

import (
	"time"

	"github.com/google/uuid"
)

// EventType names the classification outcome an event records.
type EventType string

const (
	EventRecordAccepted EventType = "record.accepted"
	EventRecordRejected EventType = "record.rejected"
	EventRecordDropped  EventType = "record.dropped"
)

// Event is one classified record's outcome, emitted for downstream
// observability. Events are append-only and carry no gazette payload beyond
// the company name.
type Event struct {
	ID            uuid.UUID `json:"id"`
	BatchID       uuid.UUID `json:"batch_id"`
	Type          EventType `json:"type"`
	CompanyName   string    `json:"company_name"`
	CompanyNumber string    `json:"company_number,omitempty"`
	Confidence    int       `json:"confidence"`
	PropertyCount int       `json:"property_count"`
	Timestamp     time.Time `json:"timestamp"`
}
