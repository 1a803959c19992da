package enrichment

import (
	"time"

	"github.com/google/uuid"

	"distress/internal/property"
	"distress/internal/registry"
)

// GazetteRecord is one insolvency notice parsed from a gazette batch.
// Records are read-only to the pipeline; a record with an empty company
// name never enters the state machine.
type GazetteRecord struct {
	CompanyName    string     `json:"company_name"`
	InsolvencyType string     `json:"insolvency_type,omitempty"`
	NoticeDate     *time.Time `json:"notice_date,omitempty"`
	IPName         string     `json:"ip_name,omitempty"`
	IPFirm         string     `json:"ip_firm,omitempty"`
}

// EnrichedCompany is the accepted output record: the input fields plus the
// resolved registry identity, officeholder detail, and property list.
type EnrichedCompany struct {
	CompanyName     string         `json:"company_name"`
	CompanyNumber   string         `json:"company_number,omitempty"`
	CompanyStatus   string         `json:"company_status,omitempty"`
	InsolvencyType  string         `json:"insolvency_type,omitempty"`
	NoticeDate      *time.Time     `json:"notice_date,omitempty"`
	IPName          string         `json:"ip_name,omitempty"`
	IPFirm          string         `json:"ip_firm,omitempty"`
	IPAppointedDate *time.Time     `json:"ip_appointed_date,omitempty"`
	PropertyCount   int            `json:"property_count"`
	Properties      []property.Ref `json:"properties"`
	MatchConfidence int            `json:"match_confidence"`
}

// FailedRecord is the rejected output record.
type FailedRecord struct {
	CompanyName string `json:"company_name"`
	Reason      string `json:"reason"`
	Confidence  int    `json:"confidence"`
}

// ReasonLowConfidence is the only rejection reason the classifier emits: a
// zero-property record whose match confidence fell below the acceptance
// threshold.
const ReasonLowConfidence = "low_confidence_match"

// AcceptanceThreshold is the confidence below which a zero-property record
// is rejected rather than silently dropped.
const AcceptanceThreshold = 80

// BatchResult is the ordered output of one batch run. Accepted and Rejected
// preserve input order; Dropped counts the zero-property, high-confidence
// records that produce no output record.
type BatchResult struct {
	BatchID  uuid.UUID         `json:"batch_id"`
	Accepted []EnrichedCompany `json:"accepted"`
	Rejected []FailedRecord    `json:"rejected"`
	Dropped  int               `json:"dropped"`
}

// resolutionContext is the mutable per-record state threaded through the
// resolution steps. Exactly one exists per in-flight record and none
// outlives its record.
type resolutionContext struct {
	record GazetteRecord

	candidates    []registry.Candidate
	companyNumber string
	profile       *registry.CompanyProfile
	insolvency    *registry.InsolvencyDetail
	properties    []property.Ref
	confidence    int
}
