package enrichment

import "time"

// OutcomeKind routes a classified record.
type OutcomeKind string

const (
	OutcomeAccepted OutcomeKind = "accepted"
	OutcomeRejected OutcomeKind = "rejected"
	OutcomeDropped  OutcomeKind = "dropped"
)

// Outcome is the classification of one record. Exactly one of Accepted or
// Rejected is set for their respective kinds; a dropped record carries only
// the context summary needed for observability.
type Outcome struct {
	Kind          OutcomeKind
	Accepted      *EnrichedCompany
	Rejected      *FailedRecord
	CompanyName   string
	CompanyNumber string
	Confidence    int
	PropertyCount int
}

// classify assembles the enriched record and routes it:
//
//	property_count > 0                -> accepted
//	property_count == 0, conf < 80    -> rejected (low_confidence_match)
//	property_count == 0, conf >= 80   -> dropped, no output record
func (m *Machine) classify(rc *resolutionContext) Outcome {
	out := Outcome{
		CompanyName:   rc.record.CompanyName,
		CompanyNumber: rc.companyNumber,
		Confidence:    rc.confidence,
		PropertyCount: len(rc.properties),
	}

	switch {
	case len(rc.properties) > 0:
		out.Kind = OutcomeAccepted
		out.Accepted = m.buildEnriched(rc)
	case rc.confidence < AcceptanceThreshold:
		out.Kind = OutcomeRejected
		out.Rejected = &FailedRecord{
			CompanyName: rc.record.CompanyName,
			Reason:      ReasonLowConfidence,
			Confidence:  rc.confidence,
		}
	default:
		out.Kind = OutcomeDropped
		m.logger.Debug("record dropped",
			"company", rc.record.CompanyName,
			"confidence", rc.confidence,
		)
	}
	return out
}

// buildEnriched prefers resolved officeholder detail, falling back to the
// values the gazette notice carried.
func (m *Machine) buildEnriched(rc *resolutionContext) *EnrichedCompany {
	ipName := rc.record.IPName
	var appointed *time.Time

	if rc.insolvency != nil && len(rc.insolvency.Cases) > 0 {
		practitioners := rc.insolvency.Cases[0].Practitioners
		if len(practitioners) > 0 {
			if practitioners[0].Name != "" {
				ipName = practitioners[0].Name
			}
			if t, err := time.Parse("2006-01-02", practitioners[0].AppointedOn); err == nil {
				appointed = &t
			}
		}
	}

	status := ""
	if rc.profile != nil {
		status = rc.profile.Status
	}

	return &EnrichedCompany{
		CompanyName:     rc.record.CompanyName,
		CompanyNumber:   rc.companyNumber,
		CompanyStatus:   status,
		InsolvencyType:  rc.record.InsolvencyType,
		NoticeDate:      rc.record.NoticeDate,
		IPName:          ipName,
		IPFirm:          rc.record.IPFirm,
		IPAppointedDate: appointed,
		PropertyCount:   len(rc.properties),
		Properties:      rc.properties,
		MatchConfidence: rc.confidence,
	}
}
