package property

import "time"

// Ref is the slice of a CCOD row the pipeline attaches to an enriched
// record.
type Ref struct {
	TitleNumber string `json:"title"`
	Address     string `json:"address,omitempty"`
}

// Record is a full CCOD (Commercial and Corporate Ownership Data) row as
// loaded from the Land Registry dataset.
type Record struct {
	TitleNumber         string
	Address             string
	CompanyName         string
	CompanyNumber       string
	Tenure              string
	DateProprietorAdded *time.Time
}
