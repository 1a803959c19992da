package registry

// Candidate is a registry entry proposed as a possible match for a gazette
// company name. Candidates are transient, scoped to a single record.
type Candidate struct {
	CompanyNumber string `json:"company_number"`
	Title         string `json:"title"`
	Status        string `json:"company_status"`
}

// CompanyProfile is the subset of the company detail endpoint the pipeline
// needs.
type CompanyProfile struct {
	CompanyNumber string `json:"company_number"`
	CompanyName   string `json:"company_name"`
	Status        string `json:"company_status"`
}

// Practitioner is an insolvency practitioner attached to a case.
type Practitioner struct {
	Name        string `json:"name"`
	AppointedOn string `json:"appointed_on"`
}

// InsolvencyCase groups the practitioners appointed for one proceeding.
type InsolvencyCase struct {
	Practitioners []Practitioner `json:"practitioners"`
}

// InsolvencyDetail is the registry's insolvency history for a company.
// Cases are ordered most recent first.
type InsolvencyDetail struct {
	Cases []InsolvencyCase `json:"cases"`
}
