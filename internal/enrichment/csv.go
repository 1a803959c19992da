package enrichment

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Gazette CSV ingestion and enriched CSV output. Data errors are handled
// here, before the state machine: rows without a company name are dropped
// and unparseable dates become nil.

// noticeDateLayouts lists the date shapes gazette exports have been seen
// using. Ambiguous numeric dates are day-first (UK convention).
var noticeDateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"20060102",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// ParseGazetteCSV reads a gazette notice CSV into records. Expected header:
// company_name, insolvency_type, notice_date, ip_name, ip_firm.
func ParseGazetteCSV(r io.Reader) ([]GazetteRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return []GazetteRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read gazette header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}

	records := []GazetteRecord{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read gazette row: %w", err)
		}

		get := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		name := get("company_name")
		if name == "" {
			continue
		}
		records = append(records, GazetteRecord{
			CompanyName:    name,
			InsolvencyType: get("insolvency_type"),
			NoticeDate:     ParseNoticeDate(get("notice_date")),
			IPName:         get("ip_name"),
			IPFirm:         get("ip_firm"),
		})
	}
	return records, nil
}

// ParseNoticeDate parses a gazette date, returning nil for anything it
// cannot read. Partial or year-only dates are rejected rather than guessed.
func ParseNoticeDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range noticeDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

var outputColumns = []string{
	"company_name",
	"company_number",
	"company_status",
	"insolvency_type",
	"notice_date",
	"ip_name",
	"ip_firm",
	"ip_appointed_date",
	"property_count",
	"properties",
	"match_confidence",
}

// WriteCSV encodes accepted records for delivery. Dates are ISO formatted
// and the property list is JSON-serialized into a single column.
func WriteCSV(w io.Writer, accepted []EnrichedCompany) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(outputColumns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, rec := range accepted {
		properties, err := json.Marshal(rec.Properties)
		if err != nil {
			return fmt.Errorf("encode properties for %q: %w", rec.CompanyName, err)
		}
		row := []string{
			rec.CompanyName,
			rec.CompanyNumber,
			rec.CompanyStatus,
			rec.InsolvencyType,
			formatDate(rec.NoticeDate),
			rec.IPName,
			rec.IPFirm,
			formatDate(rec.IPAppointedDate),
			strconv.Itoa(rec.PropertyCount),
			string(properties),
			strconv.Itoa(rec.MatchConfidence),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
