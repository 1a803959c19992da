package enrichment

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"distress/internal/property"
)

func TestParseGazetteCSV(t *testing.T) {
	t.Run("full rows", func(t *testing.T) {
		in := strings.NewReader(
			"company_name,insolvency_type,notice_date,ip_name,ip_firm\n" +
				"Smith Properties Ltd,liquidation,2024-03-15,Jane Doe,Doe & Co\n" +
				"Jones Holdings Ltd,administration,15/04/2024,John Roe,Roe LLP\n")

		records, err := ParseGazetteCSV(in)
		require.NoError(t, err)
		require.Len(t, records, 2)

		assert.Equal(t, "Smith Properties Ltd", records[0].CompanyName)
		assert.Equal(t, "liquidation", records[0].InsolvencyType)
		require.NotNil(t, records[0].NoticeDate)
		assert.Equal(t, "2024-03-15", records[0].NoticeDate.Format("2006-01-02"))
		assert.Equal(t, "Jane Doe", records[0].IPName)
		assert.Equal(t, "Doe & Co", records[0].IPFirm)

		// Day-first numeric date.
		require.NotNil(t, records[1].NoticeDate)
		assert.Equal(t, "2024-04-15", records[1].NoticeDate.Format("2006-01-02"))
	})

	t.Run("rows without a company name are dropped", func(t *testing.T) {
		in := strings.NewReader(
			"company_name,insolvency_type\n" +
				",liquidation\n" +
				"   ,liquidation\n" +
				"Kept Ltd,liquidation\n")

		records, err := ParseGazetteCSV(in)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Kept Ltd", records[0].CompanyName)
	})

	t.Run("missing and extra columns tolerated", func(t *testing.T) {
		in := strings.NewReader(
			"notice_date,company_name,publication\n" +
				"2024-01-02,Acme Ltd,The Gazette\n")

		records, err := ParseGazetteCSV(in)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Acme Ltd", records[0].CompanyName)
		assert.Empty(t, records[0].IPName)
	})

	t.Run("unreadable date becomes nil", func(t *testing.T) {
		in := strings.NewReader(
			"company_name,notice_date\n" +
				"Acme Ltd,sometime in March\n")

		records, err := ParseGazetteCSV(in)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Nil(t, records[0].NoticeDate)
	})

	t.Run("values are trimmed", func(t *testing.T) {
		in := strings.NewReader(
			"company_name, ip_name\n" +
				"  Acme Ltd  ,  Jane Doe  \n")

		records, err := ParseGazetteCSV(in)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "Acme Ltd", records[0].CompanyName)
	})

	t.Run("empty input", func(t *testing.T) {
		records, err := ParseGazetteCSV(strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestParseNoticeDate(t *testing.T) {
	tests := []struct {
		in   string
		want string // "" means nil
	}{
		{"2024-03-15", "2024-03-15"},
		{"15/03/2024", "2024-03-15"},
		{"15-03-2024", "2024-03-15"},
		{"20240315", "2024-03-15"},
		{"15 March 2024", "2024-03-15"},
		{"15 Mar 2024", "2024-03-15"},
		{"March 15, 2024", "2024-03-15"},
		{"Mar 15, 2024", "2024-03-15"},
		{"  2024-03-15  ", "2024-03-15"},
		{"2024", ""},
		{"March 2024", ""},
		{"not a date", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseNoticeDate(tt.in)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
		})
	}
}

func TestWriteCSV(t *testing.T) {
	notice := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	appointed := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	err := WriteCSV(&buf, []EnrichedCompany{
		{
			CompanyName:     "Smith Properties Ltd",
			CompanyNumber:   "12345678",
			CompanyStatus:   "liquidation",
			InsolvencyType:  "liquidation",
			NoticeDate:      &notice,
			IPName:          "Jane Doe",
			IPFirm:          "Doe & Co",
			IPAppointedDate: &appointed,
			PropertyCount:   1,
			Properties:      []property.Ref{{TitleNumber: "DN123456", Address: "1 High Street"}},
			MatchConfidence: 100,
		},
		{
			CompanyName:     "Bare Ltd",
			PropertyCount:   0,
			Properties:      []property.Ref{},
			MatchConfidence: 85,
		},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t,
		"company_name,company_number,company_status,insolvency_type,notice_date,ip_name,ip_firm,ip_appointed_date,property_count,properties,match_confidence",
		lines[0])
	assert.Equal(t,
		`Smith Properties Ltd,12345678,liquidation,liquidation,2024-03-15,Jane Doe,Doe & Co,2024-03-01,1,"[{""title"":""DN123456"",""address"":""1 High Street""}]",100`,
		lines[1])
	assert.Equal(t, "Bare Ltd,,,,,,,,0,[],85", lines[2])
}
