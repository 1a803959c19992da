package property

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// PostgresStore serves the property index from the ccod_properties table.
// Fuzzy lookups rely on the pg_trgm extension's similarity().
// This store is pure I/O; ordering and bounds are fixed in SQL so every
// reader sees the same ranking.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed property store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindByCompanyNumber(ctx context.Context, companyNumber string) ([]Ref, error) {
	query := `
		SELECT title_number, COALESCE(property_address, '')
		FROM ccod_properties
		WHERE company_number = $1
		ORDER BY title_number
	`
	rows, err := s.db.QueryContext(ctx, query, companyNumber)
	if err != nil {
		return nil, fmt.Errorf("find properties by company number: %w", err)
	}
	defer rows.Close()
	return scanRefs(rows)
}

func (s *PostgresStore) FindByNameSimilarity(ctx context.Context, companyName string) ([]Ref, error) {
	query := `
		SELECT title_number, COALESCE(property_address, '')
		FROM ccod_properties
		WHERE similarity(company_name, $1) > $2
		ORDER BY similarity(company_name, $1) DESC
		LIMIT $3
	`
	rows, err := s.db.QueryContext(ctx, query, companyName, SimilarityFloor, FuzzyResultCap)
	if err != nil {
		return nil, fmt.Errorf("find properties by name similarity: %w", err)
	}
	defer rows.Close()
	return scanRefs(rows)
}

func (s *PostgresStore) Truncate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `TRUNCATE TABLE ccod_properties`); err != nil {
		return fmt.Errorf("truncate ccod_properties: %w", err)
	}
	return nil
}

// UpsertBatch writes one loader batch in a single multi-row statement.
// Re-running a load is safe: conflicting title numbers are updated in place.
func (s *PostgresStore) UpsertBatch(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	var (
		placeholders = make([]string, 0, len(records))
		args         = make([]any, 0, len(records)*6)
	)
	for i, r := range records {
		base := i * 6
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6))
		args = append(args,
			r.TitleNumber,
			nullString(r.Address),
			r.CompanyName,
			nullString(r.CompanyNumber),
			nullString(r.Tenure),
			sql.NullTime{Time: derefTime(r.DateProprietorAdded), Valid: r.DateProprietorAdded != nil},
		)
	}

	query := `
		INSERT INTO ccod_properties (
			title_number, property_address, company_name,
			company_number, tenure, date_proprietor_added
		)
		VALUES ` + strings.Join(placeholders, ", ") + `
		ON CONFLICT (title_number) DO UPDATE SET
			property_address = EXCLUDED.property_address,
			company_name = EXCLUDED.company_name,
			company_number = EXCLUDED.company_number,
			tenure = EXCLUDED.tenure,
			date_proprietor_added = EXCLUDED.date_proprietor_added,
			updated_at = NOW()
	`
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert ccod batch: %w", err)
	}
	return nil
}

func scanRefs(rows *sql.Rows) ([]Ref, error) {
	refs := []Ref{}
	for rows.Next() {
		var ref Ref
		if err := rows.Scan(&ref.TitleNumber, &ref.Address); err != nil {
			return nil, fmt.Errorf("scan property ref: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate property refs: %w", err)
	}
	return refs, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
