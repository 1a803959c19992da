package property

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

const (
	// loadBatchSize trades statement size against round trips for the bulk
	// load; the CCOD dataset is several million rows.
	loadBatchSize = 5000
	progressEvery = 100_000
)

// Loader refreshes the property index from a CCOD dataset export. The
// dataset is truncated and reloaded whole; individual rows upsert by title
// number so a partial rerun converges.
type Loader struct {
	store  BulkStore
	logger *slog.Logger
}

// NewLoader constructs a Loader.
func NewLoader(store BulkStore, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{store: store, logger: logger}
}

// LoadZip streams the first CSV member of a CCOD zip archive into the
// store. Returns the number of rows loaded.
func (l *Loader) LoadZip(ctx context.Context, path string) (int, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return 0, fmt.Errorf("open ccod zip: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if !strings.HasSuffix(f.Name, ".csv") {
			continue
		}
		l.logger.Info("streaming ccod csv", "name", f.Name)
		rc, err := f.Open()
		if err != nil {
			return 0, fmt.Errorf("open csv in zip: %w", err)
		}
		defer rc.Close()
		return l.Load(ctx, rc)
	}
	return 0, fmt.Errorf("no CSV found in ccod zip")
}

// Load truncates the index and streams CSV rows into it in batches.
func (l *Loader) Load(ctx context.Context, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read ccod header: %w", err)
	}
	cols := indexColumns(header)

	if err := l.store.Truncate(ctx); err != nil {
		return 0, err
	}

	var (
		batch  = make([]Record, 0, loadBatchSize)
		loaded int
	)
	for {
		if err := ctx.Err(); err != nil {
			return loaded, err
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return loaded, fmt.Errorf("read ccod row: %w", err)
		}

		batch = append(batch, recordFromRow(row, cols))
		if len(batch) >= loadBatchSize {
			if err := l.store.UpsertBatch(ctx, batch); err != nil {
				return loaded, err
			}
			loaded += len(batch)
			batch = batch[:0]
			if loaded%progressEvery == 0 {
				l.logger.Info("ccod load progress", "rows", loaded)
			}
		}
	}
	if len(batch) > 0 {
		if err := l.store.UpsertBatch(ctx, batch); err != nil {
			return loaded, err
		}
		loaded += len(batch)
	}

	l.logger.Info("ccod load complete", "rows", loaded)
	return loaded, nil
}

// CCOD export column names, as published by the Land Registry.
const (
	colTitleNumber   = "Title Number"
	colAddress       = "Property Address"
	colCompanyName   = "Proprietor Name (1)"
	colCompanyNumber = "Company Registration No. (1)"
	colTenure        = "Tenure"
	colDateAdded     = "Date Proprietor Added"
)

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	return cols
}

func recordFromRow(row []string, cols map[string]int) Record {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	rec := Record{
		TitleNumber:   get(colTitleNumber),
		Address:       get(colAddress),
		CompanyName:   get(colCompanyName),
		CompanyNumber: get(colCompanyNumber),
		Tenure:        get(colTenure),
	}
	if raw := get(colDateAdded); raw != "" {
		// Dataset uses DD-MM-YYYY.
		if t, err := time.Parse("02-01-2006", raw); err == nil {
			rec.DateProprietorAdded = &t
		}
	}
	return rec
}
