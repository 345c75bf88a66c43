package tablestore

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/openultimate/ratings/pkg/metrics"
)

// CSVStore implements Store over a directory of CSV files, one file per
// table, named "<table>.csv".
type CSVStore struct {
	dir string
}

// Option applies a configuration option to the CSVStore.
type Option func(*CSVStore)

// NewCSVStore creates a store rooted at dir.
func NewCSVStore(dir string, opts ...Option) *CSVStore {
	s := &CSVStore{dir: dir}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// path validates the table name and maps it to a file. Names are restricted
// to keep table lookups inside the store directory.
func (s *CSVStore) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name+".csv"), nil
}

// LoadTable reads all rows of a table. Rows may have varying widths; the
// caller decides how many columns matter.
func (s *CSVStore) LoadTable(ctx context.Context, name string) ([][]string, error) {
	start := time.Now()
	defer func() {
		metrics.RecordTableLoadLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := s.path(name)
	if err != nil {
		metrics.RecordTableError(name, "invalid_name")
		return nil, err
	}

	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			metrics.RecordTableError(name, "not_found")
			return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
		}
		metrics.RecordTableError(name, "open")
		return nil, fmt.Errorf("open table %s: %w", name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		metrics.RecordTableError(name, "parse")
		return nil, fmt.Errorf("read table %s: %w", name, err)
	}
	return rows, nil
}

// SaveTable writes rows to a temp file and renames it into place so readers
// never observe a half-written table.
func (s *CSVStore) SaveTable(ctx context.Context, name string, rows [][]string) error {
	start := time.Now()
	defer func() {
		metrics.RecordTableSaveLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := ctx.Err(); err != nil {
		return err
	}

	p, err := s.path(name)
	if err != nil {
		metrics.RecordTableError(name, "invalid_name")
		return err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		metrics.RecordTableError(name, "mkdir")
		return fmt.Errorf("create store dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		metrics.RecordTableError(name, "create")
		return fmt.Errorf("create temp table %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		metrics.RecordTableError(name, "write")
		return fmt.Errorf("write table %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		metrics.RecordTableError(name, "close")
		return fmt.Errorf("close table %s: %w", name, err)
	}

	if err := os.Rename(tmp.Name(), p); err != nil {
		metrics.RecordTableError(name, "rename")
		return fmt.Errorf("replace table %s: %w", name, err)
	}
	return nil
}
