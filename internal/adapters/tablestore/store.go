// Package tablestore defines the external tabular collaborator: named tables
// of string rows, loaded whole and saved whole.
package tablestore

import "context"

// Store provides read/write access to named tables. Rows include the header
// row; the engine slices it off itself.
type Store interface {
	// LoadTable returns all rows of a table, header first.
	// Returns ErrTableNotFound (wrapped with the table name) when the table
	// does not exist.
	LoadTable(ctx context.Context, name string) ([][]string, error)

	// SaveTable replaces a table's contents, creating it if needed.
	SaveTable(ctx context.Context, name string, rows [][]string) error
}
