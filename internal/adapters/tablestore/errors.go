package tablestore

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrTableNotFound = errors.New("table not found")
	ErrInvalidName   = errors.New("invalid table name")
)
