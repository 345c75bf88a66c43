package service

import (
	"errors"
	"fmt"
)

// Sentinel kinds for service errors.
var (
	ErrQueueFull   = errors.New("run queue full")
	ErrRunNotFound = errors.New("run not found")
)

// NewKind annotates a sentinel kind with the failing operation.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}
