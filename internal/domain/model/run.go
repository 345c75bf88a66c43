package model

import "time"

// Run statuses. A run either produces the full rating list or fails whole;
// there are no partial results.
const (
	RunPending   = "pending"
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// RunRequest is the payload flowing through the run queue.
type RunRequest struct {
	ID       string
	Division string
}

// Run is the externally visible state of a rating run.
type Run struct {
	ID         string       `json:"id"`
	Division   string       `json:"division"`
	Status     string       `json:"status"`
	Error      string       `json:"error,omitempty"`
	EnqueuedAt time.Time    `json:"enqueued_at"`
	FinishedAt *time.Time   `json:"finished_at,omitempty"`
	Ratings    []TeamRating `json:"ratings,omitempty"`
}
