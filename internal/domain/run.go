package domain

import "time"

// RunStatus is the lifecycle state of an enrichment run.
type RunStatus string

const (
	RunQueued    RunStatus = "QUEUED"
	RunRunning   RunStatus = "RUNNING"
	RunSucceeded RunStatus = "SUCCEEDED"
	RunFailed    RunStatus = "FAILED"
)

// OutreachRun is one queued enrichment pass over an outreach list's account
// numbers. At most one run per list executes at a time; re-running the same
// list only refreshes cached snapshots.
type OutreachRun struct {
	ID             string    `json:"id"`
	ListID         string    `json:"list_id"`
	Status         RunStatus `json:"status"`
	AccountNumbers []string  `json:"account_numbers"`
	NotFound       []string  `json:"not_found,omitempty"`
	Error          string    `json:"error,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
