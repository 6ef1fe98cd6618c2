package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrNoMatch           = errors.New("no matching constituent or household")
	ErrIncompleteHistory = errors.New("transaction history incomplete")
	ErrSummarizerFailure = errors.New("summarizer failure")
	ErrRunConflict       = errors.New("enrichment run already active for list")
)
