package domain

import "context"

// OutreachRepository persists household and member snapshot rows. The store
// is a cache keyed by natural identity; the CRM remains the source of truth.
type OutreachRepository interface {
	UpsertHouseholds(ctx context.Context, rows []HouseholdRecord) error
	UpsertMembers(ctx context.Context, rows []MemberRecord) error
	ListHouseholds(ctx context.Context, listID string) ([]HouseholdRecord, error)
	ListMembers(ctx context.Context, listID string) ([]MemberRecord, error)
}

// RunRepository manages the enrichment run queue.
type RunRepository interface {
	Create(ctx context.Context, run *OutreachRun) error
	GetByID(ctx context.Context, id string) (*OutreachRun, error)
	ActiveForList(ctx context.Context, listID string) (*OutreachRun, error)
	ClaimQueued(ctx context.Context) (*OutreachRun, error)
	Complete(ctx context.Context, id string, status RunStatus, notFound []string, errMsg string) error
}
