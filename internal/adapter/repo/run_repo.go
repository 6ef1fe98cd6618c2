package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"outreach/internal/domain"
)

// RunRepositoryPG implements domain.RunRepository backed by PostgreSQL.
type RunRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewRunRepository creates a new RunRepositoryPG.
func NewRunRepository(pool *pgxpool.Pool) *RunRepositoryPG {
	return &RunRepositoryPG{pool: pool}
}

// Create inserts a queued enrichment run.
func (r *RunRepositoryPG) Create(ctx context.Context, run *domain.OutreachRun) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO outreach_runs (id, list_id, status, account_numbers)
VALUES ($1, $2, $3, $4);
`, run.ID, run.ListID, run.Status, run.AccountNumbers)
	return err
}

// GetByID fetches a run by its id.
func (r *RunRepositoryPG) GetByID(ctx context.Context, id string) (*domain.OutreachRun, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, list_id, status, account_numbers, COALESCE(not_found, '{}'), COALESCE(error, ''), created_at, updated_at
FROM outreach_runs
WHERE id = $1;
`, id)
	return scanRun(row)
}

// ActiveForList returns the queued or running run for a list, if any.
// domain.ErrNotFound means the list is idle.
func (r *RunRepositoryPG) ActiveForList(ctx context.Context, listID string) (*domain.OutreachRun, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, list_id, status, account_numbers, COALESCE(not_found, '{}'), COALESCE(error, ''), created_at, updated_at
FROM outreach_runs
WHERE list_id = $1 AND status IN ('QUEUED', 'RUNNING')
ORDER BY created_at
LIMIT 1;
`, listID)
	return scanRun(row)
}

// ClaimQueued atomically picks the oldest queued run and marks it running.
// SKIP LOCKED keeps multiple workers from claiming the same run.
func (r *RunRepositoryPG) ClaimQueued(ctx context.Context) (*domain.OutreachRun, error) {
	row := r.pool.QueryRow(ctx, `
UPDATE outreach_runs
SET status = 'RUNNING', updated_at = NOW()
WHERE id = (
	SELECT id FROM outreach_runs
	WHERE status = 'QUEUED'
	ORDER BY created_at
	LIMIT 1
	FOR UPDATE SKIP LOCKED
)
RETURNING id, list_id, status, account_numbers, COALESCE(not_found, '{}'), COALESCE(error, ''), created_at, updated_at;
`)
	return scanRun(row)
}

// Complete records a run's terminal status along with unresolved account
// numbers and any failure message.
func (r *RunRepositoryPG) Complete(ctx context.Context, id string, status domain.RunStatus, notFound []string, errMsg string) error {
	_, err := r.pool.Exec(ctx, `
UPDATE outreach_runs
SET status = $2, not_found = $3, error = NULLIF($4, ''), updated_at = NOW()
WHERE id = $1;
`, id, status, notFound, errMsg)
	return err
}

func scanRun(row pgx.Row) (*domain.OutreachRun, error) {
	var run domain.OutreachRun
	if err := row.Scan(&run.ID, &run.ListID, &run.Status, &run.AccountNumbers, &run.NotFound, &run.Error, &run.CreatedAt, &run.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &run, nil
}
