package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"outreach/internal/domain"
)

// OutreachRepositoryPG implements domain.OutreachRepository backed by
// PostgreSQL. Rows are a denormalized cache; every write is an idempotent
// upsert on the natural key.
type OutreachRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewOutreachRepository creates a new OutreachRepositoryPG.
func NewOutreachRepository(pool *pgxpool.Pool) *OutreachRepositoryPG {
	return &OutreachRepositoryPG{pool: pool}
}

// UpsertHouseholds writes one row per household group, keyed by
// (list_id, household_key).
func (r *OutreachRepositoryPG) UpsertHouseholds(ctx context.Context, rows []domain.HouseholdRecord) error {
	query := `
INSERT INTO outreach_households (list_id, household_key, household_id, display_name, member_count, snapshot, updated_at)
VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7)
ON CONFLICT (list_id, household_key) DO UPDATE
SET household_id = EXCLUDED.household_id,
    display_name = EXCLUDED.display_name,
    member_count = EXCLUDED.member_count,
    snapshot = EXCLUDED.snapshot,
    updated_at = EXCLUDED.updated_at;
`
	for _, row := range rows {
		if _, err := r.pool.Exec(ctx, query,
			row.ListID, row.Key, row.HouseholdID, row.DisplayName, row.MemberCount, row.Snapshot, row.UpdatedAt,
		); err != nil {
			return err
		}
	}
	return nil
}

// UpsertMembers writes one row per member snapshot, keyed by
// (list_id, constituent_id).
func (r *OutreachRepositoryPG) UpsertMembers(ctx context.Context, rows []domain.MemberRecord) error {
	query := `
INSERT INTO outreach_members (list_id, constituent_id, household_key, display_name, email, phone, do_not_contact, snapshot, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (list_id, constituent_id) DO UPDATE
SET household_key = EXCLUDED.household_key,
    display_name = EXCLUDED.display_name,
    email = EXCLUDED.email,
    phone = EXCLUDED.phone,
    do_not_contact = EXCLUDED.do_not_contact,
    snapshot = EXCLUDED.snapshot,
    updated_at = EXCLUDED.updated_at;
`
	for _, row := range rows {
		if _, err := r.pool.Exec(ctx, query,
			row.ListID, row.ConstituentID, row.HouseholdKey, row.DisplayName,
			row.Email, row.Phone, row.DoNotContact, row.Snapshot, row.UpdatedAt,
		); err != nil {
			return err
		}
	}
	return nil
}

// ListHouseholds returns the cached household rows for one outreach list.
func (r *OutreachRepositoryPG) ListHouseholds(ctx context.Context, listID string) ([]domain.HouseholdRecord, error) {
	rows, err := r.pool.Query(ctx, `
SELECT list_id, household_key, COALESCE(household_id, ''), display_name, member_count, snapshot, updated_at
FROM outreach_households
WHERE list_id = $1
ORDER BY display_name, household_key;
`, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.HouseholdRecord
	for rows.Next() {
		var rec domain.HouseholdRecord
		if err := rows.Scan(&rec.ListID, &rec.Key, &rec.HouseholdID, &rec.DisplayName, &rec.MemberCount, &rec.Snapshot, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ListMembers returns the cached member rows for one outreach list.
func (r *OutreachRepositoryPG) ListMembers(ctx context.Context, listID string) ([]domain.MemberRecord, error) {
	rows, err := r.pool.Query(ctx, `
SELECT list_id, constituent_id, household_key, display_name, email, phone, do_not_contact, snapshot, updated_at
FROM outreach_members
WHERE list_id = $1
ORDER BY household_key, display_name;
`, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.MemberRecord
	for rows.Next() {
		var rec domain.MemberRecord
		if err := rows.Scan(&rec.ListID, &rec.ConstituentID, &rec.HouseholdKey, &rec.DisplayName, &rec.Email, &rec.Phone, &rec.DoNotContact, &rec.Snapshot, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
