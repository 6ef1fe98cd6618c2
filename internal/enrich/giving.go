package enrich

import (
	"context"
	"errors"
	"fmt"
	"time"

	"outreach/internal/batch"
	"outreach/internal/crm"
	"outreach/internal/domain"
	"outreach/internal/giving"
	"outreach/internal/infra"
)

// GivingService computes call-ready giving analytics straight from the CRM.
// Nothing here is cached: a paging failure discards the whole aggregate, so
// callers can distinguish "no stats" from "zero stats".
type GivingService struct {
	crm      *crm.Client
	pageSize int
	logger   infra.Logger
	now      func() time.Time
}

// NewGivingService constructs the analytics service.
func NewGivingService(client *crm.Client, pageSize int, logger infra.Logger) *GivingService {
	return &GivingService{crm: client, pageSize: pageSize, logger: logger, now: time.Now}
}

// Summary walks the constituent's complete transaction history and derives
// statistics plus ranked giving interests. A *crm.WalkError propagates with
// every attempted URL attached.
func (s *GivingService) Summary(ctx context.Context, constituentID string) (*domain.GivingSummary, error) {
	walk, err := s.crm.Transactions(ctx, constituentID, s.pageSize)
	if err != nil {
		var walkErr *crm.WalkError
		if errors.As(err, &walkErr) {
			// Partial pages never produce partial statistics.
			return nil, fmt.Errorf("%w: %w", domain.ErrIncompleteHistory, err)
		}
		return nil, err
	}

	stats, designations := giving.ComputeStats(walk.Items, s.now())
	interests := giving.AggregateInterests(designations)

	s.logger.Debug().
		Str("constituent_id", constituentID).
		Int("transactions", len(walk.Items)).
		Int("pages", len(walk.URLs)).
		Int("interests", len(interests)).
		Msg("giving: summary computed")

	return &domain.GivingSummary{
		ConstituentID: constituentID,
		Stats:         stats,
		Interests:     interests,
	}, nil
}

// summaryConcurrency caps the member-stats fan-out.
const summaryConcurrency = 5

// HouseholdSummary computes per-member summaries with bounded fan-out,
// returning one entry per member id in input order. A failed member leaves a
// nil slot plus an aggregated error; it never aborts the batch.
func (s *GivingService) HouseholdSummary(ctx context.Context, memberIDs []string) ([]*domain.GivingSummary, []error) {
	results := batch.Run(ctx, memberIDs, summaryConcurrency,
		func(ctx context.Context, id string) (*domain.GivingSummary, error) {
			return s.Summary(ctx, id)
		})

	summaries := make([]*domain.GivingSummary, len(memberIDs))
	for i, r := range results {
		if r.Err == nil {
			summaries[i] = r.Value
		}
	}
	return summaries, batch.Errs(results)
}
