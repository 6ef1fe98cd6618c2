// Package enrich orchestrates the household enrichment pipeline: account
// numbers in, deduplicated household groups and cached snapshots out.
package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"outreach/internal/batch"
	"outreach/internal/crm"
	"outreach/internal/domain"
	"outreach/internal/infra"
)

// Concurrency caps per fan-out. The CRM rate-limits aggressively; these are
// enforced structurally by the batch runner.
const (
	searchConcurrency    = 5
	householdConcurrency = 3
	hydrateConcurrency   = 4
	hydrateBatchSize     = 25
)

// Enricher resolves outreach-list account numbers into household groups and
// persists denormalized snapshots.
type Enricher struct {
	crm    *crm.Client
	repo   domain.OutreachRepository
	logger infra.Logger
}

// NewEnricher wires the pipeline's collaborators.
func NewEnricher(client *crm.Client, repo domain.OutreachRepository, logger infra.Logger) *Enricher {
	return &Enricher{crm: client, repo: repo, logger: logger}
}

// Result reports one enrichment pass. NotFound lists account numbers with no
// CRM match; they end that entry's processing without failing the batch.
type Result struct {
	Groups   []*domain.HouseholdGroup
	Members  []domain.MemberSnapshot
	NotFound []string
	Failures []error
}

// searchCache memoizes account-number resolutions for the duration of one
// run. It is request-scoped on purpose: no process-wide maps, no staleness.
type searchCache struct {
	mu   sync.Mutex
	hits map[string]*domain.SearchHit
}

func (c *searchCache) get(accountNumber string) (*domain.SearchHit, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	hit, ok := c.hits[accountNumber]
	return hit, ok
}

func (c *searchCache) put(accountNumber string, hit *domain.SearchHit) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hits[accountNumber] = hit
}

// EnrichList runs the full pipeline for one outreach list: search, group
// assignment, household detail, member hydration, persistence. The design
// assumes at most one run per list at a time; upserts make re-runs idempotent.
func (e *Enricher) EnrichList(ctx context.Context, listID string, accountNumbers []string) (*Result, error) {
	cache := &searchCache{hits: map[string]*domain.SearchHit{}}
	result := &Result{}

	// Step 1: resolve every account number, bounded fan-out.
	type resolution struct {
		accountNumber string
		hit           *domain.SearchHit
	}
	resolved := batch.Run(ctx, dedupeStrings(accountNumbers), searchConcurrency,
		func(ctx context.Context, accountNumber string) (resolution, error) {
			if hit, ok := cache.get(accountNumber); ok {
				return resolution{accountNumber, hit}, nil
			}
			hit, err := e.crm.SearchAccount(ctx, accountNumber)
			if err != nil {
				return resolution{accountNumber: accountNumber}, err
			}
			cache.put(accountNumber, hit)
			return resolution{accountNumber, hit}, nil
		})

	// Step 2: merge resolutions into household groups, serially. Two account
	// numbers landing on the same key must merge, never duplicate.
	groups := map[string]*domain.HouseholdGroup{}
	var groupOrder []string
	for _, r := range resolved {
		if r.Err != nil {
			if errors.Is(r.Err, domain.ErrNoMatch) {
				result.NotFound = append(result.NotFound, r.Value.accountNumber)
				continue
			}
			result.Failures = append(result.Failures, r.Err)
			continue
		}
		hit := r.Value.hit
		key := domain.HouseholdKey(hit.HouseholdID, hit.ConstituentID)
		g, ok := groups[key]
		if !ok {
			g = domain.NewHouseholdGroup(key, hit.HouseholdID)
			groups[key] = g
			groupOrder = append(groupOrder, key)
		}
		g.AccountNumbers = append(g.AccountNumbers, r.Value.accountNumber)
		if g.DisplayName == "" {
			g.DisplayName = hit.DisplayName
		}
		g.AddMembers(hit.ConstituentID)
		g.AddMembers(hit.MemberIDs...)
	}

	// Step 3: authoritative household detail for real households, bounded,
	// with per-group fallback instead of batch failure.
	var realKeys []string
	for _, key := range groupOrder {
		if groups[key].HouseholdID != "" {
			realKeys = append(realKeys, key)
		}
	}
	details := batch.Run(ctx, realKeys, householdConcurrency,
		func(ctx context.Context, key string) (*crm.Household, error) {
			return e.crm.HouseholdDetail(ctx, groups[key].HouseholdID)
		})
	for i, d := range details {
		g := groups[realKeys[i]]
		if d.Err != nil {
			// Degrade to the first known member rather than failing the group.
			e.logger.Warn().
				Str("household_id", g.HouseholdID).
				Err(d.Err).
				Msg("enrich: household detail unavailable, deferring to search members")
			result.Failures = append(result.Failures, d.Err)
			continue
		}
		g.AddMembers(d.Value.MemberIDs...)
		if d.Value.DisplayName != "" {
			g.DisplayName = d.Value.DisplayName
		}
	}

	// Step 4: hydrate the union of member ids across all groups.
	memberHome := map[string]string{}
	var allMembers []string
	for _, key := range groupOrder {
		for _, id := range groups[key].MemberIDs() {
			if _, ok := memberHome[id]; !ok {
				memberHome[id] = key
				allMembers = append(allMembers, id)
			}
		}
	}
	snapshots := e.hydrateMembers(ctx, allMembers)

	// Step 5: persist snapshots; upserts keyed by natural identity.
	for _, key := range groupOrder {
		result.Groups = append(result.Groups, groups[key])
	}
	result.Members = snapshots
	if err := e.persist(ctx, listID, result, memberHome); err != nil {
		return nil, err
	}

	e.logger.Info().
		Str("list_id", listID).
		Int("groups", len(result.Groups)).
		Int("members", len(result.Members)).
		Int("not_found", len(result.NotFound)).
		Int("failures", len(result.Failures)).
		Msg("enrich: list processed")
	return result, nil
}

// hydrateMembers batch-fetches constituent records, 25 ids per call. Ids that
// fail to hydrate still get a placeholder snapshot so every known member
// appears in the final list.
func (e *Enricher) hydrateMembers(ctx context.Context, ids []string) []domain.MemberSnapshot {
	chunks := chunkStrings(ids, hydrateBatchSize)
	results := batch.Run(ctx, chunks, hydrateConcurrency,
		func(ctx context.Context, chunk []string) ([]crm.Constituent, error) {
			return e.crm.Constituents(ctx, chunk)
		})

	titler := cases.Title(language.English)
	hydrated := map[string]domain.MemberSnapshot{}
	for i, r := range results {
		if r.Err != nil {
			e.logger.Warn().Err(r.Err).Int("chunk", i).Msg("enrich: member hydration failed")
			continue
		}
		for _, c := range r.Value {
			name := strings.TrimSpace(c.DisplayName)
			if name != "" && name == strings.ToLower(name) {
				name = titler.String(name)
			}
			hydrated[c.ID] = domain.MemberSnapshot{
				ConstituentID: c.ID,
				DisplayName:   name,
				Email:         c.Email,
				Phone:         c.Phone,
				HouseholdID:   c.HouseholdID,
				DoNotContact:  c.DoNotContact,
			}
		}
	}

	snapshots := make([]domain.MemberSnapshot, 0, len(ids))
	for _, id := range ids {
		if snap, ok := hydrated[id]; ok {
			snapshots = append(snapshots, snap)
			continue
		}
		snapshots = append(snapshots, domain.MemberSnapshot{
			ConstituentID: id,
			DisplayName:   "Constituent " + id,
			Placeholder:   true,
		})
	}
	return snapshots
}

func (e *Enricher) persist(ctx context.Context, listID string, result *Result, memberHome map[string]string) error {
	now := time.Now().UTC()

	households := make([]domain.HouseholdRecord, 0, len(result.Groups))
	for _, g := range result.Groups {
		snapshot, _ := json.Marshal(map[string]any{
			"display_name":    g.DisplayName,
			"member_count":    g.MemberCount(),
			"account_numbers": g.AccountNumbers,
		})
		households = append(households, domain.HouseholdRecord{
			ListID:      listID,
			Key:         g.Key,
			HouseholdID: g.HouseholdID,
			DisplayName: g.DisplayName,
			MemberCount: g.MemberCount(),
			Snapshot:    snapshot,
			UpdatedAt:   now,
		})
	}
	if err := e.repo.UpsertHouseholds(ctx, households); err != nil {
		return err
	}

	members := make([]domain.MemberRecord, 0, len(result.Members))
	for _, m := range result.Members {
		snapshot, _ := json.Marshal(m)
		members = append(members, domain.MemberRecord{
			ListID:        listID,
			ConstituentID: m.ConstituentID,
			HouseholdKey:  memberHome[m.ConstituentID],
			DisplayName:   m.DisplayName,
			Email:         m.Email,
			Phone:         m.Phone,
			DoNotContact:  m.DoNotContact,
			Snapshot:      snapshot,
			UpdatedAt:     now,
		})
	}
	return e.repo.UpsertMembers(ctx, members)
}

func dedupeStrings(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func chunkStrings(in []string, size int) [][]string {
	var chunks [][]string
	for start := 0; start < len(in); start += size {
		end := start + size
		if end > len(in) {
			end = len(in)
		}
		chunks = append(chunks, in[start:end])
	}
	return chunks
}
