package crm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"outreach/internal/domain"
	"outreach/internal/pick"
)

const (
	householdDetailAttempts = 3
	hydrateBatchSize        = 25
)

// Household is the CRM's household detail payload reduced to what the
// pipeline consumes.
type Household struct {
	ID          string
	DisplayName string
	MemberIDs   []string
}

// Constituent is the hydrated per-donor record used to build snapshots.
type Constituent struct {
	ID           string
	DisplayName  string
	Email        string
	Phone        string
	HouseholdID  string
	DoNotContact bool
}

// SearchAccount resolves one account number through the donor-search
// endpoint. A response with no usable hit maps to domain.ErrNoMatch, which
// callers treat as "not found", not as a batch failure.
func (c *Client) SearchAccount(ctx context.Context, accountNumber string) (*domain.SearchHit, error) {
	params := url.Values{}
	params.Set("search", accountNumber)
	params.Set("skip", "0")
	params.Set("take", "10")

	res, err := c.Get(ctx, "/constituents/search", params)
	if err != nil {
		return nil, err
	}
	if !res.OK {
		return nil, fmt.Errorf("crm: search %q: status %d: %s", accountNumber, res.Status, res.Message)
	}

	records, ok := ExtractItems(res.Data)
	if !ok {
		return nil, fmt.Errorf("crm: search %q: unrecognized envelope shape", accountNumber)
	}

	var first *domain.SearchHit
	for _, rec := range records {
		hit := parseSearchHit(rec)
		if hit == nil {
			continue
		}
		if hit.AccountNumber == accountNumber {
			return hit, nil
		}
		if first == nil {
			first = hit
		}
	}
	if first == nil {
		return nil, fmt.Errorf("crm: search %q: %w", accountNumber, domain.ErrNoMatch)
	}
	return first, nil
}

// HouseholdDetail fetches the authoritative household record. Transient
// failures (429, plus 401/403 on the theory that an auth race can
// self-resolve) are retried with capped exponential backoff; anything else
// fails immediately.
func (c *Client) HouseholdDetail(ctx context.Context, householdID string) (*Household, error) {
	delay := c.retryBaseDelay
	var lastErr error
	for attempt := 1; attempt <= householdDetailAttempts; attempt++ {
		res, err := c.Get(ctx, "/households/"+householdID, nil)
		if err != nil {
			return nil, err
		}
		if res.OK {
			return parseHousehold(householdID, res.Data), nil
		}

		lastErr = fmt.Errorf("crm: household %s: status %d: %s", householdID, res.Status, res.Message)
		if !retryableStatus(res.Status) || attempt == householdDetailAttempts {
			return nil, lastErr
		}
		c.logger.Warn().
			Str("household_id", householdID).
			Int("status", res.Status).
			Int("attempt", attempt).
			Dur("backoff", delay).
			Msg("crm: retrying household detail")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return nil, lastErr
}

// Constituents hydrates up to 25 ids in one pipe-delimited batch call.
func (c *Client) Constituents(ctx context.Context, ids []string) ([]Constituent, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > hydrateBatchSize {
		return nil, fmt.Errorf("crm: batch of %d exceeds %d ids", len(ids), hydrateBatchSize)
	}

	res, err := c.Get(ctx, "/constituents/"+strings.Join(ids, "|"), nil)
	if err != nil {
		return nil, err
	}
	if !res.OK {
		return nil, fmt.Errorf("crm: constituents batch: status %d: %s", res.Status, res.Message)
	}

	records, ok := ExtractItems(res.Data)
	if !ok {
		// A single-id fetch may return the bare object.
		if rec, isMap := res.Data.(map[string]any); isMap && pick.String(rec, "Id") != "" {
			records = []map[string]any{rec}
		} else {
			return nil, fmt.Errorf("crm: constituents batch: unrecognized envelope shape")
		}
	}

	out := make([]Constituent, 0, len(records))
	for _, rec := range records {
		out = append(out, parseConstituent(rec))
	}
	return out, nil
}

// Transactions walks the full gift history for a constituent, newest first.
func (c *Client) Transactions(ctx context.Context, constituentID string, pageSize int) (*WalkResult, error) {
	params := url.Values{}
	params.Set("accountId", constituentID)
	params.Set("orderBy", "Date")
	params.Set("orderDirection", "Desc")
	return c.WalkPages(ctx, PageQuery{Path: "/transactions", Params: params, PageSize: pageSize})
}

// Notes walks the full note history for a constituent, newest first.
func (c *Client) Notes(ctx context.Context, constituentID string, pageSize int) (*WalkResult, error) {
	params := url.Values{}
	params.Set("constituent", constituentID)
	params.Set("orderBy", "CreatedDate")
	params.Set("orderDirection", "Desc")
	return c.WalkPages(ctx, PageQuery{Path: "/notes", Params: params, PageSize: pageSize})
}

// Interactions walks the full interaction history for a constituent, newest first.
func (c *Client) Interactions(ctx context.Context, constituentID string, pageSize int) (*WalkResult, error) {
	params := url.Values{}
	params.Set("constituent", constituentID)
	params.Set("orderBy", "CreatedDate")
	params.Set("orderDirection", "Desc")
	return c.WalkPages(ctx, PageQuery{Path: "/interactions", Params: params, PageSize: pageSize})
}

func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests ||
		status == http.StatusUnauthorized ||
		status == http.StatusForbidden
}

func parseSearchHit(rec map[string]any) *domain.SearchHit {
	id := pick.String(rec, "Id")
	if id == "" {
		return nil
	}
	hit := &domain.SearchHit{
		Type:          pick.String(rec, "Type"),
		AccountNumber: pick.String(rec, "AccountNumber"),
		DisplayName:   displayName(rec),
	}
	if hit.Type == "Household" {
		hit.HouseholdID = id
		hit.MemberIDs = idList(rec, "MemberIds")
		if len(hit.MemberIDs) == 0 {
			hit.MemberIDs = embeddedMemberIDs(rec)
		}
	} else {
		hit.ConstituentID = id
		hit.HouseholdID = pick.String(rec, "HouseholdId")
	}
	return hit
}

func parseHousehold(id string, data any) *Household {
	h := &Household{ID: id}
	rec, ok := data.(map[string]any)
	if !ok {
		return h
	}
	h.DisplayName = displayName(rec)
	h.MemberIDs = idList(rec, "MemberIds")
	if len(h.MemberIDs) == 0 {
		h.MemberIDs = embeddedMemberIDs(rec)
	}
	return h
}

func parseConstituent(rec map[string]any) Constituent {
	return Constituent{
		ID:           pick.String(rec, "Id"),
		DisplayName:  displayName(rec),
		Email:        pick.String(rec, "PrimaryEmail", "Value"),
		Phone:        pick.String(rec, "PrimaryPhone", "Number"),
		HouseholdID:  pick.String(rec, "HouseholdId"),
		DoNotContact: pick.Bool(rec, "CommunicationRestrictions", "DoNotContact") || pick.Bool(rec, "DoNotContact"),
	}
}

func displayName(rec map[string]any) string {
	for _, key := range []string{"FullName", "Name", "SortName"} {
		if v := pick.String(rec, key); v != "" {
			return v
		}
	}
	first := pick.String(rec, "FirstName")
	last := pick.String(rec, "LastName")
	return strings.TrimSpace(first + " " + last)
}

func idList(rec map[string]any, key string) []string {
	arr, ok := pick.Slice(rec, key)
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(arr))
	for _, v := range arr {
		if id := stringValue(v); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func embeddedMemberIDs(rec map[string]any) []string {
	arr, ok := pick.Slice(rec, "Members")
	if !ok {
		return nil
	}
	var ids []string
	for _, v := range arr {
		if m, ok := v.(map[string]any); ok {
			if id := pick.String(m, "Id"); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}
