package domain

import (
	"encoding/json"
	"sort"
	"time"
)

// SearchHit is one donor-search result. The CRM returns either a constituent
// (optionally carrying its household id) or a household directly; Type
// discriminates the two.
type SearchHit struct {
	Type          string
	ConstituentID string
	HouseholdID   string
	AccountNumber string
	DisplayName   string
	MemberIDs     []string
}

// IsHousehold reports whether the hit represents a household record.
func (h *SearchHit) IsHousehold() bool {
	return h.Type == "Household"
}

// HouseholdKey derives the cache grouping key: "h:<id>" for real households,
// "c:<constituentId>" for constituents that live alone in the CRM.
func HouseholdKey(householdID, constituentID string) string {
	if householdID != "" {
		return "h:" + householdID
	}
	return "c:" + constituentID
}

// HouseholdGroup accumulates everything learned about one household across
// resolution steps. Member ids are a set: every ids-bearing source (search
// hit, household detail, profile fallback) unions into it, never replaces it.
type HouseholdGroup struct {
	Key            string
	HouseholdID    string
	DisplayName    string
	AccountNumbers []string
	memberIDs      map[string]struct{}
}

// NewHouseholdGroup creates an empty group for the given key.
func NewHouseholdGroup(key, householdID string) *HouseholdGroup {
	return &HouseholdGroup{
		Key:         key,
		HouseholdID: householdID,
		memberIDs:   map[string]struct{}{},
	}
}

// AddMembers unions the given constituent ids into the group.
func (g *HouseholdGroup) AddMembers(ids ...string) {
	if g.memberIDs == nil {
		g.memberIDs = map[string]struct{}{}
	}
	for _, id := range ids {
		if id != "" {
			g.memberIDs[id] = struct{}{}
		}
	}
}

// MemberIDs returns the union of all known member ids, sorted for
// deterministic iteration.
func (g *HouseholdGroup) MemberIDs() []string {
	ids := make([]string, 0, len(g.memberIDs))
	for id := range g.memberIDs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// MemberCount returns the number of distinct known members.
func (g *HouseholdGroup) MemberCount() int {
	return len(g.memberIDs)
}

// MemberSnapshot is the denormalized per-constituent view cached for list
// rendering. Placeholder snapshots stand in for ids that failed to hydrate.
type MemberSnapshot struct {
	ConstituentID string
	DisplayName   string
	Email         string
	Phone         string
	HouseholdID   string
	DoNotContact  bool
	Placeholder   bool
}

// HouseholdRecord is the persisted household cache row, keyed by
// (outreach list, household key). Upserts must be idempotent.
type HouseholdRecord struct {
	ListID      string    `json:"list_id"`
	Key         string    `json:"household_key"`
	HouseholdID string    `json:"household_id,omitempty"`
	DisplayName string    `json:"display_name"`
	MemberCount int             `json:"member_count"`
	Snapshot    json.RawMessage `json:"snapshot,omitempty"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// MemberRecord is the persisted member cache row, keyed by
// (outreach list, constituent id).
type MemberRecord struct {
	ListID        string    `json:"list_id"`
	ConstituentID string    `json:"constituent_id"`
	HouseholdKey  string    `json:"household_key"`
	DisplayName   string    `json:"display_name"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	DoNotContact  bool            `json:"do_not_contact"`
	Snapshot      json.RawMessage `json:"snapshot,omitempty"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
