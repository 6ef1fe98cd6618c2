package giving

import (
	"sort"
	"strings"
	"time"

	"outreach/internal/domain"
)

// maxRankedInterests is how many interest buckets survive verbatim before
// the long tail folds into the synthetic "Other" entry.
const maxRankedInterests = 5

// OtherFund labels the synthetic bucket that absorbs entries ranked past the
// top five. It always sorts last regardless of its own totals.
const OtherFund = "Other"

// AggregateInterests groups designations by the (fund, campaign, appeal)
// triple with empty strings standing in for missing fields, ranks the groups
// by descending total (ties broken by most recent gift), and folds everything
// past the top five into one "Other" bucket.
func AggregateInterests(designations []domain.Designation) []domain.GivingInterest {
	groups := map[string]*domain.GivingInterest{}
	var order []string

	for _, d := range designations {
		key := strings.Join([]string{d.Fund, d.Campaign, d.Appeal}, "\x1f")
		g, ok := groups[key]
		if !ok {
			g = &domain.GivingInterest{Fund: d.Fund, Campaign: d.Campaign, Appeal: d.Appeal}
			groups[key] = g
			order = append(order, key)
		}
		g.TotalAmount += d.Amount
		g.GiftCount++
		if d.Date != nil {
			if g.FirstGiftDate == nil || d.Date.Before(*g.FirstGiftDate) {
				t := *d.Date
				g.FirstGiftDate = &t
			}
			if g.LastGiftDate == nil || d.Date.After(*g.LastGiftDate) {
				t := *d.Date
				g.LastGiftDate = &t
			}
		}
	}

	ranked := make([]domain.GivingInterest, 0, len(order))
	for _, key := range order {
		ranked = append(ranked, *groups[key])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].TotalAmount != ranked[j].TotalAmount {
			return ranked[i].TotalAmount > ranked[j].TotalAmount
		}
		return lastGiftOrEpoch(ranked[i]).After(lastGiftOrEpoch(ranked[j]))
	})

	if len(ranked) <= maxRankedInterests {
		return ranked
	}

	other := domain.GivingInterest{Fund: OtherFund}
	for _, g := range ranked[maxRankedInterests:] {
		other.TotalAmount += g.TotalAmount
		other.GiftCount += g.GiftCount
		if g.FirstGiftDate != nil && (other.FirstGiftDate == nil || g.FirstGiftDate.Before(*other.FirstGiftDate)) {
			t := *g.FirstGiftDate
			other.FirstGiftDate = &t
		}
		if g.LastGiftDate != nil && (other.LastGiftDate == nil || g.LastGiftDate.After(*other.LastGiftDate)) {
			t := *g.LastGiftDate
			other.LastGiftDate = &t
		}
	}
	return append(ranked[:maxRankedInterests:maxRankedInterests], other)
}

// lastGiftOrEpoch makes undated groups sort after everything else.
func lastGiftOrEpoch(g domain.GivingInterest) time.Time {
	if g.LastGiftDate == nil {
		return time.Time{}
	}
	return *g.LastGiftDate
}
