// Package giving turns raw CRM transaction records into durable statistics
// and ranked giving interests.
package giving

import (
	"time"

	"outreach/internal/domain"
	"outreach/internal/pick"
)

var includedTypes = map[string]struct{}{
	domain.TransactionDonation:          {},
	domain.TransactionPledgePayment:     {},
	domain.TransactionRecurringDonation: {},
}

// Included reports whether a raw transaction counts toward statistics:
// the type must be in the included set and the record must not be refunded.
func Included(rec map[string]any) bool {
	typ := pick.String(rec, "Type")
	if _, ok := includedTypes[typ]; !ok {
		return false
	}
	return !Refunded(rec)
}

// Refunded detects refunds across the CRM's inconsistent encodings: an
// explicit boolean flag, a "true"/"yes" string, or a non-empty refund-id list.
func Refunded(rec map[string]any) bool {
	if pick.Bool(rec, "IsRefunded") || pick.Bool(rec, "Refunded") {
		return true
	}
	if ids, ok := pick.Slice(rec, "RefundIds"); ok && len(ids) > 0 {
		return true
	}
	return false
}

// Amount resolves a transaction's amount: direct field, nested Amount.Value,
// first designation's amount, then zero.
func Amount(rec map[string]any) float64 {
	if f, ok := pick.Float(rec, "Amount"); ok {
		return f
	}
	if f, ok := pick.Float(rec, "Amount", "Value"); ok {
		return f
	}
	if designations, ok := pick.Slice(rec, "Designations"); ok && len(designations) > 0 {
		if f, ok := pick.Float(designations[0], "Amount"); ok {
			return f
		}
	}
	return 0
}

// Date resolves a transaction's calendar date. Unparseable dates report
// ok=false and the transaction simply stays out of the calendar buckets.
func Date(rec map[string]any) (time.Time, bool) {
	for _, key := range []string{"Date", "TransactionDate", "CreatedDate"} {
		if t, ok := pick.Time(rec, key); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// ComputeStats makes a single pass over the raw transaction list, producing
// aggregate statistics and the flattened designation list for interest
// ranking. Records arrive newest first from the CRM; the last-gift comparison
// is strictly "after", so the first record seen at the maximum date wins.
func ComputeStats(records []map[string]any, now time.Time) (domain.GivingStats, []domain.Designation) {
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	prevYearStart := yearStart.AddDate(-1, 0, 0)

	var stats domain.GivingStats
	var designations []domain.Designation

	for _, rec := range records {
		if !Included(rec) {
			continue
		}
		amount := Amount(rec)
		date, hasDate := Date(rec)

		stats.LifetimeTotal += amount
		stats.GiftCount++
		if hasDate {
			switch {
			case !date.Before(yearStart) && !date.After(now):
				stats.YTDTotal += amount
			case !date.Before(prevYearStart) && date.Before(yearStart):
				stats.LastYearTotal += amount
			}
			if stats.LastGiftDate == nil || date.After(*stats.LastGiftDate) {
				d := date
				stats.LastGiftDate = &d
				stats.LastGiftAmount = amount
			}
		}

		designations = append(designations, extractDesignations(rec, amount, date, hasDate)...)
	}

	return stats, designations
}

// extractDesignations pulls per-gift designation entries, retaining each one
// that carries at least a fund, campaign, appeal, or amount. Missing amounts
// and dates inherit from the parent transaction.
func extractDesignations(rec map[string]any, parentAmount float64, parentDate time.Time, hasParentDate bool) []domain.Designation {
	raw, ok := pick.Slice(rec, "Designations")
	if !ok {
		return nil
	}
	var out []domain.Designation
	for _, item := range raw {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		d := domain.Designation{
			Fund:     nameOf(entry, "Fund"),
			Campaign: nameOf(entry, "Campaign"),
			Appeal:   nameOf(entry, "Appeal"),
		}
		amount, hasAmount := pick.Float(entry, "Amount")
		if !hasAmount {
			amount = parentAmount
		}
		d.Amount = amount
		if t, ok := pick.Time(entry, "Date"); ok {
			d.Date = &t
		} else if hasParentDate {
			t := parentDate
			d.Date = &t
		}
		if d.Fund == "" && d.Campaign == "" && d.Appeal == "" && !hasAmount {
			continue
		}
		out = append(out, d)
	}
	return out
}

// nameOf accepts both the flat ("Fund": "General") and nested
// ("Fund": {"Name": "General"}) designation encodings.
func nameOf(entry map[string]any, key string) string {
	if v := pick.String(entry, key); v != "" {
		return v
	}
	return pick.String(entry, key, "Name")
}
