package giving

import (
	"testing"
	"time"

	"outreach/internal/domain"
)

func date(t *testing.T, v string) *time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", v)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	return &parsed
}

func TestAggregateInterestsGroupsByTriple(t *testing.T) {
	designations := []domain.Designation{
		{Fund: "General", Amount: 100, Date: date(t, "2024-01-01")},
		{Fund: "General", Amount: 50, Date: date(t, "2025-02-01")},
		{Fund: "General", Campaign: "Capital", Amount: 10},
	}
	interests := AggregateInterests(designations)
	if len(interests) != 2 {
		t.Fatalf("got %d groups, want 2", len(interests))
	}
	top := interests[0]
	if top.Fund != "General" || top.Campaign != "" {
		t.Fatalf("top group = %+v", top)
	}
	if top.TotalAmount != 150 || top.GiftCount != 2 {
		t.Fatalf("top group totals = %+v", top)
	}
	if top.FirstGiftDate == nil || top.FirstGiftDate.Year() != 2024 {
		t.Fatalf("first gift date = %v", top.FirstGiftDate)
	}
	if top.LastGiftDate == nil || top.LastGiftDate.Year() != 2025 {
		t.Fatalf("last gift date = %v", top.LastGiftDate)
	}
}

func TestAggregateInterestsMissingFieldsGroupTogether(t *testing.T) {
	designations := []domain.Designation{
		{Fund: "General", Campaign: "Spring", Amount: 10},
		{Fund: "General", Campaign: "Spring", Amount: 20},
	}
	if got := AggregateInterests(designations); len(got) != 1 {
		t.Fatalf("two designations both missing appeal must group: %+v", got)
	}
}

func TestAggregateInterestsOtherBucket(t *testing.T) {
	designations := make([]domain.Designation, 0, 7)
	amounts := []float64{700, 600, 500, 400, 300, 200, 100}
	for i, amt := range amounts {
		designations = append(designations, domain.Designation{
			Fund:   string(rune('A' + i)),
			Amount: amt,
			Date:   date(t, "2025-01-02"),
		})
	}

	interests := AggregateInterests(designations)
	if len(interests) != 6 {
		t.Fatalf("got %d entries, want 5 ranked + Other", len(interests))
	}
	other := interests[5]
	if other.Fund != OtherFund || other.Campaign != "" || other.Appeal != "" {
		t.Fatalf("other entry = %+v", other)
	}
	if other.TotalAmount != 300 {
		t.Fatalf("other total = %v, want 200+100", other.TotalAmount)
	}
	if other.GiftCount != 2 {
		t.Fatalf("other gift count = %d, want 2", other.GiftCount)
	}
	for i := 1; i < 5; i++ {
		if interests[i].TotalAmount > interests[i-1].TotalAmount {
			t.Fatalf("ranking not descending at %d", i)
		}
	}
}

func TestAggregateInterestsOtherAlwaysLast(t *testing.T) {
	// The folded tail outweighs the top entries combined, yet stays last.
	designations := []domain.Designation{
		{Fund: "A", Amount: 10},
		{Fund: "B", Amount: 9},
		{Fund: "C", Amount: 8},
		{Fund: "D", Amount: 7},
		{Fund: "E", Amount: 6},
		{Fund: "F", Amount: 5},
		{Fund: "G", Amount: 5},
		{Fund: "H", Amount: 5},
	}
	interests := AggregateInterests(designations)
	if len(interests) != 6 {
		t.Fatalf("got %d entries", len(interests))
	}
	if interests[5].Fund != OtherFund || interests[5].TotalAmount != 15 {
		t.Fatalf("other = %+v", interests[5])
	}
}

func TestAggregateInterestsTieBreakByLastGiftDate(t *testing.T) {
	designations := []domain.Designation{
		{Fund: "Older", Amount: 100, Date: date(t, "2023-01-01")},
		{Fund: "Newer", Amount: 100, Date: date(t, "2025-01-01")},
		{Fund: "Undated", Amount: 100},
	}
	interests := AggregateInterests(designations)
	if interests[0].Fund != "Newer" {
		t.Fatalf("tie should rank most recent first: %+v", interests)
	}
	if interests[2].Fund != "Undated" {
		t.Fatalf("undated group must sort last: %+v", interests)
	}
}

func TestAggregateInterestsAtBoundaryNoOtherBucket(t *testing.T) {
	designations := make([]domain.Designation, 5)
	for i := range designations {
		designations[i] = domain.Designation{Fund: string(rune('A' + i)), Amount: float64(i + 1)}
	}
	interests := AggregateInterests(designations)
	if len(interests) != 5 {
		t.Fatalf("exactly 5 groups must not fold: got %d", len(interests))
	}
	for _, g := range interests {
		if g.Fund == OtherFund {
			t.Fatalf("no Other bucket expected: %+v", interests)
		}
	}
}
