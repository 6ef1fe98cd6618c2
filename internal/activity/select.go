package activity

import (
	"regexp"
	"sort"
	"time"

	"outreach/internal/domain"
)

// highSignalPattern flags older records worth surfacing regardless of age.
var highSignalPattern = regexp.MustCompile(
	`(?i)\b(interested|prefers?|pledged?|legacy|bequest|estate|stock|ira|volunteer|major gift|follow[ -]?up)\b`)

// Meta is the selection-relevant view of one record.
type Meta struct {
	ID      string
	Date    time.Time
	HasDate bool
	Text    string
}

// Config bounds one selection pass. Everything inside the trailing window is
// always kept (up to MaxTotal); RecentPad tops the set up with the next
// most-recent records; the high-signal layer then fills toward MaxTotal.
type Config struct {
	SmallThreshold int
	RecentPad      int
	MaxTotal       int
	Window         time.Duration
}

// NotesConfig returns the selection bounds used for constituent notes.
func NotesConfig() Config {
	return Config{SmallThreshold: 20, RecentPad: 20, MaxTotal: 30}
}

// InteractionsConfig returns the selection bounds used for interactions.
func InteractionsConfig() Config {
	return Config{SmallThreshold: 15, RecentPad: 20, MaxTotal: 30}
}

// Report says how much of the available history was actually forwarded.
type Report struct {
	Used  int `json:"used"`
	Total int `json:"total"`
}

// Select applies the recency-plus-signal heuristic: dedupe by id, always keep
// the trailing twelve months, skip filtering entirely for small collections,
// and otherwise pad with recency then layer in high-signal older records,
// never exceeding MaxTotal. Output is sorted newest first.
func Select[T any](items []T, meta func(T) Meta, now time.Time, cfg Config) ([]T, Report) {
	if cfg.MaxTotal < 1 {
		cfg.MaxTotal = 30
	}
	if cfg.RecentPad > cfg.MaxTotal {
		cfg.RecentPad = cfg.MaxTotal
	}
	seen := map[string]struct{}{}
	deduped := make([]T, 0, len(items))
	for _, item := range items {
		id := meta(item).ID
		if id != "" {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
		}
		deduped = append(deduped, item)
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		mi, mj := meta(deduped[i]), meta(deduped[j])
		if mi.HasDate != mj.HasDate {
			return mi.HasDate // undated records sort last
		}
		return mi.Date.After(mj.Date)
	})

	total := len(deduped)
	if total <= cfg.SmallThreshold {
		return deduped, Report{Used: total, Total: total}
	}

	cutoff := now.AddDate(-1, 0, 0)
	if cfg.Window > 0 {
		cutoff = now.Add(-cfg.Window)
	}

	// Recent records form a prefix of the sorted slice.
	recent := 0
	for recent < total {
		m := meta(deduped[recent])
		if !m.HasDate || m.Date.Before(cutoff) {
			break
		}
		recent++
	}

	selectedEnd := recent
	if selectedEnd > cfg.MaxTotal {
		selectedEnd = cfg.MaxTotal
	}
	if selectedEnd < cfg.RecentPad {
		selectedEnd = min(cfg.RecentPad, total)
	}

	selected := append([]T(nil), deduped[:selectedEnd]...)
	for i := selectedEnd; i < total && len(selected) < cfg.MaxTotal; i++ {
		if highSignalPattern.MatchString(meta(deduped[i]).Text) {
			selected = append(selected, deduped[i])
		}
	}

	return selected, Report{Used: len(selected), Total: total}
}

// NoteMeta adapts a domain.Note for Select.
func NoteMeta(n domain.Note) Meta {
	m := Meta{ID: n.ID, Text: n.Text}
	if n.Date != nil {
		m.Date = *n.Date
		m.HasDate = true
	}
	return m
}

// InteractionMeta adapts a domain.Interaction for Select.
func InteractionMeta(i domain.Interaction) Meta {
	m := Meta{ID: i.ID, Text: i.Text}
	if i.Date != nil {
		m.Date = *i.Date
		m.HasDate = true
	}
	return m
}
