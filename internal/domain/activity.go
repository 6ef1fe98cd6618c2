package domain

import "time"

// Note is a timestamped free-text record attached to a constituent.
// Immutable once fetched; selection heuristics work on copies.
type Note struct {
	ID     string     `json:"id"`
	Date   *time.Time `json:"date,omitempty"`
	Author string     `json:"author,omitempty"`
	Text   string     `json:"text"`
}

// Interaction is a logged touchpoint with a channel and direction.
type Interaction struct {
	ID      string     `json:"id"`
	Date    *time.Time `json:"date,omitempty"`
	Author  string     `json:"author,omitempty"`
	Channel string     `json:"channel"`
	Inbound bool       `json:"inbound"`
	Text    string     `json:"text"`
}

// ActivityDigest is the bounded payload handed to the summarization
// collaborator, plus how much history it was distilled from.
type ActivityDigest struct {
	ConstituentID     string        `json:"constituent_id"`
	Notes             []Note        `json:"notes"`
	Interactions      []Interaction `json:"interactions"`
	NotesTotal        int           `json:"notes_total"`
	InteractionsTotal int           `json:"interactions_total"`
	Summary           string        `json:"summary,omitempty"`
}
