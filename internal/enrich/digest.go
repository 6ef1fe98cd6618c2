package enrich

import (
	"context"
	"fmt"
	"strings"
	"time"

	"outreach/internal/activity"
	"outreach/internal/crm"
	"outreach/internal/domain"
	"outreach/internal/infra"
	"outreach/internal/pick"
)

// Summarizer is the opaque text-generation collaborator. Its failure is
// propagated as a typed error and never retried.
type Summarizer interface {
	Summarize(ctx context.Context, lines []string) (string, error)
}

// DigestService assembles the bounded note/interaction payload for a
// constituent and hands it to the summarizer.
type DigestService struct {
	crm        *crm.Client
	summarizer Summarizer
	pageSize   int
	logger     infra.Logger
	now        func() time.Time
}

// NewDigestService constructs the digest service. The summarizer may be nil,
// in which case digests are returned without bullet-point text.
func NewDigestService(client *crm.Client, summarizer Summarizer, pageSize int, logger infra.Logger) *DigestService {
	return &DigestService{crm: client, summarizer: summarizer, pageSize: pageSize, logger: logger, now: time.Now}
}

// Digest fetches the full note and interaction history, filters interactions
// to personal channels, applies the recency-plus-signal selection to both,
// and optionally summarizes the result.
func (s *DigestService) Digest(ctx context.Context, constituentID string) (*domain.ActivityDigest, error) {
	noteWalk, err := s.crm.Notes(ctx, constituentID, s.pageSize)
	if err != nil {
		return nil, err
	}
	interactionWalk, err := s.crm.Interactions(ctx, constituentID, s.pageSize)
	if err != nil {
		return nil, err
	}

	notes := parseNotes(noteWalk.Items)
	interactions := activity.FilterPersonal(parseInteractions(interactionWalk.Items))

	now := s.now()
	selectedNotes, noteReport := activity.Select(notes, activity.NoteMeta, now, activity.NotesConfig())
	selectedInteractions, interactionReport := activity.Select(interactions, activity.InteractionMeta, now, activity.InteractionsConfig())

	s.logger.Debug().
		Str("constituent_id", constituentID).
		Int("notes_used", noteReport.Used).
		Int("notes_total", noteReport.Total).
		Int("interactions_used", interactionReport.Used).
		Int("interactions_total", interactionReport.Total).
		Msg("digest: history selected")

	digest := &domain.ActivityDigest{
		ConstituentID:     constituentID,
		Notes:             selectedNotes,
		Interactions:      selectedInteractions,
		NotesTotal:        noteReport.Total,
		InteractionsTotal: interactionReport.Total,
	}

	if s.summarizer != nil {
		summary, err := s.summarizer.Summarize(ctx, FormatDigestLines(digest))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrSummarizerFailure, err)
		}
		digest.Summary = summary
	}
	return digest, nil
}

// FormatDigestLines renders the selected records as the well-formed, bounded
// line list the summarization collaborator expects.
func FormatDigestLines(d *domain.ActivityDigest) []string {
	lines := make([]string, 0, len(d.Notes)+len(d.Interactions))
	for _, n := range d.Notes {
		lines = append(lines, formatLine("note", n.Date, n.Author, "", n.Text))
	}
	for _, i := range d.Interactions {
		direction := "outbound"
		if i.Inbound {
			direction = "inbound"
		}
		lines = append(lines, formatLine("interaction", i.Date, i.Author, i.Channel+" "+direction, i.Text))
	}
	return lines
}

func formatLine(kind string, date *time.Time, author, detail, text string) string {
	when := "undated"
	if date != nil {
		when = date.Format("2006-01-02")
	}
	var b strings.Builder
	b.WriteString("[" + when + "] " + kind)
	if detail != "" {
		b.WriteString(" (" + detail + ")")
	}
	if author != "" {
		b.WriteString(" by " + author)
	}
	b.WriteString(": " + strings.TrimSpace(text))
	return b.String()
}

func parseNotes(records []map[string]any) []domain.Note {
	notes := make([]domain.Note, 0, len(records))
	for _, rec := range records {
		n := domain.Note{
			ID:     pick.String(rec, "Id"),
			Author: pick.String(rec, "CreatedName"),
			Text:   firstText(rec),
		}
		if t, ok := noteDate(rec); ok {
			n.Date = &t
		}
		notes = append(notes, n)
	}
	return notes
}

func parseInteractions(records []map[string]any) []domain.Interaction {
	interactions := make([]domain.Interaction, 0, len(records))
	for _, rec := range records {
		i := domain.Interaction{
			ID:      pick.String(rec, "Id"),
			Author:  pick.String(rec, "CreatedName"),
			Channel: pick.String(rec, "Channel"),
			Inbound: pick.Bool(rec, "IsInbound"),
			Text:    firstText(rec),
		}
		if t, ok := noteDate(rec); ok {
			i.Date = &t
		}
		interactions = append(interactions, i)
	}
	return interactions
}

func noteDate(rec map[string]any) (time.Time, bool) {
	for _, key := range []string{"Date", "CreatedDate"} {
		if t, ok := pick.Time(rec, key); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func firstText(rec map[string]any) string {
	for _, key := range []string{"Note", "Text", "Subject"} {
		if v := pick.String(rec, key); v != "" {
			return v
		}
	}
	return ""
}
