package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"outreach/internal/crm"
)

// GivingSummary computes live giving statistics and ranked interests for one
// constituent. An aborted CRM walk maps to 502 with the attempted URLs so
// upstream trouble is debuggable from the response alone.
func (a *App) GivingSummary(w http.ResponseWriter, r *http.Request) {
	constituentID := chi.URLParam(r, "constituentID")

	summary, err := a.Giving.Summary(r.Context(), constituentID)
	if err != nil {
		a.crmError(w, constituentID, err, "giving summary failed")
		return
	}
	a.json(w, http.StatusOK, summary)
}

// crmError maps CRM failures onto HTTP. Incomplete pagination is an upstream
// fault, not ours.
func (a *App) crmError(w http.ResponseWriter, constituentID string, err error, msg string) {
	var walkErr *crm.WalkError
	if errors.As(err, &walkErr) {
		body := map[string]any{
			"error": msg,
			"urls":  walkErr.URLs,
		}
		if walkErr.Last != nil {
			body["status"] = walkErr.Last.Status
			body["body_preview"] = walkErr.Last.BodyPreview
		}
		a.json(w, http.StatusBadGateway, body)
		return
	}
	if errors.Is(err, crm.ErrMissingAPIKey) {
		a.error(w, http.StatusServiceUnavailable, "crm credentials not configured")
		return
	}
	a.Logger.Error().Err(err).Str("constituent_id", constituentID).Msg(msg)
	a.error(w, http.StatusInternalServerError, msg)
}
