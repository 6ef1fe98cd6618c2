package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListHouseholds serves the cached household and member snapshots produced by
// the most recent enrichment run. It never calls the CRM.
func (a *App) ListHouseholds(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")

	households, err := a.Repo.ListHouseholds(r.Context(), listID)
	if err != nil {
		a.Logger.Error().Err(err).Str("list_id", listID).Msg("households: list failed")
		a.error(w, http.StatusInternalServerError, "failed to load households")
		return
	}
	members, err := a.Repo.ListMembers(r.Context(), listID)
	if err != nil {
		a.Logger.Error().Err(err).Str("list_id", listID).Msg("households: members failed")
		a.error(w, http.StatusInternalServerError, "failed to load members")
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"list_id":    listID,
		"households": households,
		"members":    members,
	})
}
