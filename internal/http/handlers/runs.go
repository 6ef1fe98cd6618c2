package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"outreach/internal/domain"
)

type enqueueRunReq struct {
	AccountNumbers []string `json:"account_numbers"`
}

// EnqueueRun queues an enrichment run for an outreach list. The worker picks
// it up; at most one run per list may be queued or running at a time.
func (a *App) EnqueueRun(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")

	var req enqueueRunReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid json body")
		return
	}
	accountNumbers := make([]string, 0, len(req.AccountNumbers))
	for _, n := range req.AccountNumbers {
		if n = strings.TrimSpace(n); n != "" {
			accountNumbers = append(accountNumbers, n)
		}
	}
	if len(accountNumbers) == 0 {
		a.error(w, http.StatusBadRequest, "account_numbers is required")
		return
	}

	active, err := a.Runs.ActiveForList(r.Context(), listID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		a.Logger.Error().Err(err).Str("list_id", listID).Msg("runs: active lookup failed")
		a.error(w, http.StatusInternalServerError, "failed to enqueue run")
		return
	}
	if active != nil {
		a.json(w, http.StatusConflict, map[string]any{
			"error":  domain.ErrRunConflict.Error(),
			"run_id": active.ID,
			"status": active.Status,
		})
		return
	}

	run := &domain.OutreachRun{
		ID:             uuid.NewString(),
		ListID:         listID,
		Status:         domain.RunQueued,
		AccountNumbers: accountNumbers,
	}
	if err := a.Runs.Create(r.Context(), run); err != nil {
		a.Logger.Error().Err(err).Str("list_id", listID).Msg("runs: create failed")
		a.error(w, http.StatusInternalServerError, "failed to enqueue run")
		return
	}

	a.json(w, http.StatusAccepted, map[string]any{
		"id":     run.ID,
		"status": run.Status,
	})
}

// GetRun reports the status of one enrichment run.
func (a *App) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := a.Runs.GetByID(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "run not found")
			return
		}
		a.Logger.Error().Err(err).Msg("runs: lookup failed")
		a.error(w, http.StatusInternalServerError, "failed to load run")
		return
	}
	a.json(w, http.StatusOK, run)
}
