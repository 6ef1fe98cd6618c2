package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"outreach/internal/domain"
)

// ActivityDigest assembles the bounded note/interaction digest for one
// constituent, with optional generated talking points.
func (a *App) ActivityDigest(w http.ResponseWriter, r *http.Request) {
	constituentID := chi.URLParam(r, "constituentID")

	digest, err := a.Digest.Digest(r.Context(), constituentID)
	if err != nil {
		if errors.Is(err, domain.ErrSummarizerFailure) {
			a.error(w, http.StatusBadGateway, err.Error())
			return
		}
		a.crmError(w, constituentID, err, "activity digest failed")
		return
	}
	a.json(w, http.StatusOK, digest)
}
