package handlers

import (
	"encoding/json"
	"net/http"

	"outreach/internal/domain"
	"outreach/internal/enrich"
	"outreach/internal/infra"
)

// App is the handler container. Everything a route needs is injected here so
// handlers stay plain methods.
type App struct {
	Logger infra.Logger
	Repo   domain.OutreachRepository
	Runs   domain.RunRepository
	Giving *enrich.GivingService
	Digest *enrich.DigestService
}

func NewApp(logger infra.Logger, repo domain.OutreachRepository, runs domain.RunRepository, giving *enrich.GivingService, digest *enrich.DigestService) *App {
	return &App{Logger: logger, Repo: repo, Runs: runs, Giving: giving, Digest: digest}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, msg string) {
	a.json(w, code, map[string]string{"error": msg})
}
