package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"outreach/internal/http/handlers"
	"outreach/internal/infra/geoip"
	"outreach/internal/middleware"
)

// Options carries the router's cross-cutting configuration.
type Options struct {
	Logger          zerolog.Logger
	Countries       geoip.CountryResolver
	CORSOrigins     []string
	RateLimitPerMin int
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger, opts.Countries),
		middleware.CORS(opts.CORSOrigins),
	)
	if opts.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
	}

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/lists/{listID}", func(r chi.Router) {
		r.Post("/enrich", app.EnqueueRun)
		r.Get("/households", app.ListHouseholds)
	})
	r.Get("/v1/runs/{runID}", app.GetRun)
	r.Route("/v1/constituents/{constituentID}", func(r chi.Router) {
		r.Get("/giving", app.GivingSummary)
		r.Get("/digest", app.ActivityDigest)
	})

	return r
}
