package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"outreach/internal/crm"
	"outreach/internal/enrich"
	"outreach/internal/infra"
)

func newGivingTestRouter(t *testing.T, crmBaseURL string) http.Handler {
	t.Helper()
	client, err := crm.NewClient(crm.Options{APIKey: "test-key", BaseURL: crmBaseURL, RetryBaseDelay: 1})
	if err != nil {
		t.Fatalf("new crm client: %v", err)
	}
	logger := infra.Logger(zerolog.Nop())
	app := &App{
		Logger: logger,
		Giving: enrich.NewGivingService(client, 50, logger),
	}
	r := chi.NewRouter()
	r.Get("/v1/constituents/{constituentID}/giving", app.GivingSummary)
	return r
}

func TestGivingSummaryOK(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/transactions", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"Results":[{"Id":1,"Type":"Donation","Amount":40,"Date":"2025-02-01","Designations":[{"Fund":"General","Amount":40}]}]}`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	router := newGivingTestRouter(t, server.URL)
	req := httptest.NewRequest(http.MethodGet, "/v1/constituents/7/giving", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Stats struct {
			LifetimeTotal float64 `json:"lifetime_total"`
		} `json:"stats"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Stats.LifetimeTotal != 40 {
		t.Fatalf("lifetime = %v, want 40", resp.Stats.LifetimeTotal)
	}
}

func TestGivingSummaryMapsWalkErrorToBadGateway(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/transactions", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"Message":"upstream down"}`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	router := newGivingTestRouter(t, server.URL)
	req := httptest.NewRequest(http.MethodGet, "/v1/constituents/7/giving", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rr.Code)
	}
	var resp struct {
		URLs    []string `json:"urls"`
		Status  int      `json:"status"`
		Preview string   `json:"body_preview"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.URLs) != 1 {
		t.Fatalf("attempted urls must surface, got %v", resp.URLs)
	}
	if resp.Status != http.StatusInternalServerError {
		t.Fatalf("upstream status = %d", resp.Status)
	}
}
