// Package crm talks to the donor CRM's REST API. All outbound calls in the
// pipeline go through the Client here, which owns credential handling, the
// auth-fallback dance, and per-attempt logging.
package crm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"outreach/internal/infra"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("crm: api key is required")

const bodyPreviewLen = 300

// Options configures the CRM client.
type Options struct {
	APIKey         string
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
	RetryBaseDelay time.Duration
}

// Client performs HTTP calls against the CRM API.
type Client struct {
	apiKey         string
	baseURL        string
	httpClient     *http.Client
	logger         *infra.Logger
	retryBaseDelay time.Duration
}

// FetchResult is the tagged outcome of one logical GET. Ordinary HTTP
// failures land here, not in a Go error: OK=false carries the status, a body
// preview, and a diagnostic message so CRM-side problems can be read off the
// result without re-running with verbose logging.
type FetchResult struct {
	OK          bool   `json:"ok"`
	Status      int    `json:"status,omitempty"`
	URL         string `json:"url"`
	Data        any    `json:"-"`
	BodyPreview string `json:"body_preview,omitempty"`
	Message     string `json:"error,omitempty"`
}

// authStrategy applies one way of presenting the API key. The CRM is
// intermittently picky about which header it honors, so strategies are tried
// in order, falling through only on 401/403.
type authStrategy struct {
	name  string
	apply func(req *http.Request, key string)
}

var authStrategies = []authStrategy{
	{"key-and-bearer", func(req *http.Request, key string) {
		req.Header.Set("X-API-Key", key)
		req.Header.Set("Authorization", "Bearer "+key)
	}},
	{"key-only", func(req *http.Request, key string) {
		req.Header.Set("X-API-Key", key)
	}},
	{"bearer-only", func(req *http.Request, key string) {
		req.Header.Set("Authorization", "Bearer "+key)
	}},
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.bloomerang.co/v2"
	}
	retryBaseDelay := opts.RetryBaseDelay
	if retryBaseDelay <= 0 {
		retryBaseDelay = 500 * time.Millisecond
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		apiKey:         strings.TrimSpace(opts.APIKey),
		baseURL:        baseURL,
		httpClient:     httpClient,
		logger:         logger,
		retryBaseDelay: retryBaseDelay,
	}, nil
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// Get performs one logical GET against the given resource path, trying each
// credential strategy until one gets past authentication. Any non-auth HTTP
// failure or an unparseable body is returned immediately as a FetchResult
// with OK=false. The only Go errors are the missing-credential configuration
// error (raised before any network call) and transport-level failures.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*FetchResult, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIKey
	}

	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var last *FetchResult
	for _, strat := range authStrategies {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		strat.apply(req, c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Warn().Str("url", target).Str("auth", strat.name).Err(err).Msg("crm: request failed")
			return &FetchResult{URL: target, Message: err.Error()}, nil
		}
		raw, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return &FetchResult{URL: target, Status: resp.StatusCode, Message: "read body: " + err.Error()}, nil
		}

		c.logger.Info().
			Str("url", target).
			Int("status", resp.StatusCode).
			Str("auth", strat.name).
			Msg("crm: fetch attempt")

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			last = failure(target, resp.StatusCode, raw, "authentication rejected")
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return failure(target, resp.StatusCode, raw, "unexpected status"), nil
		}

		var data any
		if err := json.Unmarshal(raw, &data); err != nil {
			return failure(target, resp.StatusCode, raw, "invalid json: "+err.Error()), nil
		}
		return &FetchResult{OK: true, Status: resp.StatusCode, URL: target, Data: data}, nil
	}

	if last == nil {
		last = &FetchResult{URL: target, Message: "authentication rejected"}
	}
	return last, nil
}

func failure(url string, status int, body []byte, msg string) *FetchResult {
	preview := strings.TrimSpace(string(body))
	if len(preview) > bodyPreviewLen {
		preview = preview[:bodyPreviewLen]
	}
	return &FetchResult{
		Status:      status,
		URL:         url,
		BodyPreview: preview,
		Message:     msg,
	}
}
