package crm

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
)

// stubTransport replays canned responses per path and records every request,
// so tests can assert on auth headers and pagination parameters.
type stubTransport struct {
	responses map[string][]stubResponse
	requests  []*http.Request
	lock      sync.Mutex
}

type stubResponse struct {
	status int
	body   string
}

func newStubTransport() *stubTransport {
	return &stubTransport{responses: map[string][]stubResponse{}}
}

func (t *stubTransport) add(path string, status int, body string) {
	t.responses[path] = append(t.responses[path], stubResponse{status: status, body: body})
}

func (t *stubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.requests = append(t.requests, req.Clone(req.Context()))
	queue := t.responses[req.URL.Path]
	if len(queue) == 0 {
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(strings.NewReader(`{"Message":"no stub"}`)),
			Header:     http.Header{},
			Request:    req,
		}, nil
	}
	next := queue[0]
	t.responses[req.URL.Path] = queue[1:]
	return &http.Response{
		StatusCode: next.status,
		Body:       io.NopCloser(strings.NewReader(next.body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Request:    req,
	}, nil
}

func newTestClient(t *testing.T, transport *stubTransport) *Client {
	t.Helper()
	client, err := NewClient(Options{
		APIKey:         "test-key",
		BaseURL:        "https://crm.example.org/v2",
		HTTPClient:     &http.Client{Transport: transport},
		RetryBaseDelay: 1, // nanoseconds; keeps retry tests fast
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestGetRequiresCredentials(t *testing.T) {
	client, err := NewClient(Options{BaseURL: "https://crm.example.org"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Get(context.Background(), "/constituents/1", nil); err != ErrMissingAPIKey {
		t.Fatalf("err = %v, want ErrMissingAPIKey", err)
	}
}

func TestGetFirstStrategySucceeds(t *testing.T) {
	transport := newStubTransport()
	transport.add("/v2/constituents/1", http.StatusOK, `{"Id":1}`)
	client := newTestClient(t, transport)

	res, err := client.Get(context.Background(), "/constituents/1", nil)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !res.OK || res.Status != http.StatusOK {
		t.Fatalf("result = %+v, want ok", res)
	}
	if len(transport.requests) != 1 {
		t.Fatalf("issued %d requests, want 1", len(transport.requests))
	}
	req := transport.requests[0]
	if req.Header.Get("X-API-Key") != "test-key" || req.Header.Get("Authorization") != "Bearer test-key" {
		t.Fatalf("first attempt should send both credential headers, got %v", req.Header)
	}
}

func TestGetFallsThroughOnAuthFailure(t *testing.T) {
	transport := newStubTransport()
	transport.add("/v2/constituents/1", http.StatusUnauthorized, `{"Message":"bad auth"}`)
	transport.add("/v2/constituents/1", http.StatusOK, `{"Id":1}`)
	client := newTestClient(t, transport)

	res, err := client.Get(context.Background(), "/constituents/1", nil)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !res.OK {
		t.Fatalf("result = %+v, want ok after fallback", res)
	}
	if len(transport.requests) != 2 {
		t.Fatalf("issued %d requests, want 2", len(transport.requests))
	}
	second := transport.requests[1]
	if second.Header.Get("X-API-Key") != "test-key" || second.Header.Get("Authorization") != "" {
		t.Fatalf("second attempt should be key-only, got %v", second.Header)
	}
}

func TestGetExhaustsAllStrategies(t *testing.T) {
	transport := newStubTransport()
	for range 3 {
		transport.add("/v2/constituents/1", http.StatusForbidden, `{"Message":"nope"}`)
	}
	client := newTestClient(t, transport)

	res, err := client.Get(context.Background(), "/constituents/1", nil)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if res.OK {
		t.Fatalf("expected failure after exhausting strategies")
	}
	if res.Status != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", res.Status)
	}
	if len(transport.requests) != 3 {
		t.Fatalf("issued %d requests, want 3", len(transport.requests))
	}
}

func TestGetNonAuthFailureIsImmediate(t *testing.T) {
	transport := newStubTransport()
	transport.add("/v2/transactions", http.StatusInternalServerError, `{"Message":"upstream down"}`)
	client := newTestClient(t, transport)

	res, err := client.Get(context.Background(), "/transactions", nil)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if res.OK {
		t.Fatalf("expected failure result")
	}
	if len(transport.requests) != 1 {
		t.Fatalf("500 must not fall through strategies: %d requests", len(transport.requests))
	}
	if !strings.Contains(res.BodyPreview, "upstream down") {
		t.Fatalf("body preview missing: %q", res.BodyPreview)
	}
}

func TestGetMalformedBodyIsFailureValue(t *testing.T) {
	transport := newStubTransport()
	transport.add("/v2/transactions", http.StatusOK, `<html>gateway error</html>`)
	client := newTestClient(t, transport)

	res, err := client.Get(context.Background(), "/transactions", nil)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if res.OK {
		t.Fatalf("expected failure for non-JSON body")
	}
	if res.BodyPreview == "" {
		t.Fatalf("expected body preview for diagnostics")
	}
}

func TestGetTruncatesBodyPreview(t *testing.T) {
	transport := newStubTransport()
	transport.add("/v2/transactions", http.StatusBadRequest, strings.Repeat("x", 1000))
	client := newTestClient(t, transport)

	res, err := client.Get(context.Background(), "/transactions", nil)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(res.BodyPreview) != bodyPreviewLen {
		t.Fatalf("preview length = %d, want %d", len(res.BodyPreview), bodyPreviewLen)
	}
}

func TestGetEncodesQuery(t *testing.T) {
	transport := newStubTransport()
	transport.add("/v2/constituents/search", http.StatusOK, `{"Results":[]}`)
	client := newTestClient(t, transport)

	params := url.Values{}
	params.Set("search", "ACCT 42")
	if _, err := client.Get(context.Background(), "/constituents/search", params); err != nil {
		t.Fatalf("get: %v", err)
	}
	got := transport.requests[0].URL.Query().Get("search")
	if got != "ACCT 42" {
		t.Fatalf("search param = %q", got)
	}
}
