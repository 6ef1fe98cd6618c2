package crm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func pageBody(count, start int) string {
	body := `{"Results":[`
	for i := range count {
		if i > 0 {
			body += ","
		}
		body += fmt.Sprintf(`{"Id":%d}`, start+i)
	}
	return body + `]}`
}

func TestWalkPagesTerminatesOnShortPage(t *testing.T) {
	transport := newStubTransport()
	transport.add("/v2/transactions", http.StatusOK, pageBody(3, 0))
	transport.add("/v2/transactions", http.StatusOK, pageBody(3, 3))
	transport.add("/v2/transactions", http.StatusOK, pageBody(1, 6))
	client := newTestClient(t, transport)

	walk, err := client.WalkPages(context.Background(), PageQuery{Path: "/transactions", PageSize: 3})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	if len(walk.Items) != 7 {
		t.Fatalf("accumulated %d items, want 7", len(walk.Items))
	}
	if len(walk.URLs) != 3 {
		t.Fatalf("recorded %d urls, want 3", len(walk.URLs))
	}

	// Offsets must advance strictly by page size.
	for i, req := range transport.requests {
		if got := req.URL.Query().Get("skip"); got != fmt.Sprintf("%d", i*3) {
			t.Fatalf("request %d skip = %s, want %d", i, got, i*3)
		}
		if got := req.URL.Query().Get("take"); got != "3" {
			t.Fatalf("request %d take = %s, want 3", i, got)
		}
	}
}

func TestWalkPagesStopsOnExactEmptyPage(t *testing.T) {
	transport := newStubTransport()
	transport.add("/v2/transactions", http.StatusOK, pageBody(2, 0))
	transport.add("/v2/transactions", http.StatusOK, `{"Results":[]}`)
	client := newTestClient(t, transport)

	walk, err := client.WalkPages(context.Background(), PageQuery{Path: "/transactions", PageSize: 2})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	if len(walk.Items) != 2 {
		t.Fatalf("accumulated %d items, want 2", len(walk.Items))
	}
}

func TestWalkPagesAbortsOnPageFailure(t *testing.T) {
	transport := newStubTransport()
	transport.add("/v2/transactions", http.StatusOK, pageBody(2, 0))
	transport.add("/v2/transactions", http.StatusBadGateway, `{"Message":"flaky"}`)
	client := newTestClient(t, transport)

	_, err := client.WalkPages(context.Background(), PageQuery{Path: "/transactions", PageSize: 2})
	var walkErr *WalkError
	if !errors.As(err, &walkErr) {
		t.Fatalf("err = %v, want *WalkError", err)
	}
	if len(walkErr.URLs) != 2 {
		t.Fatalf("walk error carries %d urls, want both attempted pages", len(walkErr.URLs))
	}
	if walkErr.Last == nil || walkErr.Last.Status != http.StatusBadGateway {
		t.Fatalf("walk error last = %+v", walkErr.Last)
	}
}

func TestWalkPagesRejectsUnknownEnvelope(t *testing.T) {
	transport := newStubTransport()
	transport.add("/v2/transactions", http.StatusOK, `{"Rows":[{"Id":1}]}`)
	client := newTestClient(t, transport)

	_, err := client.WalkPages(context.Background(), PageQuery{Path: "/transactions", PageSize: 2})
	var walkErr *WalkError
	if !errors.As(err, &walkErr) {
		t.Fatalf("err = %v, want *WalkError for unknown envelope", err)
	}
}
