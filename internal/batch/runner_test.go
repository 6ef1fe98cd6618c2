package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunPreservesInputOrder(t *testing.T) {
	items := make([]int, 20)
	for i := range items {
		items[i] = i
	}

	results := Run(context.Background(), items, 4, func(_ context.Context, n int) (string, error) {
		// Reverse the natural completion order.
		time.Sleep(time.Duration(len(items)-n) * time.Millisecond)
		return fmt.Sprintf("item-%d", n), nil
	})

	if len(results) != len(items) {
		t.Fatalf("got %d results, want %d", len(results), len(items))
	}
	for i, r := range results {
		if r.Err != nil {
			t.Fatalf("item %d failed: %v", i, r.Err)
		}
		if want := fmt.Sprintf("item-%d", i); r.Value != want {
			t.Fatalf("results[%d] = %q, want %q", i, r.Value, want)
		}
	}
}

func TestRunNeverExceedsLimit(t *testing.T) {
	const limit = 5
	var inFlight, peak int64
	var mu sync.Mutex

	items := make([]int, 50)
	Run(context.Background(), items, limit, func(_ context.Context, _ int) (struct{}, error) {
		n := atomic.AddInt64(&inFlight, 1)
		mu.Lock()
		if n > peak {
			peak = n
		}
		mu.Unlock()
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		return struct{}{}, nil
	})

	if peak > limit {
		t.Fatalf("observed %d concurrent items, limit is %d", peak, limit)
	}
	if peak == 0 {
		t.Fatalf("work function never ran")
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	items := []int{0, 1, 2, 3, 4}
	boom := errors.New("boom")

	results := Run(context.Background(), items, 2, func(_ context.Context, n int) (int, error) {
		if n == 2 {
			return 0, boom
		}
		return n * 10, nil
	})

	for i, r := range results {
		if i == 2 {
			if !errors.Is(r.Err, boom) {
				t.Fatalf("item 2: err = %v, want boom", r.Err)
			}
			continue
		}
		if r.Err != nil {
			t.Fatalf("item %d should have succeeded: %v", i, r.Err)
		}
		if r.Value != i*10 {
			t.Fatalf("item %d = %d, want %d", i, r.Value, i*10)
		}
	}

	if errs := Errs(results); len(errs) != 1 {
		t.Fatalf("Errs returned %d errors, want 1", len(errs))
	}
}

func TestRunEmptyInput(t *testing.T) {
	results := Run(context.Background(), nil, 3, func(_ context.Context, _ int) (int, error) {
		t.Fatalf("work function should not run")
		return 0, nil
	})
	if len(results) != 0 {
		t.Fatalf("got %d results for empty input", len(results))
	}
}
