// Package batch provides the bounded fan-out primitive used by every
// concurrent step in the enrichment pipeline.
package batch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Result holds the outcome for one work item. Failures stay per-item values;
// one item's error never aborts the rest of the batch.
type Result[T any] struct {
	Value T
	Err   error
}

// Run applies fn to every item with at most limit calls in flight, returning
// results in input order regardless of completion order. The limit is
// enforced structurally by the errgroup, not by convention at call sites.
func Run[In, Out any](ctx context.Context, items []In, limit int, fn func(context.Context, In) (Out, error)) []Result[Out] {
	if fn == nil {
		panic("batch: nil work function")
	}
	if limit < 1 {
		limit = 1
	}

	results := make([]Result[Out], len(items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, item := range items {
		g.Go(func() error {
			out, err := fn(ctx, item)
			results[i] = Result[Out]{Value: out, Err: err}
			return nil
		})
	}

	// Workers always return nil, so this only waits; it cannot fail.
	_ = g.Wait()
	return results
}

// Errs collects the non-nil errors from a result slice, preserving order.
func Errs[T any](results []Result[T]) []error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errs
}
