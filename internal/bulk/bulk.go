// Package bulk runs one operation over many items and reports partial success.
package bulk

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is used when Run gets a concurrency below one.
const DefaultConcurrency = 4

// Result counts the outcome of a batch. Errors maps the id of every failed item
// to its error message.
type Result struct {
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// Total returns the number of processed items.
func (r Result) Total() int {
	return r.Succeeded + r.Failed
}

// Run calls fn for every item with at most concurrency calls in flight.
// A failing item never stops the others. id names an item in Result.Errors.
func Run[T any](
	ctx context.Context,
	concurrency int,
	items []T,
	id func(T) string,
	fn func(ctx context.Context, item T) error,
) Result {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}

	var (
		mu  sync.Mutex
		res = Result{Errors: make(map[string]string)}
		g   errgroup.Group
	)

	g.SetLimit(concurrency)

	for _, item := range items {
		g.Go(func() error {
			err := ctx.Err()
			if err == nil {
				err = fn(ctx, item)
			}

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				res.Failed++
				res.Errors[id(item)] = err.Error()

				return nil
			}

			res.Succeeded++

			return nil
		})
	}

	_ = g.Wait()

	if len(res.Errors) == 0 {
		res.Errors = nil
	}

	return res
}
