package analyzer

import (
	"context"
	"runtime"

	"github.com/sourcegraph/conc/pool"
)

// DefaultWorkers returns the default worker count for CPU-bound task work.
func DefaultWorkers() int {
	return runtime.NumCPU()
}

// MapOrdered applies fn to every item in parallel and returns the results
// in input order. If maxWorkers is <= 0, DefaultWorkers is used.
// The first error returned by fn cancels the remaining work and is returned.
func MapOrdered[S, T any](ctx context.Context, items []S, maxWorkers int, fn func(context.Context, int, S) (T, error)) ([]T, error) {
	if len(items) == 0 {
		return nil, nil
	}
	if maxWorkers <= 0 {
		maxWorkers = DefaultWorkers()
	}

	results := make([]T, len(items))
	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError().WithMaxGoroutines(maxWorkers)
	for i, item := range items {
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := fn(ctx, i, item)
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
