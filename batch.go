package kdtree

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hupe1980/kdtree/distance"
)

// BatchOptions configures the batch query helpers.
type BatchOptions struct {
	// Concurrency bounds the number of queries in flight.
	// Zero or less means runtime.GOMAXPROCS(0).
	Concurrency int
	// Limiter, if set, throttles how fast queries are started.
	Limiter *rate.Limiter
}

// DefaultBatchOptions runs up to GOMAXPROCS queries at once.
var DefaultBatchOptions = BatchOptions{}

// NearestBatch runs Nearest for every query concurrently and returns the
// results in query order.
//
// The tree must not be mutated while the batch runs and fn must be safe for
// concurrent use. The first failing query (or ctx cancellation) aborts the
// batch; queries not yet started are skipped.
func (t *KdTree[A, T]) NearestBatch(ctx context.Context, queries [][]A, k int, fn distance.Func[A], optFns ...func(o *BatchOptions)) ([][]Neighbor[A, T], error) {
	results := make([][]Neighbor[A, T], len(queries))
	err := t.runBatch(ctx, "nearest", len(queries), optFns, func(i int) error {
		r, err := t.Nearest(queries[i], k, fn)
		if err != nil {
			return err
		}
		results[i] = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// WithinCountBatch runs WithinCount for every query concurrently.
// The same constraints as NearestBatch apply.
func (t *KdTree[A, T]) WithinCountBatch(ctx context.Context, queries [][]A, radius A, fn distance.Func[A], optFns ...func(o *BatchOptions)) ([]int, error) {
	counts := make([]int, len(queries))
	err := t.runBatch(ctx, "within_count", len(queries), optFns, func(i int) error {
		c, err := t.WithinCount(queries[i], radius, fn)
		if err != nil {
			return err
		}
		counts[i] = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (t *KdTree[A, T]) runBatch(ctx context.Context, op string, n int, optFns []func(o *BatchOptions), query func(i int) error) error {
	o := DefaultBatchOptions
	for _, fn := range optFns {
		fn(&o)
	}
	if o.Concurrency <= 0 {
		o.Concurrency = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.Concurrency)

	var waitErr error
	for i := range n {
		if gctx.Err() != nil {
			break
		}
		if o.Limiter != nil {
			if waitErr = o.Limiter.Wait(gctx); waitErr != nil {
				break
			}
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := query(i); err != nil {
				return fmt.Errorf("query %d: %w", i, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if waitErr != nil {
		return waitErr
	}
	// Cancellation observed before any goroutine ran leaves Wait nil.
	if err := ctx.Err(); err != nil {
		return err
	}

	t.opts.logger.LogBatch(ctx, op, n, o.Concurrency)
	return nil
}
