// Package gate provides the bounded-concurrency gate shared by every
// filesystem-touching phase of a run.
package gate

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// DefaultLimit serializes all filesystem work
const DefaultLimit = 1

// Gate limits how many tasks may touch the filesystem at once
type Gate struct {
	limit int
	sem   *semaphore.Weighted
}

// New creates a gate with the given number of permits (minimum 1)
func New(limit int) *Gate {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &Gate{
		limit: limit,
		sem:   semaphore.NewWeighted(int64(limit)),
	}
}

// Limit returns the number of permits
func (g *Gate) Limit() int {
	return g.limit
}

// Acquire blocks until a permit is available or ctx is done
func (g *Gate) Acquire(ctx context.Context) error {
	return g.sem.Acquire(ctx, 1)
}

// Release returns a permit taken by Acquire
func (g *Gate) Release() {
	g.sem.Release(1)
}

// Do runs fn while holding a permit
func (g *Gate) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := g.Acquire(ctx); err != nil {
		return err
	}
	defer g.Release()
	return fn(ctx)
}

// Each runs fn for every index in [0, n) through the gate and waits for all of them.
// Failures do not stop the remaining calls; errs[i] holds the result for index i.
func (g *Gate) Each(ctx context.Context, n int, fn func(ctx context.Context, i int) error) []error {
	errs := make([]error, n)
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		if err := g.Acquire(ctx); err != nil {
			errs[i] = err
			continue
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer g.Release()
			errs[i] = fn(ctx, i)
		}(i)
	}

	wg.Wait()
	return errs
}
