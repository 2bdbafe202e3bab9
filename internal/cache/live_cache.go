// Package cache provides the time-bounded cache in front of orchestrator runs.
package cache

import (
	"context"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/yourusername/live-odds/internal/metrics"
	"github.com/yourusername/live-odds/internal/models"
)

const liveKey = "live_matches"

// Runner produces a fresh result set
type Runner interface {
	Run(ctx context.Context) (models.LiveResultSet, error)
}

type entry struct {
	results   models.LiveResultSet
	writtenAt time.Time
}

// LiveOddsCache is a single-slot cache over orchestrator runs. Concurrent
// readers that miss share one run.
type LiveOddsCache struct {
	runner Runner
	store  *gocache.Cache
	ttl    time.Duration
	group  singleflight.Group
	runCtx context.Context

	last   atomic.Pointer[entry]
	hits   atomic.Uint64
	misses atomic.Uint64
	shared atomic.Uint64
}

// Option customizes a LiveOddsCache
type Option func(*LiveOddsCache)

// WithRunContext sets the context refresh runs execute under. Runs outlive
// the reader that started them and stop only when this context ends.
func WithRunContext(ctx context.Context) Option {
	return func(c *LiveOddsCache) { c.runCtx = ctx }
}

// NewLiveOddsCache creates a cache with the given freshness window
func NewLiveOddsCache(runner Runner, ttl time.Duration, opts ...Option) *LiveOddsCache {
	c := &LiveOddsCache{
		runner: runner,
		store:  gocache.New(ttl, ttl*2),
		ttl:    ttl,
		runCtx: context.Background(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Read returns the cached result set while it is fresh, otherwise runs the
// orchestrator once for all concurrent callers and stores the result. A
// caller whose ctx ends stops waiting but does not cancel the run.
func (c *LiveOddsCache) Read(ctx context.Context) (models.LiveResultSet, error) {
	if e, ok := c.fresh(); ok {
		c.record(&c.hits, "hit")
		return e.results, nil
	}

	ch := c.group.DoChan(liveKey, func() (interface{}, error) {
		if e, ok := c.fresh(); ok {
			return e, nil
		}
		results, err := c.runner.Run(c.runCtx)
		if err != nil {
			return nil, err
		}
		e := &entry{results: results, writtenAt: time.Now()}
		c.store.Set(liveKey, e, c.ttl)
		c.last.Store(e)
		return e, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			c.record(&c.shared, "shared")
		} else {
			c.record(&c.misses, "miss")
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*entry).results, nil
	}
}

// Invalidate forces the next Read to run the orchestrator
func (c *LiveOddsCache) Invalidate() {
	c.store.Delete(liveKey)
}

// LastUpdated returns when the most recent result set was stored, or the zero
// time if none has been
func (c *LiveOddsCache) LastUpdated() time.Time {
	if e := c.last.Load(); e != nil {
		return e.writtenAt
	}
	return time.Time{}
}

// Peek returns the most recent result set without triggering a refresh. It
// may be stale.
func (c *LiveOddsCache) Peek() (models.LiveResultSet, bool) {
	if e := c.last.Load(); e != nil {
		return e.results, true
	}
	return nil, false
}

// Stats returns cache statistics. Shared reads count as misses.
func (c *LiveOddsCache) Stats() (hits, misses uint64, ratio float64) {
	hits = c.hits.Load()
	misses = c.misses.Load() + c.shared.Load()
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

func (c *LiveOddsCache) fresh() (*entry, bool) {
	v, found := c.store.Get(liveKey)
	if !found {
		return nil, false
	}
	e, ok := v.(*entry)
	return e, ok
}

func (c *LiveOddsCache) record(counter *atomic.Uint64, result string) {
	counter.Add(1)
	_, _, ratio := c.Stats()
	metrics.RecordCacheRequest(result, ratio)
}
