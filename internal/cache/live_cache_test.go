package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/live-odds/internal/models"
)

// countingRunner counts fetches as a real run would: one per live match
type countingRunner struct {
	runs      int32
	fetches   int32
	batchSize int32
	delay     time.Duration
	err       error
	started   chan struct{}
}

func (r *countingRunner) Run(ctx context.Context) (models.LiveResultSet, error) {
	n := atomic.AddInt32(&r.runs, 1)
	if r.started != nil && n == 1 {
		close(r.started)
	}
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	if r.err != nil {
		return nil, r.err
	}
	atomic.AddInt32(&r.fetches, r.batchSize)
	results := make(models.LiveResultSet, 0, r.batchSize)
	for i := int32(0); i < r.batchSize; i++ {
		results = append(results, models.NewNormalizedEvent("E", "m", time.Now()))
	}
	return results, nil
}

func TestReadWithinWindowIsIdempotent(t *testing.T) {
	runner := &countingRunner{batchSize: 2}
	c := NewLiveOddsCache(runner, time.Minute)

	first, err := c.Read(context.Background())
	require.NoError(t, err)
	second, err := c.Read(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&runner.runs))
	assert.Equal(t, int32(2), atomic.LoadInt32(&runner.fetches))
	require.Len(t, second, 2)
	assert.Same(t, first[0], second[0])

	hits, misses, ratio := c.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
	assert.Equal(t, 0.5, ratio)
}

func TestInvalidateForcesSingleRefreshForConcurrentReaders(t *testing.T) {
	runner := &countingRunner{batchSize: 3, delay: 50 * time.Millisecond}
	c := NewLiveOddsCache(runner, time.Minute)

	_, err := c.Read(context.Background())
	require.NoError(t, err)
	require.Equal(t, int32(3), atomic.LoadInt32(&runner.fetches))

	c.Invalidate()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results, err := c.Read(context.Background())
			assert.NoError(t, err)
			assert.Len(t, results, 3)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(2), atomic.LoadInt32(&runner.runs))
	assert.Equal(t, int32(6), atomic.LoadInt32(&runner.fetches))
}

func TestReadAfterWindowExpires(t *testing.T) {
	runner := &countingRunner{batchSize: 1}
	c := NewLiveOddsCache(runner, 20*time.Millisecond)

	_, err := c.Read(context.Background())
	require.NoError(t, err)
	time.Sleep(40 * time.Millisecond)
	_, err = c.Read(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&runner.runs))
}

func TestReadErrorIsNotCached(t *testing.T) {
	runner := &countingRunner{err: errors.New("context canceled")}
	c := NewLiveOddsCache(runner, time.Minute)

	_, err := c.Read(context.Background())
	assert.Error(t, err)
	_, err = c.Read(context.Background())
	assert.Error(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&runner.runs))
	assert.True(t, c.LastUpdated().IsZero())
	_, ok := c.Peek()
	assert.False(t, ok)
}

func TestCancelledReaderDoesNotCancelRun(t *testing.T) {
	runner := &countingRunner{batchSize: 1, delay: 50 * time.Millisecond, started: make(chan struct{})}
	c := NewLiveOddsCache(runner, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-runner.started
		cancel()
	}()

	_, err := c.Read(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	results, err := c.Read(context.Background())
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, int32(1), atomic.LoadInt32(&runner.runs))
}

func TestLastUpdatedAndPeek(t *testing.T) {
	runner := &countingRunner{batchSize: 1}
	c := NewLiveOddsCache(runner, time.Minute)
	assert.True(t, c.LastUpdated().IsZero())

	before := time.Now()
	_, err := c.Read(context.Background())
	require.NoError(t, err)

	assert.False(t, c.LastUpdated().Before(before))

	c.Invalidate()
	results, ok := c.Peek()
	assert.True(t, ok)
	assert.Len(t, results, 1)
}
