package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessor_Process(t *testing.T) {
	items := make([]int, 25)
	for i := range items {
		items[i] = i
	}

	t.Run("Sequential", func(t *testing.T) {
		p, err := NewProcessor[int](10)
		require.NoError(t, err)
		var processed, batches int32

		err = p.Process(context.Background(), items, func(_ context.Context, batch []int, _ int) error {
			atomic.AddInt32(&batches, 1)
			atomic.AddInt32(&processed, int32(len(batch)))
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, int32(25), processed)
		assert.Equal(t, int32(3), batches)
	})

	t.Run("Concurrent", func(t *testing.T) {
		p, err := NewProcessor[int](5)
		require.NoError(t, err)
		var processed int32

		err = p.ProcessConcurrent(context.Background(), items, func(_ context.Context, batch []int, _ int) error {
			atomic.AddInt32(&processed, int32(len(batch)))
			return nil
		}, 2)
		require.NoError(t, err)
		assert.Equal(t, int32(25), processed)
	})

	t.Run("ErrorHandling", func(t *testing.T) {
		p, err := NewProcessor[int](10)
		require.NoError(t, err)
		fail := errors.New("fail")

		err = p.Process(context.Background(), items, func(_ context.Context, _ []int, i int) error {
			if i == 1 {
				return fail
			}
			return nil
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, fail)
		assert.Contains(t, err.Error(), "batch 1 failed")
	})

	t.Run("ConcurrentErrorsJoined", func(t *testing.T) {
		p, err := NewProcessor[int](10)
		require.NoError(t, err)
		var ran int32

		err = p.ProcessConcurrent(context.Background(), items, func(_ context.Context, _ []int, i int) error {
			atomic.AddInt32(&ran, 1)
			if i != 1 {
				return errors.New("fail")
			}
			return nil
		}, 3)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "batch 0 failed")
		assert.Contains(t, err.Error(), "batch 2 failed")
		assert.Equal(t, int32(3), ran)
	})

	t.Run("EmptyItems", func(t *testing.T) {
		p := NewProcessorWithDefaults[int]()
		called := false
		err := p.Process(context.Background(), nil, func(context.Context, []int, int) error {
			called = true
			return nil
		})
		require.NoError(t, err)
		assert.False(t, called)
	})

	t.Run("NilCallback", func(t *testing.T) {
		p := NewProcessorWithDefaults[int]()
		assert.ErrorIs(t, p.Process(context.Background(), items, nil), ErrNilCallback)
		assert.ErrorIs(t, p.ProcessConcurrent(context.Background(), items, nil, 2), ErrNilCallback)
	})

	t.Run("InvalidBatchSize", func(t *testing.T) {
		_, err := NewProcessor[int](0)
		assert.ErrorIs(t, err, ErrInvalidBatchSize)
		_, err = NewProcessor[int](2000)
		assert.ErrorIs(t, err, ErrInvalidBatchSize)
	})

	t.Run("Cancelled", func(t *testing.T) {
		p, err := NewProcessor[int](10)
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err = p.Process(ctx, items, func(context.Context, []int, int) error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestProcessor_Progress(t *testing.T) {
	p, err := NewProcessor[int](4)
	require.NoError(t, err)

	var mu sync.Mutex
	var snaps []Snapshot
	p.WithProgressCallback(func(s Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		snaps = append(snaps, s)
	})

	items := make([]int, 10)
	err = p.ProcessConcurrent(context.Background(), items, func(context.Context, []int, int) error { return nil }, 2)
	require.NoError(t, err)

	require.Len(t, snaps, 3)
	last := snaps[0]
	for _, s := range snaps {
		if s.ProcessedBatches > last.ProcessedBatches {
			last = s
		}
	}
	assert.Equal(t, 10, last.ProcessedItems)
	assert.True(t, last.IsComplete())
	assert.InDelta(t, 100.0, last.PercentComplete(), 1e-9)
}

func TestProgress(t *testing.T) {
	p := NewProgress(100, 10)
	assert.InDelta(t, 0.0, p.Snapshot().PercentComplete(), 1e-9)
	assert.False(t, p.Snapshot().IsComplete())

	s := p.Add(10)
	assert.InDelta(t, 10.0, s.PercentComplete(), 1e-9)
	assert.Equal(t, 1, s.ProcessedBatches)

	s = p.Add(90)
	assert.True(t, s.IsComplete())
	assert.GreaterOrEqual(t, s.ItemsPerSecond(), 0.0)

	assert.InDelta(t, 0.0, Snapshot{}.PercentComplete(), 1e-9)
}

func TestProcessor_CalculateBatches(t *testing.T) {
	p, err := NewProcessor[int](10)
	require.NoError(t, err)
	batches := p.CalculateBatches(25)
	require.Len(t, batches, 3)
	assert.Equal(t, [2]int{0, 10}, batches[0])
	assert.Equal(t, [2]int{10, 20}, batches[1])
	assert.Equal(t, [2]int{20, 25}, batches[2])
	assert.Empty(t, p.CalculateBatches(0))
	assert.Equal(t, 10, p.BatchSize())
}
