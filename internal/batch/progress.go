package batch

import (
	"sync"
	"time"
)

const percentMultiplier = 100

// Progress tracks completed items and batches. It is safe for concurrent use.
type Progress struct {
	mu               sync.Mutex
	totalItems       int
	processedItems   int
	totalBatches     int
	processedBatches int
	start            time.Time
}

// Snapshot is an immutable copy of a Progress.
type Snapshot struct {
	TotalItems       int
	ProcessedItems   int
	TotalBatches     int
	ProcessedBatches int
	Elapsed          time.Duration
}

// NewProgress starts tracking totalItems in totalBatches.
func NewProgress(totalItems, totalBatches int) *Progress {
	return &Progress{totalItems: totalItems, totalBatches: totalBatches, start: time.Now()}
}

// Add records one finished batch of n items and returns the new state.
func (p *Progress) Add(n int) Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processedItems += n
	p.processedBatches++
	return p.snapshotLocked()
}

// Snapshot returns the current state.
func (p *Progress) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Progress) snapshotLocked() Snapshot {
	return Snapshot{
		TotalItems:       p.totalItems,
		ProcessedItems:   p.processedItems,
		TotalBatches:     p.totalBatches,
		ProcessedBatches: p.processedBatches,
		Elapsed:          time.Since(p.start),
	}
}

// PercentComplete returns completion in the range 0..100.
func (s Snapshot) PercentComplete() float64 {
	if s.TotalItems == 0 {
		return 0
	}
	return float64(s.ProcessedItems) / float64(s.TotalItems) * percentMultiplier
}

// IsComplete reports whether every item was processed.
func (s Snapshot) IsComplete() bool {
	return s.ProcessedItems >= s.TotalItems
}

// ItemsPerSecond returns the processing rate.
func (s Snapshot) ItemsPerSecond() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.ProcessedItems) / s.Elapsed.Seconds()
}
