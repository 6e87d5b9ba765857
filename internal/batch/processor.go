package batch

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Batch size bounds.
const (
	DefaultBatchSize = 16
	MinBatchSize     = 1
	MaxBatchSize     = 1000
)

// Common batch processing errors.
var (
	ErrInvalidBatchSize = errors.New("batch size must be between 1 and 1000")
	ErrNilCallback      = errors.New("batch callback cannot be nil")
)

// Callback processes a single batch. batchIndex is 0-based.
type Callback[T any] func(ctx context.Context, batch []T, batchIndex int) error

// ProgressCallback is invoked after each batch with a snapshot of the progress.
type ProgressCallback func(snap Snapshot)

// Processor runs a callback over items in fixed-size batches.
type Processor[T any] struct {
	batchSize  int
	onProgress ProgressCallback
}

// NewProcessor creates a processor with the given batch size.
func NewProcessor[T any](batchSize int) (*Processor[T], error) {
	if batchSize < MinBatchSize || batchSize > MaxBatchSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, batchSize)
	}
	return &Processor[T]{batchSize: batchSize}, nil
}

// NewProcessorWithDefaults creates a processor with DefaultBatchSize.
func NewProcessorWithDefaults[T any]() *Processor[T] {
	return &Processor[T]{batchSize: DefaultBatchSize}
}

// WithProgressCallback sets a progress callback for the processor.
func (p *Processor[T]) WithProgressCallback(callback ProgressCallback) *Processor[T] {
	p.onProgress = callback
	return p
}

// BatchSize returns the configured batch size.
func (p *Processor[T]) BatchSize() int {
	return p.batchSize
}

// Process runs batches sequentially and stops on the first error.
// An empty items slice is a no-op.
func (p *Processor[T]) Process(ctx context.Context, items []T, callback Callback[T]) error {
	if callback == nil {
		return ErrNilCallback
	}

	bounds := p.CalculateBatches(len(items))
	progress := NewProgress(len(items), len(bounds))

	for i, b := range bounds {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := callback(ctx, items[b[0]:b[1]], i); err != nil {
			return fmt.Errorf("batch %d failed: %w", i, err)
		}
		p.report(progress, b[1]-b[0])
	}
	return nil
}

// ProcessConcurrent runs up to maxConcurrency batches at once. Every batch
// runs even if another fails; the failures are joined.
func (p *Processor[T]) ProcessConcurrent(
	ctx context.Context,
	items []T,
	callback Callback[T],
	maxConcurrency int,
) error {
	if callback == nil {
		return ErrNilCallback
	}
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}

	bounds := p.CalculateBatches(len(items))
	progress := NewProgress(len(items), len(bounds))
	errs := make([]error, len(bounds))

	var g errgroup.Group
	g.SetLimit(maxConcurrency)
	for i, b := range bounds {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			break
		}
		g.Go(func() error {
			if err := callback(ctx, items[b[0]:b[1]], i); err != nil {
				errs[i] = fmt.Errorf("batch %d failed: %w", i, err)
				return nil
			}
			p.report(progress, b[1]-b[0])
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

// CalculateBatches returns [start, end) index pairs covering totalItems.
func (p *Processor[T]) CalculateBatches(totalItems int) [][2]int {
	out := make([][2]int, 0, (totalItems+p.batchSize-1)/p.batchSize)
	for start := 0; start < totalItems; start += p.batchSize {
		out = append(out, [2]int{start, min(start+p.batchSize, totalItems)})
	}
	return out
}

func (p *Processor[T]) report(progress *Progress, n int) {
	snap := progress.Add(n)
	if p.onProgress != nil {
		p.onProgress(snap)
	}
}
