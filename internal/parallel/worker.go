// Package parallel runs independent chart work on a bounded pool of goroutines.
//
// Results always come back in input order, so output produced from them is the
// same on every run regardless of scheduling.
package parallel

import (
	"context"
	"runtime"
	"sync"
)

// WorkerPool bounds the number of goroutines working on one batch of items.
type WorkerPool struct {
	numWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewWorkerPool creates a new worker pool. A non-positive count means one worker
// per CPU.
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		numWorkers: numWorkers,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// NumWorkers returns the pool size.
func (wp *WorkerPool) NumWorkers() int {
	return wp.numWorkers
}

// ProcessIndexed applies worker to every item and returns the results in input
// order. Items not started before the pool is closed keep the zero result. A
// single-worker pool runs the items on the calling goroutine.
func ProcessIndexed[T, R any](
	wp *WorkerPool,
	items []T,
	worker func(int, T) R,
) []R {
	if len(items) == 0 {
		return nil
	}

	results := make([]R, len(items))
	if wp.numWorkers == 1 {
		for i, item := range items {
			if wp.ctx.Err() != nil {
				break
			}
			results[i] = worker(i, item)
		}
		return results
	}

	itemCh := make(chan int, len(items))

	workers := min(wp.numWorkers, len(items))
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range itemCh {
				select {
				case <-wp.ctx.Done():
					return
				default:
					// each index is written by exactly one worker
					results[i] = worker(i, items[i])
				}
			}
		}()
	}

	for i := range items {
		itemCh <- i
	}
	close(itemCh)
	wg.Wait()

	return results
}

// TryProcessIndexed is ProcessIndexed for workers that can fail. It returns the
// error of the lowest failing index, or the results when every item succeeded.
func TryProcessIndexed[T, R any](
	wp *WorkerPool,
	items []T,
	worker func(int, T) (R, error),
) ([]R, error) {
	type outcome struct {
		value R
		err   error
	}
	outcomes := ProcessIndexed(wp, items, func(i int, item T) outcome {
		v, err := worker(i, item)
		return outcome{value: v, err: err}
	})

	results := make([]R, len(outcomes))
	for i, o := range outcomes {
		if o.err != nil {
			return nil, o.err
		}
		results[i] = o.value
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results, nil
}

// Close shuts down the worker pool. It is safe to call more than once.
func (wp *WorkerPool) Close() {
	wp.cancel()
}
