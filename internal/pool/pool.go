package pool

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"sync"
)

// Task is an argument-free unit of asynchronous work producing a result
// of type R or failing with an error.
//
// Tasks receive the context passed to [Run] for cancellation; they carry
// no other input. Tasks must not share mutable state with each other.
type Task[R any] func(ctx context.Context) (R, error)

// Run executes tasks pulled from the sequence with at most limit in flight,
// returning their results in submission order.
//
// The sequence is consumed lazily: the next task is pulled only when a
// worker becomes free, so producers may generate tasks incrementally
// without buffering them all up front. Results are index-aligned with the
// order tasks were produced, regardless of completion order.
//
// If any task fails, Run stops pulling from the sequence and returns the
// first failure it observes. Tasks already in flight run to completion,
// but their results are discarded. An empty sequence returns a nil slice
// and nil error immediately. A limit of 1 executes tasks strictly
// sequentially; a limit larger than the total task count behaves as full
// concurrency.
//
// Returns an error without running anything if limit is less than 1.
func Run[R any](ctx context.Context, tasks iter.Seq[Task[R]], limit int) ([]R, error) {
	if limit < 1 {
		return nil, fmt.Errorf("pool: concurrency must be at least 1, got %d", limit)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	type job struct {
		index int
		run   Task[R]
	}
	type outcome struct {
		index int
		value R
		err   error
	}

	// jobs is unbuffered so the dispatcher blocks until a worker is free;
	// that blocking send is what makes the producer pull-on-demand.
	jobs := make(chan job)
	outcomes := make(chan outcome)
	stop := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < limit; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				v, err := j.run(ctx)
				select {
				case outcomes <- outcome{index: j.index, value: v, err: err}:
				case <-stop:
					// collector already returned; discard the result
					return
				}
			}
		}()
	}

	// dispatcher assigns submission indices and feeds workers on demand
	go func() {
		defer close(jobs)
		index := 0
		for t := range tasks {
			select {
			case jobs <- job{index: index, run: t}:
				index++
			case <-stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	var results []R
	for out := range outcomes {
		if out.err != nil {
			// first failure wins; siblings finish but are discarded
			close(stop)
			return nil, out.err
		}
		if out.index >= len(results) {
			results = append(results, make([]R, out.index+1-len(results))...)
		}
		results[out.index] = out.value
	}
	close(stop)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Collect runs a fixed slice of tasks through [Run].
//
// Convenience for callers that already hold all tasks in memory and do
// not need lazy production.
func Collect[R any](ctx context.Context, tasks []Task[R], limit int) ([]R, error) {
	return Run(ctx, slices.Values(tasks), limit)
}
