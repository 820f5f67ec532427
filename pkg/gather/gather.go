// Package gather runs N index-keyed tasks over a bounded worker pool and
// returns their results in index order, independent of completion order.
// The result slice is only released once every slot holds a terminal
// result; on any task failure the whole batch fails and partial results
// are discarded.
package gather

import (
	"context"
	"fmt"
	"sync"
)

// Task produces the result for one slot. Retries belong inside the task;
// a returned error is treated as terminal for that slot.
type Task[T any] func(ctx context.Context, index int) (T, error)

// Scatter executes task for indices 0..n-1 with at most workers running
// concurrently. On the first terminal failure the shared context is
// cancelled so queued tasks can bail out early, but Scatter still waits
// for in-flight tasks before returning.
func Scatter[T any](ctx context.Context, n, workers int, task Task[T]) ([]T, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative task count %d", n)
	}
	if n == 0 {
		return []T{}, nil
	}
	if workers <= 0 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		results  = make([]T, n)
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)

	sem := make(chan struct{}, workers)
	for i := 0; i < n; i++ {
		wg.Add(1)
		sem <- struct{}{} // Acquire semaphore

		go func(index int) {
			defer wg.Done()
			defer func() { <-sem }() // Release semaphore

			// A batch that already failed doesn't need more work
			if taskCtx.Err() != nil {
				errOnce.Do(func() {
					firstErr = fmt.Errorf("task %d skipped: %w", index, taskCtx.Err())
				})
				return
			}

			value, err := task(taskCtx, index)
			if err != nil {
				errOnce.Do(func() {
					firstErr = err
					cancel()
				})
				return
			}
			results[index] = value
		}(i)
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}
