package utils

import (
	"context"
	"sync"
)

// ParallelForEach calls fn for every item using at most workers goroutines.
// The returned slice is indexed like items; items never started because ctx
// was cancelled get ctx.Err().
func ParallelForEach[T any](ctx context.Context, items []T, workers int, fn func(ctx context.Context, index int, item T) error) []error {
	if workers <= 0 {
		workers = 1
	}
	if workers > len(items) {
		workers = len(items)
	}

	errs := make([]error, len(items))
	started := make([]bool, len(items))
	taskChan := make(chan int, len(items))
	var wg sync.WaitGroup

	// Start workers
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case idx, ok := <-taskChan:
					if !ok {
						return
					}
					// Each index is owned by exactly one worker
					started[idx] = true
					errs[idx] = fn(ctx, idx, items[idx])
				}
			}
		}()
	}

	// Submit tasks
	for i := range items {
		select {
		case <-ctx.Done():
		case taskChan <- i:
			continue
		}
		break
	}

	close(taskChan)
	wg.Wait()

	if ctx.Err() != nil {
		for i := range items {
			if !started[i] {
				errs[i] = ctx.Err()
			}
		}
	}

	return errs
}
