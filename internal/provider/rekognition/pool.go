package rekognition

import (
	"context"
	"sync"
)

// comparePool runs the per-candidate CompareFaces calls with bounded
// concurrency. The first error wins; remaining jobs still drain so no
// goroutine leaks past the call.
type comparePool struct {
	workers int
}

func newComparePool(workers int) *comparePool {
	if workers <= 0 {
		workers = 1
	}
	return &comparePool{workers: workers}
}

// run executes fn for indexes [0,n) on at most p.workers goroutines
// and returns the first error observed.
func (p *comparePool) run(ctx context.Context, n int, fn func(i int) error) error {
	jobs := make(chan int)
	var wg sync.WaitGroup

	var mu sync.Mutex
	var firstErr error
	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}
	failed := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return firstErr != nil
	}

	workers := p.workers
	if workers > n {
		workers = n
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if failed() || ctx.Err() != nil {
					continue
				}
				if err := fn(i); err != nil {
					setErr(err)
				}
			}
		}()
	}

	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}
