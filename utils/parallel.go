package utils

import (
	"sync"
)

// Fans a flat index space out over a bounded number of goroutines, each
// receiving one contiguous [start, end) chunk. Blocks until every chunk
// has completed. Callers that write shared state across chunk boundaries
// must use atomics.
func ParallelFor(n int, width int, f func(start int, end int)) {
	if n <= 0 {
		return
	}
	if width > n {
		width = n
	}
	if width <= 1 {
		f(0, n)
		return
	}
	chunk := (n + width - 1) / width
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := Min(start+chunk, n)
		wg.Add(1)
		go func(s, e int) {
			f(s, e)
			wg.Done()
		}(start, end)
	}
	wg.Wait()
}
