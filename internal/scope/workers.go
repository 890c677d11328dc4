package scope

import (
	"runtime"
	"sync"
)

// forBands splits rows [0, n) into contiguous bands and runs fn on each from
// a pool of workers. It returns once every band is done. Band b always
// covers the same rows for a given (n, workers), whatever the scheduling.
func forBands(n, workers int, fn func(band, lo, hi int)) int {
	bands := bandCount(n, workers)
	if bands <= 1 {
		fn(0, 0, n)
		return 1
	}

	jobs := make(chan int, bands)
	var wg sync.WaitGroup
	for w := 0; w < bands; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for b := range jobs {
				lo, hi := bandRange(n, bands, b)
				fn(b, lo, hi)
			}
		}()
	}
	for b := 0; b < bands; b++ {
		jobs <- b
	}
	close(jobs)
	wg.Wait()
	return bands
}

func bandCount(n, workers int) int {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

func bandRange(n, bands, b int) (lo, hi int) {
	return b * n / bands, (b + 1) * n / bands
}
