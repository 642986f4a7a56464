// Package parallel splits the outer loops of CPU kernels across goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls how a loop is split.
type Config struct {
	Enabled      bool // Whether loops may run on several goroutines.
	NumWorkers   int  // Number of goroutines to split across.
	MinChunkSize int  // Minimum iterations per goroutine.
}

// DefaultConfig returns a configuration using every CPU.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 16,
	}
}

// Sequential returns a configuration that never starts goroutines.
func Sequential() Config {
	return Config{NumWorkers: 1, MinChunkSize: 1}
}

// For calls f(i) for every i in [0, n).
//
// Iterations are split into contiguous chunks of at least MinChunkSize; f
// must be safe to call concurrently for distinct i. Small loops run on the
// calling goroutine.
func For(n int, f func(i int), cfg Config) {
	if !cfg.Enabled || cfg.NumWorkers < 2 || n < 2*cfg.MinChunkSize {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunk := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize)
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// ForBatch calls f(b, c) for every pair in [0, batch) x [0, channels).
func ForBatch(batch, channels int, f func(b, c int), cfg Config) {
	if channels == 0 {
		return
	}
	For(batch*channels, func(k int) {
		f(k/channels, k%channels)
	}, cfg)
}
