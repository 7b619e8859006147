// Package parallelism implements the chunked-worker-pool idiom used
// throughout the fitting engine: split a flat array into work packages and
// bound concurrency with a semaphore, so that the per-cell reduction in a
// goroutine never needs to synchronize with any other.
package parallelism

import (
	"runtime"

	"github.com/klauspost/cpuid/v2"
)

// MinChunksPerCPU is the minimum number of work packages per logical CPU,
// small enough that a slow package doesn't stall the whole pool near the end.
const MinChunksPerCPU = 8

// Workers returns the number of logical CPUs to size a pool against. Falls
// back to runtime.NumCPU() if feature detection could not determine a count.
func Workers() int {
	if n := cpuid.CPU.LogicalCores; n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// ChunkSize picks a batch size for n elements so that there are at least
// MinChunksPerCPU*Workers() chunks (one chunk per element when n is
// smaller than that), never smaller than 1.
func ChunkSize(n int) int {
	workers := Workers()
	numBatches := MinChunksPerCPU * workers
	if numBatches < 1 {
		numBatches = 1
	}
	size := n / numBatches
	if size < 1 {
		size = 1
	}
	return size
}

// ForEachChunk runs fn once per [lower,upper) chunk of [0,n), bounding
// concurrency to Workers() goroutines in flight. It blocks until every chunk
// has completed. fn must not write outside [lower,upper).
func ForEachChunk(n int, fn func(lower, upper int)) {
	if n <= 0 {
		return
	}
	chunkSize := ChunkSize(n)
	workers := Workers()
	sem := make(chan bool, workers)
	for lower := 0; lower < n; lower += chunkSize {
		upper := lower + chunkSize
		if upper > n {
			upper = n
		}
		sem <- true
		go func(lower, upper int) {
			defer func() { <-sem }()
			fn(lower, upper)
		}(lower, upper)
	}
	for i := 0; i < cap(sem); i++ { // wait for goroutines to finish
		sem <- true
	}
}
