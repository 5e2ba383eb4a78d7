// Copyright 2025 The go-pstl Authors. SPDX-License-Identifier: Apache-2.0

// Package workerpool provides the persistent worker pool behind the host-parallel
// backends. A Pool is created once and reused by every algorithm call, so a call
// costs a few channel sends instead of spawning goroutines.
//
// Every ParallelFor variant is fork-join: it returns only after all of its work
// items have finished, and a panic raised by fn on a worker is re-raised on the
// calling goroutine. No work of a call is left running after it returns.
//
// Usage:
//
//	pool := workerpool.New(runtime.GOMAXPROCS(0))
//	defer pool.Close()
//
//	pool.ParallelFor(n, func(start, end int) {
//	    process(data[start:end])
//	})
//
// fn must not call back into the same pool; a nested call can deadlock once all
// workers are blocked waiting on it.
package workerpool

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/sourcegraph/conc/panics"
)

// Pool is a persistent worker pool that can be reused across many parallel
// operations. Workers are spawned once at creation and reused.
type Pool struct {
	numWorkers int
	workC      chan workItem
	closeOnce  sync.Once
	closed     atomic.Bool
	inFlight   atomic.Int64
}

// workItem represents a single unit of a parallel operation.
type workItem struct {
	fn      func()
	barrier *sync.WaitGroup
	catcher *panics.Catcher
}

// New creates a new worker pool with the specified number of workers.
// Workers are spawned immediately and persist until Close is called.
// If numWorkers <= 0, uses GOMAXPROCS.
func New(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		numWorkers: numWorkers,
		// Buffer enough for all workers to have pending work
		workC: make(chan workItem, numWorkers*2),
	}

	for range numWorkers {
		go p.worker()
	}

	return p
}

var (
	defaultOnce sync.Once
	defaultPool *Pool
)

// Default returns the process-wide pool, created with size workers on first use.
// The default pool is never closed.
func Default(size int) *Pool {
	defaultOnce.Do(func() {
		defaultPool = New(size)
	})
	return defaultPool
}

// worker is the main loop for each persistent worker goroutine.
func (p *Pool) worker() {
	for item := range p.workC {
		item.catcher.Try(item.fn)
		p.inFlight.Add(-1)
		item.barrier.Done()
	}
}

// NumWorkers returns the number of workers in the pool.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// InFlight returns the number of submitted work items that have not finished.
// It is zero whenever no ParallelFor call is in progress.
func (p *Pool) InFlight() int {
	return int(p.inFlight.Load())
}

// Close shuts down the worker pool. All pending work will complete.
// Calling Close multiple times is safe.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.workC)
	})
}

// submit queues fn as one work item of the call tracked by wg and pc.
func (p *Pool) submit(fn func(), wg *sync.WaitGroup, pc *panics.Catcher) {
	p.inFlight.Add(1)
	p.workC <- workItem{fn: fn, barrier: wg, catcher: pc}
}

// ParallelFor executes fn for each index in [0, n) using the worker pool.
// Each worker processes a contiguous range of indices.
// Blocks until all work completes.
//
// fn receives (start, end) indices where work should process [start, end).
func (p *Pool) ParallelFor(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}

	if p.closed.Load() {
		// Fallback to sequential if pool is closed
		fn(0, n)
		return
	}

	// Don't use more workers than items
	workers := min(p.numWorkers, n)

	if workers == 1 {
		fn(0, n)
		return
	}

	// Calculate chunk size (ensure all items are covered)
	chunkSize := (n + workers - 1) / workers

	var (
		wg sync.WaitGroup
		pc panics.Catcher
	)
	for i := range workers {
		start := i * chunkSize
		if start >= n {
			break
		}
		end := min(start+chunkSize, n)
		wg.Add(1)
		p.submit(func() { fn(start, end) }, &wg, &pc)
	}

	wg.Wait()
	pc.Repanic()
}

// ParallelForAtomic executes fn for each index in [0, n) using atomic work
// stealing. This provides better load balancing when work per item varies.
// Blocks until all work completes.
//
// fn receives the index to process.
func (p *Pool) ParallelForAtomic(n int, fn func(i int)) {
	if n <= 0 {
		return
	}

	workers := min(p.numWorkers, n)

	if p.closed.Load() || workers == 1 {
		for i := range n {
			fn(i)
		}
		return
	}

	var (
		nextIdx atomic.Int64
		wg      sync.WaitGroup
		pc      panics.Catcher
	)
	wg.Add(workers)
	for range workers {
		p.submit(func() {
			for {
				idx := int(nextIdx.Add(1)) - 1
				if idx >= n {
					return
				}
				fn(idx)
			}
		}, &wg, &pc)
	}

	wg.Wait()
	pc.Repanic()
}

// ParallelForAtomicBatched executes fn for batches of indices using atomic
// work stealing. Combines the load balancing of atomic distribution with
// reduced atomic operation overhead by processing multiple items per grab.
//
// fn receives (start, end) indices where work should process [start, end).
// batchSize controls how many items are grabbed per atomic operation.
func (p *Pool) ParallelForAtomicBatched(n int, batchSize int, fn func(start, end int)) {
	if n <= 0 {
		return
	}

	if batchSize <= 0 {
		batchSize = 1
	}

	if p.closed.Load() {
		fn(0, n)
		return
	}

	numBatches := (n + batchSize - 1) / batchSize
	workers := min(p.numWorkers, numBatches)

	if workers == 1 {
		fn(0, n)
		return
	}

	var (
		nextBatch atomic.Int64
		wg        sync.WaitGroup
		pc        panics.Catcher
	)
	wg.Add(workers)
	for range workers {
		p.submit(func() {
			for {
				batch := int(nextBatch.Add(1)) - 1
				start := batch * batchSize
				if start >= n {
					return
				}
				fn(start, min(start+batchSize, n))
			}
		}, &wg, &pc)
	}

	wg.Wait()
	pc.Repanic()
}
