// Package pools provides the fixed-size worker pool that executes
// connection jobs.
package pools

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Task is one unit of work: the full lifecycle of one accepted connection.
type Task func()

const (
	// DefaultWorkers is the worker count used when none is configured.
	DefaultWorkers = 8

	// DefaultQueueDepth bounds the shared task queue. The queue capacity is
	// an explicit knob rather than an implicit infinite buffer; a full queue
	// makes Execute block until a worker frees space.
	DefaultQueueDepth = 1024
)

// Pool is a fixed set of workers draining one shared task queue. The pool is
// created once and owns its workers until Close.
type Pool struct {
	tasks   chan Task
	workers []*worker
	wg      sync.WaitGroup
	closed  atomic.Bool

	stats struct {
		submitted atomic.Uint64
		completed atomic.Uint64
		panics    atomic.Uint64
	}
}

// worker is one pool thread with a stable identity.
type worker struct {
	id   int
	pool *Pool
}

// New creates a pool of the given worker count and queue depth and starts
// all workers. Non-positive arguments fall back to the defaults.
func New(workers, queueDepth int) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if queueDepth <= 0 {
		queueDepth = DefaultQueueDepth
	}

	p := &Pool{
		tasks:   make(chan Task, queueDepth),
		workers: make([]*worker, workers),
	}
	for i := range p.workers {
		w := &worker{id: i, pool: p}
		p.workers[i] = w
		p.wg.Add(1)
		go w.run()
	}
	return p
}

// Execute enqueues a task and returns without waiting for it to run. There
// is no success or failure signal. The call blocks only while the queue is
// full; after Close it is a no-op.
func (p *Pool) Execute(task Task) {
	if task == nil || p.closed.Load() {
		return
	}
	p.stats.submitted.Add(1)
	p.tasks <- task
}

// run is the worker loop: receive, run to completion, repeat. Each worker is
// pinned to an OS thread for the lifetime of the pool.
func (w *worker) run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer w.pool.wg.Done()

	for task := range w.pool.tasks {
		w.runTask(task)
	}
}

// runTask isolates a panicking task from its worker: the worker recovers and
// keeps serving subsequent tasks.
func (w *worker) runTask(task Task) {
	defer func() {
		if r := recover(); r != nil {
			w.pool.stats.panics.Add(1)
		}
		w.pool.stats.completed.Add(1)
	}()
	task()
}

// Close shuts the pool down: the sending side of the queue is closed so
// blocked workers wake, every already-enqueued task is run to completion,
// and all workers are joined before Close returns. Close is idempotent.
func (p *Pool) Close() {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}
	close(p.tasks)
	p.wg.Wait()
}

// Stats is a snapshot of pool counters.
type Stats struct {
	Workers   int
	Submitted uint64
	Completed uint64
	Panics    uint64
}

// Stats returns the current pool counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Workers:   len(p.workers),
		Submitted: p.stats.submitted.Load(),
		Completed: p.stats.completed.Load(),
		Panics:    p.stats.panics.Load(),
	}
}
