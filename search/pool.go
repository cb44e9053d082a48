package search

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// Task is a unit of work submitted to a WorkerPool. A task never returns a
// value to its scheduler; results are written back through whatever
// shared structure the caller closed over (see NodeCalculator.expandLayer).
type Task func()

// ErrInterrupted is delivered to ScheduleAndWait's caller when its task is
// dropped, still queued and not yet started, by an InterruptAndClear
// rather than actually run.
var ErrInterrupted = errors.New("tetris-ai: task dropped by pool interrupt")

// queuedTask pairs a task with what to do if it never gets to run: onDrop,
// when non-nil, is called instead of run whenever InterruptAndClear wipes
// it off a worker's queue still pending, so a caller blocked on the task's
// completion (ScheduleAndWait) is not left waiting forever.
type queuedTask struct {
	run    Task
	onDrop func()
}

// worker owns one FIFO task queue, guarded by its own mutex and condition
// variable, matching a fixed set of worker threads each with its own
// queue rather than a single shared channel.
type worker struct {
	mu        sync.Mutex
	cond      *sync.Cond
	queue     []queuedTask
	interrupt bool
	stopped   bool
}

func newWorker() *worker {
	w := &worker{}
	w.cond = sync.NewCond(&w.mu)
	return w
}

func (w *worker) run(pool *WorkerPool) {
	for {
		w.mu.Lock()
		for len(w.queue) == 0 && !w.interrupt && !w.stopped {
			w.cond.Wait()
		}
		if w.stopped || w.interrupt {
			dropped := w.queue
			w.queue = nil
			stopping := w.stopped
			w.interrupt = false
			w.mu.Unlock()
			// Each dropped task was counted at Schedule time and never runs,
			// so its wg/inFlight accounting must be settled here instead of
			// inside the task-execution closure below, and anything waiting
			// on its completion (ScheduleAndWait) must be told it was
			// cancelled rather than left blocked on a result that will
			// never arrive. A worker being torn down by Resize can carry
			// both flags at once, so this drains the queue either way
			// before deciding whether to exit.
			for _, qt := range dropped {
				pool.wg.Done()
				pool.inFlight.Add(-1)
				if qt.onDrop != nil {
					qt.onDrop()
				}
			}
			if stopping {
				return
			}
			continue
		}
		task := w.queue[0]
		w.queue = w.queue[1:]
		w.mu.Unlock()

		func() {
			defer pool.wg.Done()
			defer pool.inFlight.Add(-1)
			defer pool.completed.Add(1)
			task.run()
		}()
	}
}

func (w *worker) schedule(qt queuedTask) {
	w.mu.Lock()
	w.queue = append(w.queue, qt)
	w.mu.Unlock()
	w.cond.Signal()
}

func (w *worker) interruptAndClear() {
	w.mu.Lock()
	w.interrupt = true
	w.mu.Unlock()
	w.cond.Signal()
}

func (w *worker) stop() {
	w.mu.Lock()
	w.stopped = true
	w.mu.Unlock()
	w.cond.Signal()
}

// WorkerPool is a fixed set of worker goroutines, each with its own FIFO
// queue, that Schedule round-robins tasks across. Interrupt is
// cooperative: InterruptAndClear only drops queued-but-not-yet-started
// tasks and asks running tasks to notice a polled flag and wind down; it
// does not forcibly kill a goroutine mid-task.
type WorkerPool struct {
	mu      sync.Mutex
	workers []*worker
	next    int

	wg       sync.WaitGroup
	inFlight atomic.Int32

	cancelFlag atomic.Bool
	completed  atomic.Int64

	throughputDone chan struct{}
}

// NewWorkerPool starts n worker goroutines immediately.
func NewWorkerPool(n int) *WorkerPool {
	p := &WorkerPool{}
	p.Resize(n)
	return p
}

// Size returns the current number of live workers.
func (p *WorkerPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.workers)
}

// Resize grows or shrinks the pool to n workers. Shrinking interrupts and
// stops the workers being removed; their queued tasks are dropped.
func (p *WorkerPool) Resize(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for len(p.workers) < n {
		w := newWorker()
		p.workers = append(p.workers, w)
		go w.run(p)
	}
	for len(p.workers) > n {
		last := p.workers[len(p.workers)-1]
		p.workers = p.workers[:len(p.workers)-1]
		last.interruptAndClear()
		last.stop()
	}
}

// Schedule round-robins t across the pool's workers. If t is still queued,
// not yet started, when the pool is interrupted, it is dropped silently —
// callers that need to observe that outcome should use ScheduleAndWait
// instead.
func (p *WorkerPool) Schedule(t Task) {
	p.scheduleTask(queuedTask{run: t})
}

func (p *WorkerPool) scheduleTask(qt queuedTask) {
	p.mu.Lock()
	if len(p.workers) == 0 {
		p.mu.Unlock()
		return
	}
	w := p.workers[p.next%len(p.workers)]
	p.next++
	p.mu.Unlock()

	p.wg.Add(1)
	p.inFlight.Add(1)
	w.schedule(qt)
}

// Wait blocks until every scheduled task has run to completion. Unlike
// InterruptAndClear, Wait drains rather than cancels.
func (p *WorkerPool) Wait() {
	p.wg.Wait()
}

// InterruptAndClear sets every worker's interrupt flag, dropping queued
// tasks; tasks already running are expected to poll ShouldInterrupt and
// wind down cooperatively. InterruptAndClear does not block for running
// tasks to finish — call Wait afterward if that is required.
func (p *WorkerPool) InterruptAndClear() {
	p.cancelFlag.Store(true)
	p.mu.Lock()
	workers := append([]*worker(nil), p.workers...)
	p.mu.Unlock()
	for _, w := range workers {
		w.interruptAndClear()
	}
}

// ResetInterrupt clears the cooperative-cancellation flag so the pool can
// be reused by a subsequent search.
func (p *WorkerPool) ResetInterrupt() {
	p.cancelFlag.Store(false)
}

// ShouldInterrupt is polled by long-running tasks (piece/column
// enumeration loops) at well-defined points to cooperatively wind down.
func (p *WorkerPool) ShouldInterrupt() bool {
	return p.cancelFlag.Load()
}

// StartThroughputLogging begins emitting a debug-level "tasks-per-second"
// log line once per interval, mirroring negamax.Solver's nodes-per-second
// ticker. Call StopThroughputLogging to stop it; calling
// StartThroughputLogging again while one is already running is a no-op.
func (p *WorkerPool) StartThroughputLogging(interval time.Duration) {
	p.mu.Lock()
	if p.throughputDone != nil {
		p.mu.Unlock()
		return
	}
	done := make(chan struct{})
	p.throughputDone = done
	p.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		var last int64
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				completed := p.completed.Load()
				log.Debug().Int64("tasks_per_second", completed-last).Msg("worker-pool-throughput")
				last = completed
			}
		}
	}()
}

// StopThroughputLogging stops a running throughput ticker; it is a no-op
// if none is running.
func (p *WorkerPool) StopThroughputLogging() {
	p.mu.Lock()
	done := p.throughputDone
	p.throughputDone = nil
	p.mu.Unlock()
	if done != nil {
		close(done)
	}
}

// ScheduleAndWait schedules fn onto the pool and blocks until it either
// completes or is dropped, still queued, by an InterruptAndClear — in
// which case it returns ErrInterrupted rather than hanging forever. A
// panic inside fn is recovered and reported as an error rather than
// killing the worker goroutine, so one bad task cannot silently stop the
// pool from draining. This is the primitive NodeCalculator's
// errgroup-based layer barrier builds on: the pool still owns the actual
// worker goroutines and their FIFO queues, errgroup only supplies the
// per-layer wait-and-collect-first-error semantics.
func (p *WorkerPool) ScheduleAndWait(fn func() error) error {
	done := make(chan error, 1)
	p.scheduleTask(queuedTask{
		run: func() {
			defer func() {
				if r := recover(); r != nil {
					done <- fmt.Errorf("tetris-ai: worker panic: %v", r)
				}
			}()
			done <- fn()
		},
		onDrop: func() { done <- ErrInterrupted },
	})
	return <-done
}
