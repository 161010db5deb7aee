package workstealing

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// maxOutstanding bounds the tasks a search may have in flight at once.
// It only needs to exceed any realistic task count; the semaphore exists
// for termination detection, not throttling.
const maxOutstanding = 1 << 30

// Scheduler runs a fixed set of worker goroutines against one Policy.
// Idle workers back off through a shared rate limiter instead of spinning
// on the pool lock.
//
// Outstanding-task accounting distinguishes "pool empty, work pending"
// from "pool empty, all done": TaskAdded acquires one unit of a weighted
// semaphore, TaskDone releases it, and Quiescent probes for full capacity.
type Scheduler struct {
	pool    Policy
	workers int

	limiter *rate.Limiter
	sem     *semaphore.Weighted

	stop   atomic.Bool
	active atomic.Int64

	g      *errgroup.Group
	cancel context.CancelFunc
}

// NewScheduler creates a scheduler with the given worker count.
func NewScheduler(pool Policy, workers int) *Scheduler {
	if workers < 1 {
		workers = 1
	}
	return &Scheduler{
		pool:    pool,
		workers: workers,
		// Idle polls per second across all workers. High enough that a
		// refill never delays real work noticeably, low enough that idle
		// workers do not hammer the pool mutex.
		limiter: rate.NewLimiter(rate.Every(50*time.Microsecond), workers),
		sem:     semaphore.NewWeighted(maxOutstanding),
	}
}

// Workers returns the scheduler's worker count.
func (s *Scheduler) Workers() int { return s.workers }

// Start launches the worker goroutines.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.g, ctx = errgroup.WithContext(ctx)
	for i := 0; i < s.workers; i++ {
		worker := i
		s.g.Go(func() error {
			return s.run(ctx, worker)
		})
	}
}

// Stop signals workers to exit and stops the pool. Queued tasks are left
// behind; AddWork after Stop is discarded by the pool.
func (s *Scheduler) Stop() {
	s.stop.Store(true)
	s.pool.Stop()
	if s.cancel != nil {
		s.cancel()
	}
}

// Wait blocks until every worker goroutine has returned.
func (s *Scheduler) Wait() error {
	if s.g == nil {
		return nil
	}
	return s.g.Wait()
}

// TaskAdded accounts for a task entering the system. It must be paired
// with TaskDone once the task and all work it chained have completed.
func (s *Scheduler) TaskAdded() {
	// Never blocks in practice; see maxOutstanding.
	_ = s.sem.Acquire(context.Background(), 1)
}

// TaskDone releases the unit acquired by TaskAdded.
func (s *Scheduler) TaskDone() {
	s.sem.Release(1)
}

// Quiescent reports whether no task is queued, running or awaiting its
// children.
func (s *Scheduler) Quiescent() bool {
	if s.active.Load() != 0 || s.pool.Pending() != 0 {
		return false
	}
	if !s.sem.TryAcquire(maxOutstanding) {
		return false
	}
	s.sem.Release(maxOutstanding)
	return true
}

func (s *Scheduler) run(ctx context.Context, worker int) error {
	for {
		if s.stop.Load() {
			return nil
		}

		if t, ok := s.pool.GetWork(worker); ok {
			s.active.Add(1)
			t(worker)
			s.active.Add(-1)
			continue
		}

		// Pool empty: bounded back-off, interrupted by Stop.
		if err := s.limiter.Wait(ctx); err != nil {
			return nil
		}
	}
}
