// Package workstealing provides the task pools and scheduler threads
// behind the parallel search skeletons: a deque workpool, a depth-indexed
// pool, a global priority queue, a stack-steal rendezvous manager and a
// position-index pool for path-replay tasks.
package workstealing

// Task is a unit of schedulable work. The executing worker's index is
// passed in so pools can maintain per-worker locality.
type Task func(worker int)

// Hint carries the pool-specific ordering information of a task.
// Pools read only the fields they understand.
type Hint struct {
	// Owner is the worker enqueuing the task, or External when the task
	// is seeded from outside the scheduler.
	Owner int

	// Depth is the tree depth of the task root (DepthPool).
	Depth int

	// Priority orders tasks in the PriorityPool; lower runs first.
	Priority int
}

// External marks work added from outside any worker.
const External = -1

// Policy abstracts how tasks are queued and stolen.
//
// AddWork reports false when the pool has been stopped; the task is
// discarded in that case and the caller's discard counter should be
// bumped. GetWork returns false when no work is currently available,
// which a scheduler treats as a cue to back off and retry.
type Policy interface {
	AddWork(t Task, h Hint) bool
	GetWork(worker int) (Task, bool)

	// Pending returns the number of queued tasks.
	Pending() int

	// Stop marks the pool stopped. Subsequent AddWork calls are discarded.
	Stop()
}
