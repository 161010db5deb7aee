package workstealing

import (
	"math/rand"
	"sync"
	"sync/atomic"
)

// PositionIndex is the shared claim table of one path-replay task. The
// owner walks its subtree recursively, claiming child positions from the
// front of each level; thieves claim whole positions from the back of the
// shallowest unfinished level and replay them elsewhere via Generator.Nth.
//
// The original's owner/thief split is reproduced with a two-cursor range
// per level: next advances from the front for the owner, last retreats
// from the back for thieves, and the level is exhausted when they meet.
type PositionIndex struct {
	mu      sync.Mutex
	path    []int // path of the task root, with the leading root marker
	levels  []posLevel
	futures []<-chan struct{}
}

type posLevel struct {
	next int // owner cursor (front)
	last int // thief boundary (back, exclusive)
	cur  int // position the owner is currently descended into, -1 if none
}

// NewPositionIndex creates the claim table for a task rooted at path.
func NewPositionIndex(path []int) *PositionIndex {
	p := make([]int, len(path))
	copy(p, path)
	return &PositionIndex{path: p}
}

// Path returns the task root's path.
func (pi *PositionIndex) Path() []int { return pi.path }

// PushLevel opens a new spine level with the given child count and returns
// its index.
func (pi *PositionIndex) PushLevel(numChildren int) int {
	pi.mu.Lock()
	defer pi.mu.Unlock()
	pi.levels = append(pi.levels, posLevel{next: 0, last: numChildren, cur: -1})
	return len(pi.levels) - 1
}

// PopLevel closes the deepest spine level once the owner has finished it.
func (pi *PositionIndex) PopLevel() {
	pi.mu.Lock()
	defer pi.mu.Unlock()
	pi.levels = pi.levels[:len(pi.levels)-1]
}

// NextPosition claims the next unexplored position at the given level for
// the owner, or -1 when the level is exhausted (including by thieves).
func (pi *PositionIndex) NextPosition(level int) int {
	pi.mu.Lock()
	defer pi.mu.Unlock()
	l := &pi.levels[level]
	if l.next >= l.last {
		return -1
	}
	pos := l.next
	l.next++
	return pos
}

// PruneLevel abandons all unclaimed positions at the given level.
// Positions already stolen keep running; they are not cancelled.
func (pi *PositionIndex) PruneLevel(level int) {
	pi.mu.Lock()
	defer pi.mu.Unlock()
	l := &pi.levels[level]
	l.last = l.next
}

// PreExpand records that the owner is descending into pos at level.
func (pi *PositionIndex) PreExpand(level, pos int) {
	pi.mu.Lock()
	defer pi.mu.Unlock()
	pi.levels[level].cur = pos
}

// PostExpand clears the descent marker of level.
func (pi *PositionIndex) PostExpand(level int) {
	pi.mu.Lock()
	defer pi.mu.Unlock()
	pi.levels[level].cur = -1
}

// Steal claims one position from the back of the shallowest unfinished
// level and returns the full path of the stolen child.
func (pi *PositionIndex) Steal() ([]int, bool) {
	pi.mu.Lock()
	defer pi.mu.Unlock()

	for d := range pi.levels {
		l := &pi.levels[d]
		if l.next >= l.last {
			continue
		}
		l.last--
		pos := l.last

		path := make([]int, 0, len(pi.path)+d+1)
		path = append(path, pi.path...)
		for i := 0; i < d; i++ {
			path = append(path, pi.levels[i].cur)
		}
		path = append(path, pos)
		return path, true
	}

	return nil, false
}

// AddFuture chains a stolen child's completion into this task's own.
func (pi *PositionIndex) AddFuture(f <-chan struct{}) {
	pi.mu.Lock()
	defer pi.mu.Unlock()
	pi.futures = append(pi.futures, f)
}

// Futures returns the completion channels of all children stolen from
// this task.
func (pi *PositionIndex) Futures() []<-chan struct{} {
	pi.mu.Lock()
	defer pi.mu.Unlock()
	out := make([]<-chan struct{}, len(pi.futures))
	copy(out, pi.futures)
	return out
}

// PosPool is the position-index pool behind the Indexed skeleton. Explicit
// tasks (the root) queue normally; everything else is produced on demand
// by stealing positions from registered, still-running tasks.
type PosPool struct {
	mu     sync.Mutex
	queue  []Task
	active []*PositionIndex

	// factory turns a stolen (victim, path) pair into a runnable task and
	// chains its completion into the victim. Installed by the skeleton.
	factory func(victim *PositionIndex, path []int) Task

	stopped atomic.Bool
	pending atomic.Int64
	stolen  atomic.Int64
}

// Compile time check to ensure PosPool satisfies the Policy interface.
var _ Policy = (*PosPool)(nil)

// NewPosPool creates a position-index pool with the given steal-task
// factory.
func NewPosPool(factory func(victim *PositionIndex, path []int) Task) *PosPool {
	return &PosPool{factory: factory}
}

// Register announces a running task's position index as stealable.
func (p *PosPool) Register(pi *PositionIndex) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = append(p.active, pi)
}

// Unregister withdraws a finished task's position index.
func (p *PosPool) Unregister(pi *PositionIndex) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, a := range p.active {
		if a == pi {
			p.active = append(p.active[:i], p.active[i+1:]...)
			return
		}
	}
}

// Stolen returns the number of path-replay tasks produced by steals.
func (p *PosPool) Stolen() int64 { return p.stolen.Load() }

// AddWork implements Policy.
func (p *PosPool) AddWork(t Task, h Hint) bool {
	if p.stopped.Load() {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue = append(p.queue, t)
	p.pending.Add(1)

	return true
}

// GetWork implements Policy. Queued work first, then a steal sweep over
// the active position indexes starting at a random victim.
func (p *PosPool) GetWork(worker int) (Task, bool) {
	p.mu.Lock()

	if n := len(p.queue); n > 0 {
		t := p.queue[n-1]
		p.queue[n-1] = nil
		p.queue = p.queue[:n-1]
		p.pending.Add(-1)
		p.mu.Unlock()
		return t, true
	}

	victims := make([]*PositionIndex, len(p.active))
	copy(victims, p.active)
	p.mu.Unlock()

	if len(victims) == 0 {
		return nil, false
	}
	start := rand.Intn(len(victims))
	for i := range victims {
		pi := victims[(start+i)%len(victims)]
		if path, ok := pi.Steal(); ok {
			p.stolen.Add(1)
			return p.factory(pi, path), true
		}
	}

	return nil, false
}

// Pending implements Policy.
func (p *PosPool) Pending() int { return int(p.pending.Load()) }

// Stop implements Policy.
func (p *PosPool) Stop() { p.stopped.Store(true) }
