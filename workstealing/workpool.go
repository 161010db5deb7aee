package workstealing

import (
	"math/rand"
	"sync"
	"sync/atomic"
)

// Workpool is the deque pool: every worker owns a deque, pushes and pops
// at the front (LIFO, depth-first locality) and steals from the back of a
// random victim (FIFO, big subtrees first). External work lands in a
// shared overflow deque that all workers drain.
type Workpool struct {
	deques  []*deque
	overflo *deque
	stopped atomic.Bool
	pending atomic.Int64
}

// Compile time check to ensure Workpool satisfies the Policy interface.
var _ Policy = (*Workpool)(nil)

// NewWorkpool creates a deque pool for the given worker count.
func NewWorkpool(workers int) *Workpool {
	p := &Workpool{
		deques:  make([]*deque, workers),
		overflo: &deque{},
	}
	for i := range p.deques {
		p.deques[i] = &deque{}
	}
	return p
}

// AddWork implements Policy.
func (p *Workpool) AddWork(t Task, h Hint) bool {
	if p.stopped.Load() {
		return false
	}

	if h.Owner >= 0 && h.Owner < len(p.deques) {
		p.deques[h.Owner].pushFront(t)
	} else {
		p.overflo.pushFront(t)
	}
	p.pending.Add(1)

	return true
}

// GetWork implements Policy. Owned work first, then the overflow deque,
// then a random victim.
func (p *Workpool) GetWork(worker int) (Task, bool) {
	if worker >= 0 && worker < len(p.deques) {
		if t, ok := p.deques[worker].popFront(); ok {
			p.pending.Add(-1)
			return t, true
		}
	}

	if t, ok := p.overflo.popBack(); ok {
		p.pending.Add(-1)
		return t, true
	}

	// Steal from a random victim, scanning the rest once.
	n := len(p.deques)
	if n == 0 {
		return nil, false
	}
	start := rand.Intn(n)
	for i := 0; i < n; i++ {
		v := (start + i) % n
		if v == worker {
			continue
		}
		if t, ok := p.deques[v].popBack(); ok {
			p.pending.Add(-1)
			return t, true
		}
	}

	return nil, false
}

// Pending implements Policy.
func (p *Workpool) Pending() int { return int(p.pending.Load()) }

// Stop implements Policy.
func (p *Workpool) Stop() { p.stopped.Store(true) }

// deque is a mutex-guarded double-ended task queue. Contention is expected
// and accepted; the owner touches only its own deque in the common case.
type deque struct {
	mu    sync.Mutex
	tasks []Task
}

func (d *deque) pushFront(t Task) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tasks = append(d.tasks, t)
}

func (d *deque) popFront() (Task, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := len(d.tasks)
	if n == 0 {
		return nil, false
	}
	t := d.tasks[n-1]
	d.tasks[n-1] = nil
	d.tasks = d.tasks[:n-1]
	return t, true
}

func (d *deque) popBack() (Task, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.tasks) == 0 {
		return nil, false
	}
	t := d.tasks[0]
	d.tasks[0] = nil
	d.tasks = d.tasks[1:]
	return t, true
}
