package workstealing

import (
	"sync"
	"sync/atomic"
)

// DepthPool indexes tasks by the tree depth of their root. Work is always
// taken from the shallowest populated bucket: shallow roots carry the
// biggest subtrees, so thieves amortise their steal over more work.
// Within one bucket tasks run FIFO.
type DepthPool struct {
	mu      sync.Mutex
	buckets map[int][]Task
	minSet  []int // sorted ascending view of populated depths
	stopped atomic.Bool
	pending atomic.Int64
}

// Compile time check to ensure DepthPool satisfies the Policy interface.
var _ Policy = (*DepthPool)(nil)

// NewDepthPool creates an empty depth-indexed pool.
func NewDepthPool() *DepthPool {
	return &DepthPool{
		buckets: make(map[int][]Task),
	}
}

// AddWork implements Policy. Hint.Depth orders the task.
func (p *DepthPool) AddWork(t Task, h Hint) bool {
	if p.stopped.Load() {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	b, ok := p.buckets[h.Depth]
	if !ok {
		p.insertDepth(h.Depth)
	}
	p.buckets[h.Depth] = append(b, t)
	p.pending.Add(1)

	return true
}

// GetWork implements Policy.
func (p *DepthPool) GetWork(worker int) (Task, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.minSet) > 0 {
		d := p.minSet[0]
		b := p.buckets[d]
		if len(b) == 0 {
			delete(p.buckets, d)
			p.minSet = p.minSet[1:]
			continue
		}
		t := b[0]
		b[0] = nil
		p.buckets[d] = b[1:]
		p.pending.Add(-1)
		return t, true
	}

	return nil, false
}

// Pending implements Policy.
func (p *DepthPool) Pending() int { return int(p.pending.Load()) }

// Stop implements Policy.
func (p *DepthPool) Stop() { p.stopped.Store(true) }

// insertDepth keeps minSet sorted; called with mu held.
func (p *DepthPool) insertDepth(d int) {
	i := 0
	for i < len(p.minSet) && p.minSet[i] < d {
		i++
	}
	p.minSet = append(p.minSet, 0)
	copy(p.minSet[i+1:], p.minSet[i:])
	p.minSet[i] = d
}
