package workstealing

import (
	"container/heap"
	"sync"
	"sync/atomic"
)

// PriorityPool is the single global priority queue behind the Ordered
// skeleton. Lower priority runs first; equal priorities run FIFO via a
// monotone sequence number.
type PriorityPool struct {
	mu      sync.Mutex
	heap    taskHeap
	seq     uint64
	stopped atomic.Bool
	pending atomic.Int64
}

// Compile time check to ensure PriorityPool satisfies the Policy interface.
var _ Policy = (*PriorityPool)(nil)

// NewPriorityPool creates an empty priority pool.
func NewPriorityPool() *PriorityPool {
	return &PriorityPool{}
}

// AddWork implements Policy. Hint.Priority orders the task.
func (p *PriorityPool) AddWork(t Task, h Hint) bool {
	if p.stopped.Load() {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.seq++
	heap.Push(&p.heap, &taskItem{
		task:     t,
		priority: h.Priority,
		seq:      p.seq,
	})
	p.pending.Add(1)

	return true
}

// GetWork implements Policy.
func (p *PriorityPool) GetWork(worker int) (Task, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.heap.Len() == 0 {
		return nil, false
	}
	item, _ := heap.Pop(&p.heap).(*taskItem)
	p.pending.Add(-1)
	return item.task, true
}

// Pending implements Policy.
func (p *PriorityPool) Pending() int { return int(p.pending.Load()) }

// Stop implements Policy.
func (p *PriorityPool) Stop() { p.stopped.Store(true) }

// taskItem represents an item in the priority heap.
type taskItem struct {
	task     Task
	priority int
	seq      uint64 // FIFO tie-break among equal priorities
	index    int
}

// taskHeap implements heap.Interface and holds taskItems.
type taskHeap []*taskItem

// Compile time check to ensure taskHeap satisfies the heap interface.
var _ heap.Interface = (*taskHeap)(nil)

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].seq < h[j].seq
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}

func (h *taskHeap) Push(x any) {
	item, _ := x.(*taskItem)
	item.index = len(*h)
	*h = append(*h, item)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil // Avoid memory leak
	item.index = -1
	*h = old[:n-1]
	return item
}
