package workstealing

import (
	"math/rand"
	"sync"
	"sync/atomic"
)

// StealRequest is the reply channel of one steal attempt. Whoever accepts
// the request sends exactly one reply: the peeled tasks, or nil.
type StealRequest chan []Task

// StealHandle is the rendezvous point between a running expansion (the
// victim) and thieves. The victim polls it between engine iterations; a
// pending request is answered by peeling unexplored work off the stack.
type StealHandle struct {
	req chan StealRequest
}

// NewStealHandle creates a handle with room for one pending request.
func NewStealHandle() *StealHandle {
	return &StealHandle{
		req: make(chan StealRequest, 1),
	}
}

// Poll answers a pending steal request, if any, with the result of peel.
// Non-blocking; called by the victim between engine iterations.
func (h *StealHandle) Poll(peel func() []Task) {
	select {
	case resp := <-h.req:
		resp <- peel()
	default:
	}
}

// SearchManager is the StackStealing policy. There is no spawn cutoff:
// every worker runs plain DFS, and work moves only when an idle worker
// sends a steal request to a random running victim.
//
// Reply discipline: a request is sent to a handle only while the victim is
// registered, and Unregister drains any request still pending, so every
// thief is guaranteed exactly one reply and never blocks past the victim's
// lifetime.
type SearchManager struct {
	mu      sync.Mutex
	handles map[int]*StealHandle
	queue   []Task

	stopped atomic.Bool
	pending atomic.Int64
	stolen  atomic.Int64
}

// Compile time check to ensure SearchManager satisfies the Policy interface.
var _ Policy = (*SearchManager)(nil)

// NewSearchManager creates an empty steal manager.
func NewSearchManager() *SearchManager {
	return &SearchManager{
		handles: make(map[int]*StealHandle),
	}
}

// Register announces a running expansion as a steal victim.
func (m *SearchManager) Register(worker int, h *StealHandle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handles[worker] = h
}

// Unregister withdraws a victim and answers any still-pending request with
// an empty reply.
func (m *SearchManager) Unregister(worker int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.handles[worker]
	if !ok {
		return
	}
	delete(m.handles, worker)
	select {
	case resp := <-h.req:
		resp <- nil
	default:
	}
}

// Stolen returns the number of tasks obtained through steals.
func (m *SearchManager) Stolen() int64 { return m.stolen.Load() }

// AddWork implements Policy. Used to seed the root task; the surplus of
// chunked steals joins the same queue from GetWork.
func (m *SearchManager) AddWork(t Task, h Hint) bool {
	if m.stopped.Load() {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, t)
	m.pending.Add(1)

	return true
}

// GetWork implements Policy. Queued work first; otherwise one steal
// attempt against a random victim.
func (m *SearchManager) GetWork(worker int) (Task, bool) {
	if t, ok := m.popQueue(); ok {
		return t, true
	}

	resp, ok := m.requestSteal(worker)
	if !ok {
		return nil, false
	}

	// The victim (or its Unregister) always replies exactly once.
	tasks := <-resp
	if len(tasks) == 0 {
		return nil, false
	}

	m.stolen.Add(int64(len(tasks)))
	if len(tasks) > 1 {
		m.mu.Lock()
		m.queue = append(m.queue, tasks[1:]...)
		m.pending.Add(int64(len(tasks) - 1))
		m.mu.Unlock()
	}

	return tasks[0], true
}

// Pending implements Policy.
func (m *SearchManager) Pending() int { return int(m.pending.Load()) }

// Stop implements Policy.
func (m *SearchManager) Stop() { m.stopped.Store(true) }

func (m *SearchManager) popQueue() (Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.queue)
	if n == 0 {
		return nil, false
	}
	t := m.queue[n-1]
	m.queue[n-1] = nil
	m.queue = m.queue[:n-1]
	m.pending.Add(-1)
	return t, true
}

// requestSteal posts a request to a random victim other than the caller.
// The send happens under the manager lock, which is what guarantees the
// victim is still registered at that point.
func (m *SearchManager) requestSteal(worker int) (StealRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.handles) == 0 {
		return nil, false
	}

	victims := make([]*StealHandle, 0, len(m.handles))
	for w, h := range m.handles {
		if w == worker {
			continue
		}
		victims = append(victims, h)
	}
	if len(victims) == 0 {
		return nil, false
	}

	h := victims[rand.Intn(len(victims))]
	resp := make(StealRequest, 1)
	select {
	case h.req <- resp:
		return resp, true
	default:
		// Another thief is already queued on this victim.
		return nil, false
	}
}
