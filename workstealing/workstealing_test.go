package workstealing

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(worker int) {}

func TestWorkpoolOwnerLIFO(t *testing.T) {
	p := NewWorkpool(2)

	var order []int
	mk := func(id int) Task {
		return func(worker int) { order = append(order, id) }
	}

	require.True(t, p.AddWork(mk(1), Hint{Owner: 0}))
	require.True(t, p.AddWork(mk(2), Hint{Owner: 0}))
	require.True(t, p.AddWork(mk(3), Hint{Owner: 0}))
	assert.Equal(t, 3, p.Pending())

	// The owner pops its most recent push first.
	for i := 0; i < 3; i++ {
		task, ok := p.GetWork(0)
		require.True(t, ok)
		task(0)
	}
	assert.Equal(t, []int{3, 2, 1}, order)
	assert.Equal(t, 0, p.Pending())

	_, ok := p.GetWork(0)
	assert.False(t, ok)
}

func TestWorkpoolThiefFIFO(t *testing.T) {
	p := NewWorkpool(2)

	var order []int
	mk := func(id int) Task {
		return func(worker int) { order = append(order, id) }
	}

	require.True(t, p.AddWork(mk(1), Hint{Owner: 0}))
	require.True(t, p.AddWork(mk(2), Hint{Owner: 0}))

	// The thief takes the oldest entry of the victim's deque.
	task, ok := p.GetWork(1)
	require.True(t, ok)
	task(1)
	assert.Equal(t, []int{1}, order)
}

func TestWorkpoolExternalWork(t *testing.T) {
	p := NewWorkpool(1)
	require.True(t, p.AddWork(noop, Hint{Owner: External}))

	_, ok := p.GetWork(0)
	assert.True(t, ok)
}

func TestWorkpoolStopDiscards(t *testing.T) {
	p := NewWorkpool(1)
	p.Stop()
	assert.False(t, p.AddWork(noop, Hint{Owner: 0}))
	assert.Equal(t, 0, p.Pending())
}

func TestDepthPoolShallowestFirst(t *testing.T) {
	p := NewDepthPool()

	var order []int
	mk := func(id int) Task {
		return func(worker int) { order = append(order, id) }
	}

	require.True(t, p.AddWork(mk(30), Hint{Depth: 3}))
	require.True(t, p.AddWork(mk(10), Hint{Depth: 1}))
	require.True(t, p.AddWork(mk(11), Hint{Depth: 1}))
	require.True(t, p.AddWork(mk(20), Hint{Depth: 2}))

	for {
		task, ok := p.GetWork(0)
		if !ok {
			break
		}
		task(0)
	}

	// Shallow depths first, FIFO within one depth.
	assert.Equal(t, []int{10, 11, 20, 30}, order)
}

func TestPriorityPoolOrdering(t *testing.T) {
	p := NewPriorityPool()

	var order []int
	mk := func(id int) Task {
		return func(worker int) { order = append(order, id) }
	}

	require.True(t, p.AddWork(mk(2), Hint{Priority: 2}))
	require.True(t, p.AddWork(mk(0), Hint{Priority: 0}))
	require.True(t, p.AddWork(mk(1), Hint{Priority: 1}))

	for {
		task, ok := p.GetWork(0)
		if !ok {
			break
		}
		task(0)
	}

	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestPriorityPoolFIFOTieBreak(t *testing.T) {
	p := NewPriorityPool()

	var order []int
	mk := func(id int) Task {
		return func(worker int) { order = append(order, id) }
	}

	for i := 0; i < 5; i++ {
		require.True(t, p.AddWork(mk(i), Hint{Priority: 7}))
	}
	for {
		task, ok := p.GetWork(0)
		if !ok {
			break
		}
		task(0)
	}

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestStealHandlePoll(t *testing.T) {
	h := NewStealHandle()

	// No request pending: peel must not run.
	h.Poll(func() []Task {
		t.Fatal("peel called without a pending request")
		return nil
	})

	resp := make(StealRequest, 1)
	h.req <- resp
	h.Poll(func() []Task { return []Task{noop} })

	tasks := <-resp
	assert.Len(t, tasks, 1)
}

func TestSearchManagerStealRoundTrip(t *testing.T) {
	m := NewSearchManager()

	h := NewStealHandle()
	m.Register(0, h)

	// Victim goroutine polls until work has been handed over.
	served := make(chan struct{})
	go func() {
		defer close(served)
		for i := 0; i < 1000; i++ {
			handed := false
			h.Poll(func() []Task {
				handed = true
				return []Task{noop, noop}
			})
			if handed {
				return
			}
			time.Sleep(time.Millisecond)
		}
	}()

	var task Task
	require.Eventually(t, func() bool {
		got, ok := m.GetWork(1)
		task = got
		return ok
	}, 5*time.Second, time.Millisecond)

	<-served
	require.NotNil(t, task)
	assert.Equal(t, int64(2), m.Stolen())

	// The surplus of the chunked steal is queued.
	_, ok := m.GetWork(1)
	assert.True(t, ok)

	m.Unregister(0)
}

func TestSearchManagerUnregisterAnswersPending(t *testing.T) {
	m := NewSearchManager()

	h := NewStealHandle()
	m.Register(0, h)

	done := make(chan struct{})
	go func() {
		defer close(done)
		// The victim never polls; Unregister must answer the request.
		_, ok := m.GetWork(1)
		assert.False(t, ok)
	}()

	// Give the thief time to post its request, then withdraw the victim.
	time.Sleep(10 * time.Millisecond)
	m.Unregister(0)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("thief was never answered")
	}
}

func TestSearchManagerNoSelfSteal(t *testing.T) {
	m := NewSearchManager()
	m.Register(0, NewStealHandle())

	_, ok := m.GetWork(0)
	assert.False(t, ok)
}

func TestPositionIndexOwnerClaims(t *testing.T) {
	pi := NewPositionIndex([]int{0})

	level := pi.PushLevel(3)
	assert.Equal(t, 0, pi.NextPosition(level))
	assert.Equal(t, 1, pi.NextPosition(level))
	assert.Equal(t, 2, pi.NextPosition(level))
	assert.Equal(t, -1, pi.NextPosition(level))
	pi.PopLevel()
}

func TestPositionIndexStealFromBack(t *testing.T) {
	pi := NewPositionIndex([]int{0})

	level := pi.PushLevel(3)
	require.Equal(t, 0, pi.NextPosition(level))
	pi.PreExpand(level, 0)

	// Thief takes the last unclaimed position of the shallowest level.
	path, ok := pi.Steal()
	require.True(t, ok)
	assert.Equal(t, []int{0, 2}, path)

	// Owner still gets position 1, then runs dry.
	assert.Equal(t, 1, pi.NextPosition(level))
	assert.Equal(t, -1, pi.NextPosition(level))
}

func TestPositionIndexStealDescendsSpine(t *testing.T) {
	pi := NewPositionIndex([]int{0})

	l0 := pi.PushLevel(1)
	require.Equal(t, 0, pi.NextPosition(l0))
	pi.PreExpand(l0, 0)

	l1 := pi.PushLevel(2)
	require.Equal(t, 0, pi.NextPosition(l1))
	pi.PreExpand(l1, 0)

	// Level 0 is exhausted; the steal lands on level 1 through the spine.
	path, ok := pi.Steal()
	require.True(t, ok)
	assert.Equal(t, []int{0, 0, 1}, path)

	_, ok = pi.Steal()
	assert.False(t, ok)
}

func TestPositionIndexPruneLevel(t *testing.T) {
	pi := NewPositionIndex([]int{0})

	level := pi.PushLevel(4)
	require.Equal(t, 0, pi.NextPosition(level))
	pi.PruneLevel(level)

	assert.Equal(t, -1, pi.NextPosition(level))
	_, ok := pi.Steal()
	assert.False(t, ok)
}

func TestPosPoolStealProducesTask(t *testing.T) {
	var built atomic.Int64
	pool := NewPosPool(func(victim *PositionIndex, path []int) Task {
		built.Add(1)
		return noop
	})

	pi := NewPositionIndex([]int{0})
	pi.PushLevel(2)
	pool.Register(pi)

	_, ok := pool.GetWork(0)
	require.True(t, ok)
	assert.Equal(t, int64(1), built.Load())
	assert.Equal(t, int64(1), pool.Stolen())

	pool.Unregister(pi)
	_, ok = pool.GetWork(0)
	assert.False(t, ok)
}

func TestSchedulerRunsTasksAndQuiesces(t *testing.T) {
	pool := NewWorkpool(2)
	s := NewScheduler(pool, 2)

	var ran atomic.Int64
	for i := 0; i < 16; i++ {
		s.TaskAdded()
		require.True(t, pool.AddWork(func(worker int) {
			ran.Add(1)
			s.TaskDone()
		}, Hint{Owner: External}))
	}

	s.Start(context.Background())

	require.Eventually(t, func() bool {
		return ran.Load() == 16 && s.Quiescent()
	}, 5*time.Second, time.Millisecond)

	s.Stop()
	require.NoError(t, s.Wait())
}

func TestSchedulerStopWithoutWork(t *testing.T) {
	pool := NewWorkpool(1)
	s := NewScheduler(pool, 1)
	s.Start(context.Background())

	time.Sleep(5 * time.Millisecond)
	s.Stop()
	require.NoError(t, s.Wait())
	assert.True(t, s.Quiescent())
}

func TestSchedulerOutstandingAccounting(t *testing.T) {
	pool := NewWorkpool(1)
	s := NewScheduler(pool, 1)

	s.TaskAdded()
	assert.False(t, s.Quiescent())
	s.TaskDone()
	assert.True(t, s.Quiescent())
}
