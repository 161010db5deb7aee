package treesearch

import (
	"math/rand"

	"github.com/hupe1980/treesearch/internal/gstack"
	"github.com/hupe1980/treesearch/workstealing"
)

// future is the completion promise of one spawned subtree task; it is
// closed once the task and, transitively, all of its own spawned children
// have finished.
type future <-chan struct{}

// engine wires one parallel skeleton together: the shared registry, the
// task pool, the scheduler and the strategy-specific spawn hook.
type engine[S, N, B, R any] struct {
	reg   *registry[S, N, B, R]
	pool  workstealing.Policy
	sched *workstealing.Scheduler

	// hook is the per-iteration spawn decision of the skeleton.
	hook func(x *expander[S, N, B, R])

	// mgr is set for StackStealing; running expansions register steal
	// handles with it.
	mgr *workstealing.SearchManager

	// priorityByDisc keys the Ordered pool by discrepancy instead of
	// depth.
	priorityByDisc bool
}

func (e *engine[S, N, B, R]) newExpander(worker, childDepth, basePrio int, seed int64) *expander[S, N, B, R] {
	x := &expander[S, N, B, R]{
		reg:        e.reg,
		stack:      gstack.New[N](e.reg.params.MaxStackDepth),
		childDepth: childDepth,
		basePrio:   basePrio,
		spawnHook:  e.hook,
		rng:        rand.New(rand.NewSource(seed)),
	}
	if e.reg.g == goalEnumeration {
		x.acc = e.reg.prob.NewEnumerator()
	}
	x.spawn = func(childDepth int, node N, prio int, seed int64) future {
		return e.createTask(worker, childDepth, node, prio, seed)
	}
	return x
}

// createTask queues a subtree as a new pool task and returns its
// completion future. A task offered to a stopped pool is discarded: its
// promise is completed immediately and the discard counter bumped.
func (e *engine[S, N, B, R]) createTask(worker, childDepth int, node N, prio int, seed int64) future {
	done := make(chan struct{})

	e.sched.TaskAdded()
	t := func(w int) {
		e.subtreeTask(w, node, childDepth, prio, seed, done)
	}

	hint := workstealing.Hint{
		Owner:    worker,
		Depth:    childDepth,
		Priority: childDepth,
	}
	if e.priorityByDisc {
		hint.Priority = prio
	}

	if !e.pool.AddWork(t, hint) {
		e.reg.met.TasksDiscarded.Add(1)
		e.sched.TaskDone()
		close(done)
		return done
	}

	e.reg.met.TasksSpawned.Add(1)
	return done
}

// subtreeTask is the body of every pool task: expand the subtree, merge
// the local accumulator, then complete the promise once every child task
// has completed (chained termination detection).
func (e *engine[S, N, B, R]) subtreeTask(worker int, node N, childDepth, prio int, seed int64, done chan struct{}) {
	x := e.newExpander(worker, childDepth, prio, seed)

	if e.mgr != nil {
		x.steal = workstealing.NewStealHandle()
		e.mgr.Register(worker, x.steal)
	}

	x.expand(node)

	if e.mgr != nil {
		e.mgr.Unregister(worker)
	}

	e.reg.mergeAccumulator(x.acc)

	futures := x.futures
	go func() {
		for _, f := range futures {
			<-f
		}
		close(done)
		e.sched.TaskDone()
	}()
}

// makeStolenTask packages a peeled child for direct hand-over to a thief,
// chaining its completion into the victim's futures.
func (e *engine[S, N, B, R]) makeStolenTask(x *expander[S, N, B, R], childDepth int, node N, prio int) workstealing.Task {
	done := make(chan struct{})

	e.sched.TaskAdded()
	e.reg.met.TasksStolen.Add(1)
	e.reg.trace(TraceSteal, childDepth, prio)
	x.futures = append(x.futures, future(done))

	seed := x.rng.Int63()
	return func(w int) {
		e.subtreeTask(w, node, childDepth, prio, seed, done)
	}
}

// peel is the victim side of StackStealing: hand over the topmost
// unexplored child or, with StealAll, every remaining sibling of the
// shallowest unfinished frame.
func (e *engine[S, N, B, R]) peel(x *expander[S, N, B, R]) []workstealing.Task {
	if x.reg.params.StealAll {
		for i := 0; i <= x.stack.Depth(); i++ {
			f := x.stack.Frame(i)
			if f.Seen >= f.Gen.NumChildren() {
				continue
			}
			childDepth := x.childDepth + i + 1
			var tasks []workstealing.Task
			for f.Seen < f.Gen.NumChildren() {
				rank := f.Seen
				child := f.Gen.Next()
				f.Seen++
				tasks = append(tasks, e.makeStolenTask(x, childDepth, child, f.Disc+rank))
			}
			return tasks
		}
		return nil
	}

	for i := x.stack.Depth(); i >= 0; i-- {
		f := x.stack.Frame(i)
		if f.Seen >= f.Gen.NumChildren() {
			continue
		}
		rank := f.Seen
		child := f.Gen.Next()
		f.Seen++
		t := e.makeStolenTask(x, x.childDepth+i+1, child, f.Disc+rank)
		return []workstealing.Task{t}
	}
	return nil
}

// Skeleton spawn hooks.

func depthBoundedHook[S, N, B, R any](x *expander[S, N, B, R]) {
	if x.depth < x.reg.params.SpawnDepth {
		x.spawnRemaining(x.stack.Depth())
	}
}

func budgetHook[S, N, B, R any](x *expander[S, N, B, R]) {
	b := x.reg.params.BacktrackBudget
	if b > 0 && x.backtracks >= b {
		x.spawnShallowest(true)
		x.backtracks = 0
	}
}

func randomHook[S, N, B, R any](x *expander[S, N, B, R]) {
	p := x.reg.params.SpawnProbability
	if p == 0 {
		return
	}
	if x.rng.Uint64()%p == 0 {
		x.spawnShallowest(false)
	}
}

func stealHook[S, N, B, R any](e *engine[S, N, B, R]) func(x *expander[S, N, B, R]) {
	return func(x *expander[S, N, B, R]) {
		x.steal.Poll(func() []workstealing.Task {
			return e.peel(x)
		})
	}
}
