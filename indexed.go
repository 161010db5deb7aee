package treesearch

import (
	"context"

	"github.com/hupe1980/treesearch/workstealing"
)

// indexedEngine drives the path-replay skeleton. Tasks carry child-index
// paths from the true root instead of node state; a task rebuilds its
// start node through Generator.Nth replay, which keeps stolen work cheap
// to ship across address spaces.
type indexedEngine[S, N, B, R any] struct {
	reg   *registry[S, N, B, R]
	pool  *workstealing.PosPool
	sched *workstealing.Scheduler
}

func runIndexed[S, N, B, R any](ctx context.Context, reg *registry[S, N, B, R], log *Logger) error {
	e := &indexedEngine[S, N, B, R]{reg: reg}

	e.pool = workstealing.NewPosPool(func(victim *workstealing.PositionIndex, path []int) workstealing.Task {
		return e.stealTask(victim, path)
	})
	e.sched = workstealing.NewScheduler(e.pool, reg.params.Workers)
	e.sched.Start(ctx)

	log.WithWorkers(e.sched.Workers()).Debug("search started")

	rootFut := e.rootTask()

	select {
	case <-rootFut:
	case <-ctx.Done():
	}

	e.sched.Stop()
	if err := e.sched.Wait(); err != nil {
		return err
	}

	// Resolve any promise chains left behind by a cancelled run.
	for {
		t, ok := e.pool.GetWork(workstealing.External)
		if !ok {
			break
		}
		t(workstealing.External)
	}

	log.Debug("search finished",
		"expands", reg.met.NodesExpanded.Load(),
		"steals", reg.met.TasksStolen.Load(),
	)

	return nil
}

// rootTask seeds the search with the path of the true root. Paths carry a
// leading root marker, stripped during replay.
func (e *indexedEngine[S, N, B, R]) rootTask() future {
	done := make(chan struct{})

	e.sched.TaskAdded()
	pi := workstealing.NewPositionIndex([]int{0})
	t := func(worker int) {
		e.runTask(pi, done)
	}

	e.reg.met.TasksSpawned.Add(1)
	if !e.pool.AddWork(t, workstealing.Hint{Owner: workstealing.External}) {
		e.reg.met.TasksDiscarded.Add(1)
		e.sched.TaskDone()
		close(done)
	}

	return done
}

// stealTask packages a stolen path as a new task, chaining its completion
// into the victim's futures.
func (e *indexedEngine[S, N, B, R]) stealTask(victim *workstealing.PositionIndex, path []int) workstealing.Task {
	done := make(chan struct{})

	e.sched.TaskAdded()
	victim.AddFuture(done)
	e.reg.met.TasksStolen.Add(1)
	e.reg.trace(TraceSteal, len(path)-1, path[len(path)-1])

	pi := workstealing.NewPositionIndex(path)
	return func(worker int) {
		e.runTask(pi, done)
	}
}

func (e *indexedEngine[S, N, B, R]) runTask(pi *workstealing.PositionIndex, done chan struct{}) {
	reg := e.reg

	node := e.startingNode(pi.Path())
	depth := len(pi.Path()) - 1

	var acc Enumerator[N, R]
	if reg.g == goalEnumeration {
		acc = reg.prob.NewEnumerator()
		acc.Accumulate(node)
	}

	e.pool.Register(pi)
	e.expandIndexed(pi, node, depth, acc)
	e.pool.Unregister(pi)

	reg.mergeAccumulator(acc)

	go func() {
		for _, f := range pi.Futures() {
			<-f
		}
		close(done)
		e.sched.TaskDone()
	}()
}

// startingNode replays a child-index path from the true root via Nth.
func (e *indexedEngine[S, N, B, R]) startingNode(path []int) N {
	reg := e.reg

	node := reg.root
	for _, p := range path[1:] {
		gen := reg.prob.NewGenerator(reg.space, node)
		node = gen.Nth(p)
	}

	return node
}

// expandIndexed is the recursive expansion of the original indexed search:
// the owner claims child positions from the position index, so that
// thieves can peel untouched positions concurrently.
func (e *indexedEngine[S, N, B, R]) expandIndexed(pi *workstealing.PositionIndex, node N, depth int, acc Enumerator[N, R]) {
	reg := e.reg

	// A stolen task rooted on the truncation boundary contributes its
	// root only.
	if reg.params.MaxDepth > 0 && depth >= reg.params.MaxDepth {
		return
	}

	gen := reg.prob.NewGenerator(reg.space, node)
	level := pi.PushLevel(gen.NumChildren())
	defer pi.PopLevel()

	i := 0 // next position the sequential generator will deliver
	for {
		if reg.hardStop.Load() {
			return
		}
		if reg.g == goalDecision && reg.stopSearch.Load() {
			return
		}

		pos := pi.NextPosition(level)
		if pos < 0 {
			return
		}

		// Fast-forward the generator over stolen positions.
		var child N
		for ; i <= pos; i++ {
			child = gen.Next()
		}

		switch processNode(reg, acc, child) {
		case actExit:
			return
		case actPrune:
			continue
		case actBreak:
			// Already-stolen siblings keep running; see DESIGN.md.
			pi.PruneLevel(level)
			return
		}

		if reg.params.MaxDepth > 0 && depth+1 == reg.params.MaxDepth {
			continue
		}

		pi.PreExpand(level, pos)
		e.expandIndexed(pi, child, depth+1, acc)
		pi.PostExpand(level)
	}
}
