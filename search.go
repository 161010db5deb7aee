package treesearch

import (
	"context"

	"github.com/hupe1980/treesearch/workstealing"
)

// Enumerate visits every node of the search tree (optionally truncated by
// Params.MaxDepth) and returns the combined Enumerator result.
func Enumerate[S, N, B, R any](ctx context.Context, space S, root N, prob Problem[S, N, B, R], params Params[B], optFns ...Option) (R, error) {
	var zero R

	reg, err := prepare(space, root, prob, params, goalEnumeration, optFns)
	if err != nil {
		return zero, err
	}
	if err := run(ctx, reg); err != nil {
		return zero, err
	}

	return reg.acc.Get(), nil
}

// Optimise searches for the node with the best objective under
// Problem.Better, seeded with Params.InitialBound. When no node beats the
// seed, the root is returned with the seed bound.
func Optimise[S, N, B, R any](ctx context.Context, space S, root N, prob Problem[S, N, B, R], params Params[B], optFns ...Option) (N, B, error) {
	reg, err := prepare(space, root, prob, params, goalOptimisation, optFns)
	if err != nil {
		var zn N
		var zb B
		return zn, zb, err
	}
	if err := run(ctx, reg); err != nil {
		var zn N
		var zb B
		return zn, zb, err
	}

	node, bound, valid := reg.incumbentResult()
	if !valid {
		return root, params.InitialBound, nil
	}
	return node, bound, nil
}

// Decide searches for any node whose objective reaches
// Params.ExpectedObjective and returns it. When no node reaches the
// threshold the root is returned with found == false.
func Decide[S, N, B, R any](ctx context.Context, space S, root N, prob Problem[S, N, B, R], params Params[B], optFns ...Option) (N, bool, error) {
	reg, err := prepare(space, root, prob, params, goalDecision, optFns)
	if err != nil {
		var zn N
		return zn, false, err
	}
	if err := run(ctx, reg); err != nil {
		var zn N
		return zn, false, err
	}

	node, _, valid := reg.incumbentResult()
	if !valid {
		return root, false, nil
	}
	return node, true, nil
}

func prepare[S, N, B, R any](space S, root N, prob Problem[S, N, B, R], params Params[B], g goal, optFns []Option) (*registry[S, N, B, R], error) {
	if prob.NewGenerator == nil {
		return nil, ErrMissingGenerator
	}
	if g != goalEnumeration && prob.Objective == nil {
		return nil, ErrMissingObjective
	}
	if (g != goalEnumeration || prob.Bound != nil) && prob.Better == nil {
		return nil, ErrMissingComparator
	}
	if g == goalEnumeration && prob.NewEnumerator == nil {
		return nil, ErrMissingEnumerator
	}
	if params.Skeleton < SkeletonSeq || params.Skeleton > SkeletonIndexed {
		return nil, ErrUnknownSkeleton
	}
	if params.Skeleton == SkeletonRandom && params.SpawnProbability == 0 {
		return nil, ErrInvalidSpawnProbability
	}

	if params.Workers < 1 {
		params.Workers = defaultWorkers()
	}
	if params.MaxStackDepth <= 0 {
		params.MaxStackDepth = DefaultMaxStackDepth
	}

	return newRegistry(space, root, prob, params, g, applyOptions(optFns)), nil
}

func run[S, N, B, R any](ctx context.Context, reg *registry[S, N, B, R]) error {
	params := reg.params
	log := reg.log.WithRun(params.Skeleton)

	// Propagate context cancellation into the cooperative stop flags.
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			reg.hardStop.Store(true)
		case <-watchDone:
		}
	}()

	switch params.Skeleton {
	case SkeletonSeq:
		runSeq(reg)

	case SkeletonIndexed:
		if err := runIndexed(ctx, reg, log); err != nil {
			return err
		}

	default:
		if err := runParallel(ctx, reg, log); err != nil {
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	return reg.failure()
}

// runSeq executes the whole search on the calling goroutine. No scheduler,
// no spawning; the reference semantics all other skeletons must match.
func runSeq[S, N, B, R any](reg *registry[S, N, B, R]) {
	e := &engine[S, N, B, R]{reg: reg}
	x := e.newExpander(workstealing.External, 0, 0, reg.params.Seed)
	x.expand(reg.root)
	reg.mergeAccumulator(x.acc)
}

func runParallel[S, N, B, R any](ctx context.Context, reg *registry[S, N, B, R], log *Logger) error {
	p := reg.params

	e := &engine[S, N, B, R]{reg: reg}
	switch p.Skeleton {
	case SkeletonDepthBounded:
		e.pool = buildPool(p.Pool, PoolDeque, p.Workers)
		e.hook = depthBoundedHook[S, N, B, R]

	case SkeletonOrdered:
		e.pool = workstealing.NewPriorityPool()
		e.hook = depthBoundedHook[S, N, B, R]
		e.priorityByDisc = p.DiscrepancyOrder

	case SkeletonBudget:
		e.pool = buildPool(p.Pool, PoolDepth, p.Workers)
		e.hook = budgetHook[S, N, B, R]

	case SkeletonRandom:
		e.pool = buildPool(p.Pool, PoolDepth, p.Workers)
		e.hook = randomHook[S, N, B, R]

	case SkeletonStackStealing:
		mgr := workstealing.NewSearchManager()
		e.pool = mgr
		e.mgr = mgr
		e.hook = stealHook(e)
	}

	e.sched = workstealing.NewScheduler(e.pool, p.Workers)
	e.sched.Start(ctx)

	log.WithWorkers(e.sched.Workers()).Debug("search started")

	rootFut := e.createTask(workstealing.External, 0, reg.root, 0, p.Seed)

	select {
	case <-rootFut:
	case <-ctx.Done():
	}

	e.sched.Stop()
	if err := e.sched.Wait(); err != nil {
		return err
	}

	// A cancelled or aborted run can leave queued tasks behind; run them
	// inline (they return immediately under the stop flags) so every
	// promise chain resolves and no waiter goroutine is orphaned.
	for {
		t, ok := e.pool.GetWork(workstealing.External)
		if !ok {
			break
		}
		t(workstealing.External)
	}

	log.Debug("search finished",
		"expands", reg.met.NodesExpanded.Load(),
		"spawns", reg.met.TasksSpawned.Load(),
		"steals", reg.met.TasksStolen.Load(),
	)

	return nil
}

func buildPool(kind PoolKind, def PoolKind, workers int) workstealing.Policy {
	if kind == PoolDefault {
		kind = def
	}
	switch kind {
	case PoolDepth:
		return workstealing.NewDepthPool()
	default:
		return workstealing.NewWorkpool(workers)
	}
}
