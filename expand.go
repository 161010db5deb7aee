package treesearch

import (
	"math/rand"

	"github.com/hupe1980/treesearch/internal/gstack"
	"github.com/hupe1980/treesearch/workstealing"
)

// action is the verdict of processNode on one child.
type action int

const (
	actContinue action = iota // descend into the child
	actPrune                  // discard the child, keep the level
	actBreak                  // abandon the whole current level
	actExit                   // decision found, unwind the task
)

// spawnFn converts a not-yet-explored subtree into a pool task and returns
// its completion future. prio is the child's discrepancy; the Ordered pool
// uses it as the priority when Params.DiscrepancyOrder is set.
type spawnFn[N any] func(childDepth int, node N, prio int, seed int64) future

// expander runs the iterative depth-first expansion of one task. It is
// single-goroutine; the only concurrent touch points are the registry and,
// for StackStealing, the steal handle polled between iterations.
type expander[S, N, B, R any] struct {
	reg   *registry[S, N, B, R]
	stack *gstack.Stack[N]

	acc     Enumerator[N, R]
	futures []future

	childDepth int
	depth      int
	basePrio   int

	spawn     spawnFn[N]
	spawnHook func(x *expander[S, N, B, R])

	rng        *rand.Rand
	backtracks int

	// steal is polled by the StackStealing hook.
	steal *workstealing.StealHandle

	err error
}

// expand runs DFS from root until the subtree is exhausted, the decision
// flag fires, or a fatal error aborts the search.
func (x *expander[S, N, B, R]) expand(root N) {
	reg := x.reg
	x.depth = x.childDepth

	gen := reg.prob.NewGenerator(reg.space, root)
	if err := x.stack.Push(root, gen, x.basePrio); err != nil {
		x.overflow()
		return
	}

	// The task root is counted here; children are counted as they are
	// produced, so every node is accumulated exactly once.
	if x.acc != nil {
		x.acc.Accumulate(root)
	}

	// A task rooted on the truncation boundary contributes its root only.
	if reg.params.MaxDepth > 0 && x.depth >= reg.params.MaxDepth {
		return
	}

	for x.stack.Depth() >= 0 {
		if reg.hardStop.Load() {
			return
		}
		if reg.g == goalDecision && reg.stopSearch.Load() {
			return
		}

		if x.spawnHook != nil {
			x.spawnHook(x)
		}

		top := x.stack.Top()
		if top.Seen >= top.Gen.NumChildren() {
			x.pop()
			continue
		}

		child := top.Gen.Next()
		childRank := top.Seen
		top.Seen++

		switch x.processNode(child) {
		case actExit:
			return
		case actPrune:
			continue
		case actBreak:
			x.pop()
			continue
		}

		childGen := reg.prob.NewGenerator(reg.space, child)
		if err := x.stack.Push(child, childGen, top.Disc+childRank); err != nil {
			x.overflow()
			return
		}
		x.depth++

		// Depth-limited truncation: the node at MaxDepth has been
		// processed above but is never expanded.
		if reg.params.MaxDepth > 0 && x.depth == reg.params.MaxDepth {
			x.pop()
		}
	}
}

// processNode applies bounding, incumbent update, the decision test and
// enumeration accounting to one child, in that order.
func (x *expander[S, N, B, R]) processNode(child N) action {
	return processNode(x.reg, x.acc, child)
}

func processNode[S, N, B, R any](reg *registry[S, N, B, R], acc Enumerator[N, R], child N) action {
	prob := &reg.prob

	reg.met.NodesExpanded.Add(1)

	if prob.Bound != nil {
		bnd := prob.Bound(reg.space, child)
		pruned := false
		if reg.g == goalDecision {
			// The subtree cannot reach the threshold.
			pruned = prob.Better(reg.params.ExpectedObjective, bnd)
		} else {
			pruned = !prob.Better(bnd, reg.bound())
		}
		if pruned {
			reg.met.NodesPruned.Add(1)
			if reg.params.PruneLevel {
				return actBreak
			}
			return actPrune
		}
	}

	switch reg.g {
	case goalOptimisation:
		obj := prob.Objective(child)
		reg.tryImprove(child, obj)

	case goalDecision:
		obj := prob.Objective(child)
		// obj >= expected under the injected comparison.
		if !prob.Better(reg.params.ExpectedObjective, obj) {
			reg.foundWitness(child, obj)
			return actExit
		}

	case goalEnumeration:
		acc.Accumulate(child)
	}

	return actContinue
}

func (x *expander[S, N, B, R]) pop() {
	x.stack.Pop()
	x.depth--
	x.backtracks++
	x.reg.met.Backtracks.Add(1)
}

func (x *expander[S, N, B, R]) overflow() {
	x.err = &ErrStackOverflow{MaxStackDepth: x.reg.params.MaxStackDepth}
	x.reg.fail(x.err)
}

// spawnRemaining converts every unexplored child of frame level into a
// task, appending the completion futures. Used by DepthBounded/Ordered on
// the top frame and by Budget/Random on the shallowest unfinished frame.
func (x *expander[S, N, B, R]) spawnRemaining(level int) {
	f := x.stack.Frame(level)
	childDepth := x.childDepth + level + 1
	for f.Seen < f.Gen.NumChildren() {
		rank := f.Seen
		child := f.Gen.Next()
		f.Seen++
		x.futures = append(x.futures, x.spawn(childDepth, child, f.Disc+rank, x.rng.Int63()))
		x.reg.trace(TraceSpawn, childDepth, rank)
	}
}

// spawnShallowest spawns the remaining siblings of the shallowest frame
// that still has unexplored children. Random keeps the top frame for
// itself; Budget hands it over too when nothing shallower is left.
func (x *expander[S, N, B, R]) spawnShallowest(includeTop bool) bool {
	limit := x.stack.Depth()
	if includeTop {
		limit++
	}
	for i := 0; i < limit; i++ {
		f := x.stack.Frame(i)
		if f.Seen < f.Gen.NumChildren() {
			x.spawnRemaining(i)
			return true
		}
	}
	return false
}
