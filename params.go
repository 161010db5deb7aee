package treesearch

import "runtime"

// Skeleton selects the spawning strategy used by a search.
type Skeleton int

const (
	// SkeletonSeq runs the whole search on the calling goroutine.
	SkeletonSeq Skeleton = iota

	// SkeletonDepthBounded spawns all children encountered above
	// Params.SpawnDepth as independent tasks.
	SkeletonDepthBounded

	// SkeletonStackStealing lets idle workers steal unexplored siblings
	// directly from a running worker's stack.
	SkeletonStackStealing

	// SkeletonOrdered spawns like SkeletonDepthBounded but executes pending
	// tasks in priority order (depth, or discrepancy with
	// Params.DiscrepancyOrder).
	SkeletonOrdered

	// SkeletonBudget spawns the shallowest pending siblings each time the
	// backtrack counter reaches Params.BacktrackBudget.
	SkeletonBudget

	// SkeletonRandom spawns the shallowest pending siblings with
	// probability 1/Params.SpawnProbability per engine iteration.
	SkeletonRandom

	// SkeletonIndexed ships child-index paths instead of nodes; stolen
	// tasks rebuild their start node via Generator.Nth replay.
	SkeletonIndexed
)

// String implements fmt.Stringer.
func (s Skeleton) String() string {
	switch s {
	case SkeletonSeq:
		return "seq"
	case SkeletonDepthBounded:
		return "depthbounded"
	case SkeletonStackStealing:
		return "stacksteal"
	case SkeletonOrdered:
		return "ordered"
	case SkeletonBudget:
		return "budget"
	case SkeletonRandom:
		return "random"
	case SkeletonIndexed:
		return "indexed"
	default:
		return "unknown"
	}
}

// PoolKind overrides the task-pool variant backing a parallel skeleton.
type PoolKind int

const (
	// PoolDefault lets the skeleton pick its pool: deque for DepthBounded
	// and depth-indexed for Budget and Random.
	PoolDefault PoolKind = iota

	// PoolDeque is the owner-LIFO / thief-FIFO deque workpool.
	PoolDeque

	// PoolDepth is the depth-indexed pool; thieves prefer shallow entries.
	PoolDepth
)

// DefaultMaxStackDepth bounds the expansion stack unless overridden.
const DefaultMaxStackDepth = 5000

// Params carries the tunables of one search. The zero value is not usable;
// start from DefaultParams.
type Params[B any] struct {
	// Skeleton selects the spawning strategy.
	Skeleton Skeleton

	// Workers is the number of scheduler threads for parallel skeletons.
	// Defaults to GOMAXPROCS-1 (one core reserved for the blocked caller),
	// minimum 1.
	Workers int

	// SpawnDepth is the DepthBounded/Ordered cutoff: every child of a node
	// at depth < SpawnDepth becomes a task.
	SpawnDepth int

	// MaxDepth truncates the search below the given depth when positive.
	// Nodes at MaxDepth are still processed but never expanded.
	MaxDepth int

	// BacktrackBudget is the number of level pops a Budget worker performs
	// before spawning its shallowest pending work.
	BacktrackBudget int

	// SpawnProbability is the reciprocal spawn probability of the Random
	// skeleton: each engine iteration spawns with probability
	// 1/SpawnProbability. Must be positive for SkeletonRandom.
	SpawnProbability uint64

	// StealAll makes StackStealing victims hand over every remaining
	// sibling of the shallowest unfinished frame instead of a single one.
	StealAll bool

	// PruneLevel abandons the whole current level once one child fails the
	// bound test, instead of pruning children one by one.
	PruneLevel bool

	// DiscrepancyOrder keys the Ordered priority queue by the sum of
	// sibling ranks along the path from the root instead of by depth.
	DiscrepancyOrder bool

	// MaxStackDepth is the engine stack capacity. Exceeding it aborts the
	// search with ErrStackOverflow.
	MaxStackDepth int

	// InitialBound seeds the incumbent bound for Optimise and Decide.
	InitialBound B

	// ExpectedObjective is the Decide threshold: the search stops at the
	// first node whose objective reaches it.
	ExpectedObjective B

	// Seed fixes the Random skeleton's spawn stream. Child tasks derive
	// their streams from the parent's, so a fixed seed reproduces the
	// spawn trace of a single-worker run.
	Seed int64

	// Pool overrides the task-pool variant where the skeleton allows it.
	Pool PoolKind
}

// DefaultParams returns the baseline parameter set: sequential skeleton,
// GOMAXPROCS-1 workers and the default stack capacity.
func DefaultParams[B any]() Params[B] {
	return Params[B]{
		Skeleton:      SkeletonSeq,
		Workers:       defaultWorkers(),
		MaxStackDepth: DefaultMaxStackDepth,
	}
}

func defaultWorkers() int {
	n := runtime.GOMAXPROCS(0) - 1
	if n < 1 {
		n = 1
	}
	return n
}
