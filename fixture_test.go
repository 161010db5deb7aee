package treesearch

import "sync"

// The test fixture is a complete b-ary tree of the given height. A node's
// score is the sum of its digit contributions; with invert unset the
// optimum sits on the rightmost path, with invert set on the leftmost.
type ttree struct {
	branching int
	height    int
	invert    bool
}

type tnode struct {
	depth int
	score int
}

func (t ttree) contrib(digit int) int {
	if t.invert {
		return t.branching - 1 - digit
	}
	return digit
}

// bestScore is the global optimum of the fixture.
func (t ttree) bestScore() int { return t.height * (t.branching - 1) }

// numNodes is the node count of the complete tree, optionally truncated.
func (t ttree) numNodes(maxDepth int) int64 {
	h := t.height
	if maxDepth > 0 && maxDepth < h {
		h = maxDepth
	}
	var total, level int64 = 0, 1
	for d := 0; d <= h; d++ {
		total += level
		level *= int64(t.branching)
	}
	return total
}

type tgen struct {
	tree ttree
	node tnode
	next int
}

func (g *tgen) NumChildren() int {
	if g.node.depth >= g.tree.height {
		return 0
	}
	return g.tree.branching
}

func (g *tgen) Next() tnode {
	child := g.Nth(g.next)
	g.next++
	return child
}

func (g *tgen) Nth(k int) tnode {
	return tnode{
		depth: g.node.depth + 1,
		score: g.node.score + g.tree.contrib(k),
	}
}

// tsum is an order-independent digest of the visited multiset: node count
// and score checksum.
type tsum struct {
	count int64
	score int64
}

type tenum struct{ sum tsum }

func (e *tenum) Accumulate(n tnode) {
	e.sum.count++
	e.sum.score += int64(n.score)
}

func (e *tenum) Combine(other tsum) {
	e.sum.count += other.count
	e.sum.score += other.score
}

func (e *tenum) Get() tsum { return e.sum }

func enumProblem(t ttree) Problem[ttree, tnode, int, tsum] {
	return Problem[ttree, tnode, int, tsum]{
		NewGenerator: func(space ttree, n tnode) Generator[tnode] {
			return &tgen{tree: space, node: n}
		},
		NewEnumerator: func() Enumerator[tnode, tsum] { return &tenum{} },
	}
}

func optProblem(t ttree) Problem[ttree, tnode, int, tsum] {
	p := enumProblem(t)
	p.Objective = func(n tnode) int { return n.score }
	p.Better = OrderedGreater[int]
	// The remaining levels can add at most branching-1 each.
	p.Bound = func(space ttree, n tnode) int {
		return n.score + (space.height-n.depth)*(space.branching-1)
	}
	return p
}

// recTracer is an in-memory Tracer for determinism tests.
type recTracer struct {
	mu     sync.Mutex
	events []TraceEvent
}

func (r *recTracer) Record(ev TraceEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recTracer) Events() []TraceEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]TraceEvent, len(r.events))
	copy(out, r.events)
	return out
}

// allSkeletonParams enumerates a representative parameterisation of every
// skeleton for equivalence tests.
func allSkeletonParams() map[string]Params[int] {
	seq := DefaultParams[int]()

	depthBounded := DefaultParams[int]()
	depthBounded.Skeleton = SkeletonDepthBounded
	depthBounded.SpawnDepth = 2
	depthBounded.Workers = 4

	depthBoundedDP := depthBounded
	depthBoundedDP.Pool = PoolDepth

	stackSteal := DefaultParams[int]()
	stackSteal.Skeleton = SkeletonStackStealing
	stackSteal.Workers = 4

	stackStealAll := stackSteal
	stackStealAll.StealAll = true

	ordered := DefaultParams[int]()
	ordered.Skeleton = SkeletonOrdered
	ordered.SpawnDepth = 2
	ordered.Workers = 4

	discrepancy := ordered
	discrepancy.DiscrepancyOrder = true

	budget := DefaultParams[int]()
	budget.Skeleton = SkeletonBudget
	budget.BacktrackBudget = 5
	budget.Workers = 4

	random := DefaultParams[int]()
	random.Skeleton = SkeletonRandom
	random.SpawnProbability = 3
	random.Seed = 42
	random.Workers = 4

	indexed := DefaultParams[int]()
	indexed.Skeleton = SkeletonIndexed
	indexed.Workers = 4

	return map[string]Params[int]{
		"seq":               seq,
		"depthbounded":      depthBounded,
		"depthbounded/pool": depthBoundedDP,
		"stacksteal":        stackSteal,
		"stacksteal/all":    stackStealAll,
		"ordered":           ordered,
		"ordered/disc":      discrepancy,
		"budget":            budget,
		"random":            random,
		"indexed":           indexed,
	}
}
