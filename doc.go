// Package treesearch provides reusable parallel tree-search skeletons for
// branch-and-bound, exhaustive enumeration and decision problems over
// combinatorial search spaces.
//
// A problem plugs in through two small contracts: a Generator that produces
// the children of a node in a fixed order, and (for enumeration) an
// Enumerator that folds visited nodes into a result. The library runs the
// search and returns the optimum, the first node meeting a threshold, or
// the combined enumeration result.
//
// # Quick Start
//
//	prob := treesearch.Problem[Graph, Node, int, struct{}]{
//	    NewGenerator: newCliqueGenerator,
//	    Bound:        upperBound,
//	    Objective:    func(n Node) int { return n.Size },
//	    Better:       treesearch.OrderedGreater[int],
//	}
//
//	params := treesearch.DefaultParams[int]()
//	params.Skeleton = treesearch.SkeletonBudget
//	params.BacktrackBudget = 500
//
//	best, size, _ := treesearch.Optimise(ctx, graph, root, prob, params)
//
// # Skeletons
//
// Seven spawning strategies share one depth-first expansion engine:
//
//   - SkeletonSeq: single-threaded reference search.
//   - SkeletonDepthBounded: children above a cutoff depth become tasks.
//   - SkeletonStackStealing: idle workers steal unexplored siblings from
//     a victim's stack.
//   - SkeletonOrdered: a global priority queue executes pending subtrees
//     in depth or discrepancy order.
//   - SkeletonBudget: a thread spawns its shallowest pending work after a
//     fixed number of backtracks.
//   - SkeletonRandom: spawning is triggered probabilistically.
//   - SkeletonIndexed: tasks carry child-index paths instead of nodes and
//     are reconstructed via Generator.Nth replay.
//
// All strategies return the same result as SkeletonSeq on finite trees;
// they differ only in how work is cut loose and scheduled.
package treesearch
