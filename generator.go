package treesearch

import "cmp"

// Generator produces the children of a single search node in a fixed,
// deterministic order.
//
// The engine calls Next at most NumChildren times. Nth(k) must return the
// same node the k-th Next call would, without requiring children 0..k-1 to
// have been produced first; the Indexed skeleton relies on this to rebuild
// stolen subtrees from child-index paths.
type Generator[N any] interface {
	// NumChildren reports the number of children, known at construction.
	NumChildren() int

	// Next returns the next child in order, consuming it.
	Next() N

	// Nth returns the k-th child, 0 <= k < NumChildren, without consuming
	// any position. It must be consistent with the Next sequence.
	Nth(k int) N
}

// GeneratorFactory constructs a Generator for node within space. It must be
// side-effect free on both arguments.
type GeneratorFactory[S, N any] func(space S, node N) Generator[N]

// Enumerator folds visited nodes into a result of type R. Each task runs
// its own Enumerator; results are merged through Combine when the task
// finishes, so Accumulate is never called concurrently on one instance.
type Enumerator[N, R any] interface {
	// Accumulate folds one visited node into the running result.
	Accumulate(n N)

	// Combine merges a result produced by another Enumerator instance.
	Combine(other R)

	// Get returns the accumulated result.
	Get() R
}

// Problem bundles the user-supplied callbacks of a search.
//
// NewGenerator is always required. Objective and Better are required for
// Optimise and Decide. Bound is optional; when set, subtrees whose bound
// cannot beat the incumbent are pruned. NewEnumerator is required for
// Enumerate and ignored otherwise.
type Problem[S, N, B, R any] struct {
	// NewGenerator constructs the child generator for a node.
	NewGenerator GeneratorFactory[S, N]

	// Bound returns an optimistic estimate of the best objective reachable
	// within the subtree rooted at node. Optional.
	Bound func(space S, node N) B

	// Objective returns the objective value of a complete node.
	Objective func(node N) B

	// Better reports whether a is strictly better than b. For maximisation
	// use OrderedGreater, for minimisation OrderedLess.
	Better func(a, b B) bool

	// NewEnumerator returns a fresh accumulator for one task.
	NewEnumerator func() Enumerator[N, R]
}

// OrderedGreater is the maximisation comparison for ordered bound types.
func OrderedGreater[B cmp.Ordered](a, b B) bool { return a > b }

// OrderedLess is the minimisation comparison for ordered bound types.
func OrderedLess[B cmp.Ordered](a, b B) bool { return a < b }
