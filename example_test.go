package treesearch_test

import (
	"context"
	"fmt"

	"github.com/hupe1980/treesearch"
)

// pickTree is a tiny knapsack-like search space: at each of the remaining
// levels one of three weights is picked; the objective is the picked sum.
type pickTree struct {
	levels  int
	weights [3]int
}

type pick struct {
	depth int
	sum   int
}

type pickGen struct {
	space pickTree
	node  pick
	next  int
}

func (g *pickGen) NumChildren() int {
	if g.node.depth >= g.space.levels {
		return 0
	}
	return len(g.space.weights)
}

func (g *pickGen) Next() pick {
	child := g.Nth(g.next)
	g.next++
	return child
}

func (g *pickGen) Nth(k int) pick {
	return pick{depth: g.node.depth + 1, sum: g.node.sum + g.space.weights[k]}
}

func ExampleOptimise() {
	space := pickTree{levels: 4, weights: [3]int{1, 5, 2}}

	prob := treesearch.Problem[pickTree, pick, int, struct{}]{
		NewGenerator: func(s pickTree, n pick) treesearch.Generator[pick] {
			return &pickGen{space: s, node: n}
		},
		Objective: func(n pick) int { return n.sum },
		Better:    treesearch.OrderedGreater[int],
		Bound: func(s pickTree, n pick) int {
			return n.sum + (s.levels-n.depth)*5
		},
	}

	params := treesearch.DefaultParams[int]()
	params.Skeleton = treesearch.SkeletonDepthBounded
	params.SpawnDepth = 1
	params.Workers = 2

	_, best, err := treesearch.Optimise(context.Background(), space, pick{}, prob, params)
	if err != nil {
		panic(err)
	}

	fmt.Println(best)
	// Output: 20
}

type leafCounter struct{ count int }

func (c *leafCounter) Accumulate(n pick) { c.count++ }
func (c *leafCounter) Combine(other int) { c.count += other }
func (c *leafCounter) Get() int          { return c.count }

func ExampleEnumerate() {
	space := pickTree{levels: 3, weights: [3]int{1, 2, 3}}

	prob := treesearch.Problem[pickTree, pick, int, int]{
		NewGenerator: func(s pickTree, n pick) treesearch.Generator[pick] {
			return &pickGen{space: s, node: n}
		},
		NewEnumerator: func() treesearch.Enumerator[pick, int] { return &leafCounter{} },
	}

	total, err := treesearch.Enumerate(context.Background(), space, pick{}, prob, treesearch.DefaultParams[int]())
	if err != nil {
		panic(err)
	}

	// All nodes of the complete ternary tree of height 3.
	fmt.Println(total)
	// Output: 40
}
