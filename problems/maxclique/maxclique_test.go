package maxclique

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/treesearch"
	"github.com/hupe1980/treesearch/dimacs"
)

// The fixture graph: a triangle {0,1,2} with a tail 2-3-4. The maximum
// clique is the triangle.
const fixture = `c 5-vertex fixture
p edge 5 5
e 1 2
e 2 3
e 3 1
e 3 4
e 4 5
`

func fixtureGraph(t *testing.T) *Graph {
	t.Helper()
	gf, err := dimacs.Read(strings.NewReader(fixture))
	require.NoError(t, err)
	return NewGraph(gf)
}

func skeletonParams() map[string]treesearch.Params[int] {
	seq := treesearch.DefaultParams[int]()

	depthBounded := treesearch.DefaultParams[int]()
	depthBounded.Skeleton = treesearch.SkeletonDepthBounded
	depthBounded.SpawnDepth = 1
	depthBounded.Workers = 2

	stackSteal := treesearch.DefaultParams[int]()
	stackSteal.Skeleton = treesearch.SkeletonStackStealing
	stackSteal.Workers = 2

	ordered := treesearch.DefaultParams[int]()
	ordered.Skeleton = treesearch.SkeletonOrdered
	ordered.SpawnDepth = 1
	ordered.Workers = 2

	budget := treesearch.DefaultParams[int]()
	budget.Skeleton = treesearch.SkeletonBudget
	budget.BacktrackBudget = 2
	budget.Workers = 2

	random := treesearch.DefaultParams[int]()
	random.Skeleton = treesearch.SkeletonRandom
	random.SpawnProbability = 2
	random.Seed = 1
	random.Workers = 2

	indexed := treesearch.DefaultParams[int]()
	indexed.Skeleton = treesearch.SkeletonIndexed
	indexed.Workers = 2

	return map[string]treesearch.Params[int]{
		"seq":          seq,
		"depthbounded": depthBounded,
		"stacksteal":   stackSteal,
		"ordered":      ordered,
		"budget":       budget,
		"random":       random,
		"indexed":      indexed,
	}
}

func TestMaxCliqueAllSkeletons(t *testing.T) {
	graph := fixtureGraph(t)

	for name, params := range skeletonParams() {
		t.Run(name, func(t *testing.T) {
			node, size, err := treesearch.Optimise(context.Background(), graph, Root(graph), Problem(), params)
			require.NoError(t, err)
			assert.Equal(t, 3, size)
			assert.Equal(t, 3, node.Size())
			assertClique(t, graph, node)
		})
	}
}

func TestMaxCliqueDecision(t *testing.T) {
	graph := fixtureGraph(t)

	for name, params := range skeletonParams() {
		t.Run(name, func(t *testing.T) {
			params.ExpectedObjective = 2
			node, found, err := treesearch.Decide(context.Background(), graph, Root(graph), Problem(), params)
			require.NoError(t, err)
			require.True(t, found)
			assert.GreaterOrEqual(t, node.Size(), 2)
			assertClique(t, graph, node)
		})
	}
}

func TestMaxCliqueDecisionUnsatisfiable(t *testing.T) {
	graph := fixtureGraph(t)

	params := treesearch.DefaultParams[int]()
	params.ExpectedObjective = 4

	_, found, err := treesearch.Decide(context.Background(), graph, Root(graph), Problem(), params)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGeneratorNthMatchesNext(t *testing.T) {
	graph := fixtureGraph(t)
	root := Root(graph)

	gen := NewGenerator(graph, root)
	n := gen.NumChildren()
	require.Equal(t, graph.NumVertices(), n)

	replay := NewGenerator(graph, root)
	for k := 0; k < n; k++ {
		next := gen.Next()
		nth := replay.Nth(k)
		assert.Equal(t, next.Members, nth.Members, "child %d members", k)
		assert.Equal(t, next.Colours, nth.Colours, "child %d colours", k)
		assert.True(t, next.Cands.Equals(nth.Cands), "child %d candidates", k)
	}
}

func TestBoundNeverBelowObjective(t *testing.T) {
	graph := fixtureGraph(t)
	root := Root(graph)

	gen := NewGenerator(graph, root)
	for i := 0; i < gen.NumChildren(); i++ {
		child := gen.Next()
		assert.GreaterOrEqual(t, Bound(graph, child), Objective(child))
	}
}

func TestOriginalLabels(t *testing.T) {
	graph := fixtureGraph(t)

	seen := make(map[int]bool)
	for v := 0; v < graph.NumVertices(); v++ {
		seen[graph.Original(v)] = true
	}
	assert.Len(t, seen, graph.NumVertices())
}

func assertClique(t *testing.T, g *Graph, n Node) {
	t.Helper()
	for i, u := range n.Members {
		for _, v := range n.Members[i+1:] {
			assert.True(t, g.adj[u].Contains(v), "members %d and %d are not adjacent", u, v)
		}
	}
}
