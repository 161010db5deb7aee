// Package maxclique implements the maximum-clique branch-and-bound
// problem on top of the treesearch skeletons: degree-ordered bitset
// graph, greedy colour-class bounding and a child generator with Nth
// replay support.
package maxclique

import (
	"slices"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/treesearch"
	"github.com/hupe1980/treesearch/dimacs"
)

// Graph is an adjacency-row bitset graph with vertices renumbered in
// descending degree order. inv maps a renumbered vertex back to its
// original label.
type Graph struct {
	n   int
	adj []*roaring.Bitmap
	inv []int
}

// NewGraph orders g by descending degree (ties broken on vertex number)
// and builds the bitset adjacency rows.
func NewGraph(g *dimacs.Graph) *Graph {
	deg := g.Degree()

	order := make([]int, g.NumVertices)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if deg[a] != deg[b] {
			return deg[a] > deg[b]
		}
		return a < b
	})

	pos := make([]int, g.NumVertices)
	for i, v := range order {
		pos[v] = i
	}

	og := &Graph{
		n:   g.NumVertices,
		adj: make([]*roaring.Bitmap, g.NumVertices),
		inv: order,
	}
	for i := range og.adj {
		og.adj[i] = roaring.New()
	}
	for _, e := range g.Edges {
		u, v := pos[e[0]], pos[e[1]]
		if u == v {
			continue
		}
		og.adj[u].Add(uint32(v))
		og.adj[v].Add(uint32(u))
	}

	return og
}

// NumVertices returns the vertex count.
func (g *Graph) NumVertices() int { return g.n }

// Original maps a renumbered vertex back to its label in the input graph.
func (g *Graph) Original(v int) int { return g.inv[v] }

// Node is a partial clique: its members (renumbered vertices), the colour
// bound inherited from its parent and the candidate set of vertices
// adjacent to every member.
type Node struct {
	Members []uint32
	Colours int
	Cands   *roaring.Bitmap
}

// Size returns the clique size so far.
func (n Node) Size() int { return len(n.Members) }

// Root returns the empty clique with all vertices as candidates.
func Root(g *Graph) Node {
	cands := roaring.New()
	cands.AddRange(0, uint64(g.n))
	return Node{Cands: cands}
}

// Objective is the clique size.
func Objective(n Node) int { return n.Size() }

// Bound is the classic colouring bound: current size plus the number of
// colour classes covering the candidate set.
func Bound(g *Graph, n Node) int { return n.Size() + n.Colours }

// Problem assembles the treesearch callbacks for maximum clique.
func Problem() treesearch.Problem[*Graph, Node, int, struct{}] {
	return treesearch.Problem[*Graph, Node, int, struct{}]{
		NewGenerator: func(g *Graph, n Node) treesearch.Generator[Node] {
			return NewGenerator(g, n)
		},
		Bound:     Bound,
		Objective: Objective,
		Better:    treesearch.OrderedGreater[int],
	}
}

// Generator produces the children of a partial clique in the greedy
// colour-class order: candidates are coloured greedily, then children are
// generated from the highest colour down, each child taking one candidate
// into the clique and intersecting the remainder with its neighbourhood.
type Generator struct {
	g    *Graph
	node Node

	order   []uint32 // candidates in colouring order
	colours []int    // colour class per order position

	// next-state: working candidate set and the order position of the
	// next child.
	work *roaring.Bitmap
	pos  int
}

// Compile time check to ensure Generator satisfies the generator contract.
var _ treesearch.Generator[Node] = (*Generator)(nil)

// NewGenerator colours the candidate set of n and prepares child
// generation.
func NewGenerator(g *Graph, n Node) *Generator {
	order, colours := colourClassOrder(g, n.Cands)
	return &Generator{
		g:       g,
		node:    n,
		order:   order,
		colours: colours,
		work:    n.Cands.Clone(),
		pos:     len(order) - 1,
	}
}

// NumChildren implements treesearch.Generator.
func (gen *Generator) NumChildren() int { return len(gen.order) }

// Next implements treesearch.Generator.
func (gen *Generator) Next() Node {
	v := gen.order[gen.pos]
	child := gen.child(v, gen.work, gen.colours[gen.pos])

	gen.work.Remove(v)
	gen.pos--

	return child
}

// Nth implements treesearch.Generator. The k-th child is the one the k-th
// Next call would produce: positions are consumed from the back of the
// colouring order, with every earlier-taken candidate removed first.
func (gen *Generator) Nth(k int) Node {
	pos := len(gen.order) - 1 - k

	work := gen.node.Cands.Clone()
	for j := len(gen.order) - 1; j > pos; j-- {
		work.Remove(gen.order[j])
	}

	return gen.child(gen.order[pos], work, gen.colours[pos])
}

func (gen *Generator) child(v uint32, work *roaring.Bitmap, colour int) Node {
	cands := work.Clone()
	cands.And(gen.g.adj[v])

	members := slices.Clone(gen.node.Members)
	members = append(members, v)

	return Node{
		Members: members,
		// One colour class is spent by taking v.
		Colours: colour - 1,
		Cands:   cands,
	}
}

// colourClassOrder greedily partitions p into colour classes and returns
// the vertices in colouring order together with their class numbers.
func colourClassOrder(g *Graph, p *roaring.Bitmap) ([]uint32, []int) {
	size := int(p.GetCardinality())
	order := make([]uint32, 0, size)
	colours := make([]int, 0, size)

	pLeft := p.Clone()
	colour := 0
	for !pLeft.IsEmpty() {
		colour++
		q := pLeft.Clone()
		for !q.IsEmpty() {
			v := q.Minimum()
			pLeft.Remove(v)
			q.Remove(v)
			// Nothing adjacent to v can share its colour.
			q.AndNot(g.adj[v])

			order = append(order, v)
			colours = append(colours, colour)
		}
	}

	return order, colours
}
