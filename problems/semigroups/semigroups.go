// Package semigroups enumerates numerical semigroups by genus. The genus
// tree has the full semigroup of naturals at its root; each child removes
// one effective generator (a minimal generator larger than the Frobenius
// number), increasing the genus by one.
//
// Semigroups are represented as a 64-bit membership mask, which covers
// every genus up to MaxGenus.
package semigroups

import (
	"math/bits"

	"github.com/hupe1980/treesearch"
)

// MaxGenus is the largest genus the 64-bit representation supports: a
// semigroup of genus g has Frobenius number at most 2g-1 and effective
// generators at most 2*Frobenius+2, which must stay below 64.
const MaxGenus = 15

// Monoid is one numerical semigroup: a membership mask over 0..63, its
// Frobenius number (largest gap, -1 for the naturals) and its genus
// (number of gaps).
type Monoid struct {
	elems     uint64
	frobenius int
	Genus     int
}

// Root returns the full semigroup of naturals.
func Root() Monoid {
	return Monoid{
		elems:     ^uint64(0),
		frobenius: -1,
	}
}

// Contains reports membership of x, 0 <= x < 64.
func (m Monoid) Contains(x int) bool {
	return m.elems&(1<<uint(x)) != 0
}

// Frobenius returns the largest gap, -1 for the naturals.
func (m Monoid) Frobenius() int { return m.frobenius }

// remove produces the child semigroup with generator x taken out. x
// becomes the new Frobenius number since it exceeds the old one.
func (m Monoid) remove(x int) Monoid {
	return Monoid{
		elems:     m.elems &^ (1 << uint(x)),
		frobenius: x,
		Genus:     m.Genus + 1,
	}
}

// effectiveGenerators lists the minimal generators greater than the
// Frobenius number, in increasing order. Such generators are confined to
// (frobenius, 2*frobenius+2]: anything larger splits into two members.
func (m Monoid) effectiveGenerators() []int {
	if m.frobenius < 0 {
		// The naturals: 1 is the only minimal generator.
		return []int{1}
	}

	hi := 2*m.frobenius + 2
	if hi > 63 {
		hi = 63
	}

	var gens []int
	for x := m.frobenius + 1; x <= hi; x++ {
		if m.isMinimalGenerator(x) {
			gens = append(gens, x)
		}
	}
	return gens
}

// isMinimalGenerator reports whether x is a member with no decomposition
// into two non-zero members.
func (m Monoid) isMinimalGenerator(x int) bool {
	if !m.Contains(x) {
		return false
	}
	for a := 1; a <= x/2; a++ {
		if m.Contains(a) && m.Contains(x-a) {
			return false
		}
	}
	return true
}

// Generator produces the children of a semigroup in increasing order of
// the removed effective generator.
type Generator struct {
	node Monoid
	gens []int
	next int
}

// Compile time check to ensure Generator satisfies the generator contract.
var _ treesearch.Generator[Monoid] = (*Generator)(nil)

// NewGenerator computes the effective generators of n.
func NewGenerator(n Monoid) *Generator {
	return &Generator{
		node: n,
		gens: n.effectiveGenerators(),
	}
}

// NumChildren implements treesearch.Generator.
func (g *Generator) NumChildren() int { return len(g.gens) }

// Next implements treesearch.Generator.
func (g *Generator) Next() Monoid {
	child := g.node.remove(g.gens[g.next])
	g.next++
	return child
}

// Nth implements treesearch.Generator.
func (g *Generator) Nth(k int) Monoid {
	return g.node.remove(g.gens[k])
}

// GenusCounts accumulates the number of semigroups per genus, the
// counterpart of the original depth-count enumerator.
type GenusCounts struct {
	counts []uint64
}

// Compile time check to ensure GenusCounts satisfies the enumerator
// contract.
var _ treesearch.Enumerator[Monoid, []uint64] = (*GenusCounts)(nil)

// NewGenusCounts returns an enumerator factory counting genera up to
// maxGenus inclusive.
func NewGenusCounts(maxGenus int) func() treesearch.Enumerator[Monoid, []uint64] {
	return func() treesearch.Enumerator[Monoid, []uint64] {
		return &GenusCounts{counts: make([]uint64, maxGenus+1)}
	}
}

// Accumulate implements treesearch.Enumerator.
func (c *GenusCounts) Accumulate(m Monoid) {
	if m.Genus < len(c.counts) {
		c.counts[m.Genus]++
	}
}

// Combine implements treesearch.Enumerator.
func (c *GenusCounts) Combine(other []uint64) {
	for i := range c.counts {
		if i < len(other) {
			c.counts[i] += other[i]
		}
	}
}

// Get implements treesearch.Enumerator.
func (c *GenusCounts) Get() []uint64 {
	out := make([]uint64, len(c.counts))
	copy(out, c.counts)
	return out
}

// Problem assembles the treesearch callbacks for genus enumeration up to
// maxGenus.
func Problem(maxGenus int) treesearch.Problem[struct{}, Monoid, int, []uint64] {
	return treesearch.Problem[struct{}, Monoid, int, []uint64]{
		NewGenerator: func(_ struct{}, n Monoid) treesearch.Generator[Monoid] {
			return NewGenerator(n)
		},
		NewEnumerator: NewGenusCounts(maxGenus),
	}
}

// Gaps returns the gap count of the mask prefix, a cross-check used in
// tests: it must equal Genus for every reachable semigroup.
func (m Monoid) Gaps() int {
	if m.frobenius < 0 {
		return 0
	}
	width := uint(m.frobenius + 1)
	mask := uint64(1)<<width - 1
	return int(width) - bits.OnesCount64(m.elems&mask)
}
