package treesearch

import (
	"sync"
	"sync/atomic"
)

// BoundBroadcaster is the propagation seam for incumbent-bound
// improvements. In a single process it collapses to the registry's local
// atomic; a distributed backend can implement it to fan improvements out
// to remote registries.
type BoundBroadcaster[B any] interface {
	// Publish is called with every accepted bound improvement, after the
	// local registry has been updated.
	Publish(bound B)
}

// goal discriminates the three search modes internally; the public API
// fixes it through the Enumerate/Optimise/Decide entry points.
type goal int

const (
	goalEnumeration goal = iota
	goalOptimisation
	goalDecision
)

// registry is the per-search shared state: the space, the parameters, the
// atomic incumbent bound, the incumbent itself, the stop flag and the
// master enumeration accumulator. Its lifetime is one search call.
type registry[S, N, B, R any] struct {
	space  S
	root   N
	prob   Problem[S, N, B, R]
	params Params[B]
	g      goal

	localBound atomic.Pointer[B]
	stopSearch atomic.Bool

	inc incumbent[N, B]

	accMu sync.Mutex
	acc   Enumerator[N, R]

	broadcast BoundBroadcaster[B]

	// hardStop aborts every expansion regardless of goal (context
	// cancellation or a fatal engine error).
	hardStop atomic.Bool
	errMu    sync.Mutex
	err      error

	log    *Logger
	met    *Metrics
	tracer Tracer
	seq    atomic.Uint64
}

// incumbent holds the best complete solution found so far. The bound fast
// path lives in registry.localBound; the mutex only guards the node swap.
type incumbent[N, B any] struct {
	mu    sync.Mutex
	node  N
	bound B
	valid bool
}

func newRegistry[S, N, B, R any](space S, root N, prob Problem[S, N, B, R], params Params[B], g goal, o options) *registry[S, N, B, R] {
	reg := &registry[S, N, B, R]{
		space:  space,
		root:   root,
		prob:   prob,
		params: params,
		g:      g,
		log:    o.logger,
		met:    o.metrics,
		tracer: o.tracer,
	}
	if b, ok := o.broadcast.(BoundBroadcaster[B]); ok {
		reg.broadcast = b
	}

	seed := params.InitialBound
	reg.localBound.Store(&seed)

	if g == goalEnumeration {
		reg.acc = prob.NewEnumerator()
	}

	return reg
}

// bound returns the current incumbent bound.
func (r *registry[S, N, B, R]) bound() B {
	return *r.localBound.Load()
}

// tryImprove installs node as the new incumbent if its objective strictly
// beats the current bound. Applying the same improvement twice is
// indistinguishable from applying it once: the second attempt fails the
// strict comparison and is ignored.
func (r *registry[S, N, B, R]) tryImprove(node N, obj B) bool {
	if !r.prob.Better(obj, r.bound()) {
		return false
	}

	r.inc.mu.Lock()
	defer r.inc.mu.Unlock()

	// Re-check under the lock; another worker may have won the race.
	if !r.prob.Better(obj, r.bound()) {
		return false
	}

	r.inc.node = node
	r.inc.bound = obj
	r.inc.valid = true

	b := obj
	r.localBound.Store(&b)
	if r.broadcast != nil {
		r.broadcast.Publish(obj)
	}

	r.met.IncumbentUpdates.Add(1)
	return true
}

// foundWitness records a decision witness and stops the search.
func (r *registry[S, N, B, R]) foundWitness(node N, obj B) {
	r.inc.mu.Lock()
	r.inc.node = node
	r.inc.bound = obj
	r.inc.valid = true
	r.inc.mu.Unlock()

	r.stopSearch.Store(true)
}

// incumbentResult returns the incumbent node, bound and validity.
func (r *registry[S, N, B, R]) incumbentResult() (N, B, bool) {
	r.inc.mu.Lock()
	defer r.inc.mu.Unlock()
	return r.inc.node, r.inc.bound, r.inc.valid
}

// mergeAccumulator folds a task-local enumerator into the master one.
func (r *registry[S, N, B, R]) mergeAccumulator(acc Enumerator[N, R]) {
	if acc == nil {
		return
	}
	r.accMu.Lock()
	defer r.accMu.Unlock()
	r.acc.Combine(acc.Get())
}

// fail records the first fatal error and aborts all expansions.
func (r *registry[S, N, B, R]) fail(err error) {
	r.errMu.Lock()
	if r.err == nil {
		r.err = err
	}
	r.errMu.Unlock()
	r.hardStop.Store(true)
}

func (r *registry[S, N, B, R]) failure() error {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	return r.err
}

func (r *registry[S, N, B, R]) trace(kind TraceEventKind, depth, rank int) {
	if r.tracer == nil {
		return
	}
	r.tracer.Record(TraceEvent{
		Seq:   r.seq.Add(1),
		Kind:  kind,
		Depth: depth,
		Rank:  rank,
	})
}
