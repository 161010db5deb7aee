package treesearch

import "sync/atomic"

// Metrics collects operational counters for one or more searches.
// All fields are updated atomically; a single instance may be shared
// across concurrent searches and scraped while a search is running.
//
// The prom subpackage exposes a Metrics instance as a
// prometheus.Collector.
type Metrics struct {
	// NodesExpanded counts children handed to processNode.
	NodesExpanded atomic.Int64

	// NodesPruned counts children discarded by the bound test.
	NodesPruned atomic.Int64

	// TasksSpawned counts subtrees converted into pool tasks.
	TasksSpawned atomic.Int64

	// TasksStolen counts tasks a StackStealing victim peels off its stack
	// for a thief and paths stolen from an Indexed position index. Tasks
	// taken from another worker's deque or from a shared pool are not
	// counted.
	TasksStolen atomic.Int64

	// TasksDiscarded counts tasks offered to an already-stopped pool.
	TasksDiscarded atomic.Int64

	// Backtracks counts engine level pops.
	Backtracks atomic.Int64

	// IncumbentUpdates counts accepted incumbent improvements.
	IncumbentUpdates atomic.Int64
}

// Snapshot is a point-in-time copy of a Metrics instance.
type Snapshot struct {
	NodesExpanded    int64
	NodesPruned      int64
	TasksSpawned     int64
	TasksStolen      int64
	TasksDiscarded   int64
	Backtracks       int64
	IncumbentUpdates int64
}

// Snapshot returns a consistent-enough copy for reporting.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		NodesExpanded:    m.NodesExpanded.Load(),
		NodesPruned:      m.NodesPruned.Load(),
		TasksSpawned:     m.TasksSpawned.Load(),
		TasksStolen:      m.TasksStolen.Load(),
		TasksDiscarded:   m.TasksDiscarded.Load(),
		Backtracks:       m.Backtracks.Load(),
		IncumbentUpdates: m.IncumbentUpdates.Load(),
	}
}
