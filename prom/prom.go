// Package prom exposes treesearch metrics as a prometheus.Collector, the
// counterpart of the original system's performance-counter registration.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/treesearch"
)

// Collector adapts a treesearch.Metrics instance to the Prometheus
// collection model. Register it with any prometheus.Registerer:
//
//	metrics := &treesearch.Metrics{}
//	prometheus.MustRegister(prom.NewCollector(metrics))
type Collector struct {
	metrics *treesearch.Metrics

	nodesExpanded    *prometheus.Desc
	nodesPruned      *prometheus.Desc
	tasksSpawned     *prometheus.Desc
	tasksStolen      *prometheus.Desc
	tasksDiscarded   *prometheus.Desc
	backtracks       *prometheus.Desc
	incumbentUpdates *prometheus.Desc
}

// Compile time check to ensure Collector satisfies the prometheus
// collector interface.
var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a Collector over the given metrics instance.
func NewCollector(m *treesearch.Metrics) *Collector {
	return &Collector{
		metrics: m,
		nodesExpanded: prometheus.NewDesc(
			"treesearch_nodes_expanded_total",
			"Children handed to the node processor.",
			nil, nil,
		),
		nodesPruned: prometheus.NewDesc(
			"treesearch_nodes_pruned_total",
			"Children discarded by the bound test.",
			nil, nil,
		),
		tasksSpawned: prometheus.NewDesc(
			"treesearch_tasks_spawned_total",
			"Subtrees converted into pool tasks.",
			nil, nil,
		),
		tasksStolen: prometheus.NewDesc(
			"treesearch_tasks_stolen_total",
			"Tasks obtained through work stealing.",
			nil, nil,
		),
		tasksDiscarded: prometheus.NewDesc(
			"treesearch_tasks_discarded_total",
			"Tasks offered to an already-stopped pool.",
			nil, nil,
		),
		backtracks: prometheus.NewDesc(
			"treesearch_backtracks_total",
			"Engine level pops.",
			nil, nil,
		),
		incumbentUpdates: prometheus.NewDesc(
			"treesearch_incumbent_updates_total",
			"Accepted incumbent improvements.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.nodesExpanded
	ch <- c.nodesPruned
	ch <- c.tasksSpawned
	ch <- c.tasksStolen
	ch <- c.tasksDiscarded
	ch <- c.backtracks
	ch <- c.incumbentUpdates
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := c.metrics.Snapshot()
	ch <- prometheus.MustNewConstMetric(c.nodesExpanded, prometheus.CounterValue, float64(s.NodesExpanded))
	ch <- prometheus.MustNewConstMetric(c.nodesPruned, prometheus.CounterValue, float64(s.NodesPruned))
	ch <- prometheus.MustNewConstMetric(c.tasksSpawned, prometheus.CounterValue, float64(s.TasksSpawned))
	ch <- prometheus.MustNewConstMetric(c.tasksStolen, prometheus.CounterValue, float64(s.TasksStolen))
	ch <- prometheus.MustNewConstMetric(c.tasksDiscarded, prometheus.CounterValue, float64(s.TasksDiscarded))
	ch <- prometheus.MustNewConstMetric(c.backtracks, prometheus.CounterValue, float64(s.Backtracks))
	ch <- prometheus.MustNewConstMetric(c.incumbentUpdates, prometheus.CounterValue, float64(s.IncumbentUpdates))
}
