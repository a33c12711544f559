// Package metrics exports graph node activity as Prometheus metrics.
//
// A Collector is a graph.NodeListener:
//
//	reg := prometheus.NewRegistry()
//	c, err := metrics.NewCollector(reg)
//	g := graph.NewGraph(graph.WithListener(c))
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallnest/nodegraphgo/graph"
)

const namespace = "nodegraph"

// Run outcomes used for the status label.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Collector records node runs, run durations and invalidations.
type Collector struct {
	runs          *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	invalidations *prometheus.CounterVec
}

var _ graph.NodeListener = (*Collector)(nil)

// NewCollector creates the metrics and registers them on reg. A nil reg
// means prometheus.DefaultRegisterer.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "node_runs_total",
				Help:      "Total number of node executions by kind and outcome",
			},
			[]string{"kind", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "node_duration_seconds",
				Help:      "Duration of node body executions",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		invalidations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invalidations_total",
				Help:      "Total number of nodes marked stale by invalidation cascades",
			},
			[]string{"kind"},
		),
	}
	for _, col := range []prometheus.Collector{c.runs, c.duration, c.invalidations} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MustNewCollector is NewCollector that panics on registration errors.
func MustNewCollector(reg prometheus.Registerer) *Collector {
	c, err := NewCollector(reg)
	if err != nil {
		panic(err)
	}
	return c
}

// OnNodeEvent implements graph.NodeListener.
func (c *Collector) OnNodeEvent(_ context.Context, ev graph.Event) {
	switch ev.Type {
	case graph.NodeEventComplete:
		c.runs.WithLabelValues(ev.Kind, StatusSuccess).Inc()
		c.duration.WithLabelValues(ev.Kind).Observe(ev.Duration.Seconds())
	case graph.NodeEventError:
		c.runs.WithLabelValues(ev.Kind, StatusError).Inc()
		c.duration.WithLabelValues(ev.Kind).Observe(ev.Duration.Seconds())
	case graph.NodeEventStale:
		c.invalidations.WithLabelValues(ev.Kind).Inc()
	}
}
