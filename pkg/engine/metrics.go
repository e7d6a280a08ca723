package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ticksTotal counts simulation ticks that ran.
	ticksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "docgraph",
		Name:      "ticks_total",
		Help:      "Total simulation ticks",
	})

	// tickDuration measures the wall time of one tick including the render sync.
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "docgraph",
		Name:      "tick_duration_seconds",
		Help:      "Wall time of one simulation tick",
		Buckets:   []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05},
	})

	// droppedEdgesTotal counts payload edges that referenced unknown nodes.
	droppedEdgesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "docgraph",
		Name:      "dropped_edges_total",
		Help:      "Total payload edges dropped for a missing endpoint",
	})

	// nonfiniteResetsTotal counts node positions restored after a non-finite step.
	nonfiniteResetsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "docgraph",
		Name:      "nonfinite_resets_total",
		Help:      "Total node positions reset after a non-finite integration step",
	})

	// activeSimulations is the number of running simulations. It never exceeds
	// the number of views.
	activeSimulations = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "docgraph",
		Name:      "active_simulations",
		Help:      "Simulations currently running",
	})

	// renderCommitsTotal counts render graph commits.
	// Labels: kind (positions, structure, view, state)
	renderCommitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "docgraph",
		Name:      "render_commits_total",
		Help:      "Total render graph commits",
	}, []string{"kind"})

	// loadsTotal counts graph loads.
	loadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "docgraph",
		Name:      "loads_total",
		Help:      "Total graph payloads loaded",
	})
)
