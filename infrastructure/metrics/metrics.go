// Package metrics exposes Prometheus collectors for the TEG executor, the
// ZK proof pipeline and the cross-domain coordinator, following the
// teacher's pkg/metrics pattern: a process-wide Registry plus a promhttp
// handler, namespaced per subsystem.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "causality"

var (
	// Registry holds Causality's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	NodesDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "executor",
			Name:      "nodes_dispatched_total",
			Help:      "Total TEG nodes dispatched to a worker.",
		},
		[]string{"outcome"},
	)

	NodeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "executor",
			Name:      "node_duration_seconds",
			Help:      "Duration of a single TEG node's handler execution.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		},
		[]string{"effect_tag"},
	)

	WorkStolen = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "executor",
			Name:      "work_stolen_total",
			Help:      "Total nodes a worker dequeued from a peer's deque.",
		},
		[]string{"worker_id"},
	)

	ActiveWorkers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "executor",
			Name:      "active_workers",
			Help:      "Current number of running executor workers.",
		},
	)

	CircuitCacheOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "zk",
			Name:      "circuit_cache_total",
			Help:      "Circuit compiler cache lookups by outcome (hit|miss).",
		},
		[]string{"outcome"},
	)

	ProofDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "zk",
			Name:      "proof_generation_seconds",
			Help:      "Duration of per-domain proof generation.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		},
		[]string{"domain", "backend"},
	)

	ProofVerifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "zk",
			Name:      "proof_verifications_total",
			Help:      "Composite and per-domain proof verifications by result.",
		},
		[]string{"scope", "result"},
	)

	RelationshipQueryCacheOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "relationship",
			Name:      "query_cache_total",
			Help:      "Relationship path-query cache lookups by outcome (hit|miss|evicted).",
		},
		[]string{"outcome"},
	)

	LogSegmentRotations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "log",
			Name:      "segment_rotations_total",
			Help:      "Log segment rotations by trigger.",
		},
		[]string{"trigger"},
	)

	APIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Admin HTTP API requests by route and outcome.",
		},
		[]string{"route", "outcome"},
	)

	CircuitBreakerTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "coordinator",
			Name:      "circuit_breaker_transitions_total",
			Help:      "Per-domain backend circuit breaker state transitions.",
		},
		[]string{"domain", "to_state"},
	)
)

func init() {
	Registry.MustRegister(
		NodesDispatched,
		NodeDuration,
		WorkStolen,
		ActiveWorkers,
		CircuitCacheOps,
		ProofDuration,
		ProofVerifications,
		RelationshipQueryCacheOps,
		LogSegmentRotations,
		APIRequests,
		CircuitBreakerTransitions,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler returns the promhttp handler serving Registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
