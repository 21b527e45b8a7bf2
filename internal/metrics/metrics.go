// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WorkflowOperations counts workflow calls by operation and outcome.
	WorkflowOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stockledger",
		Subsystem: "workflow",
		Name:      "operations_total",
		Help:      "Ledger workflow operations by operation and outcome.",
	}, []string{"op", "outcome"})

	// WorkflowRecords counts records touched by successful mutations.
	WorkflowRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stockledger",
		Subsystem: "workflow",
		Name:      "records_total",
		Help:      "Records appended, transitioned or removed by successful workflow operations.",
	}, []string{"op"})

	// StoreDuration observes whole-table load and save latency.
	StoreDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "stockledger",
		Subsystem: "store",
		Name:      "duration_seconds",
		Help:      "Latency of whole-table loads and saves.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})
)
