// Package metrics provides Prometheus metrics for the extraction
// pipeline and the simulated upstream server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "compliance"

// Pipeline metrics
var (
	// PagesFetched counts ID listing pages fetched from the upstream.
	PagesFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "pages_fetched_total",
			Help:      "Total ID listing pages fetched",
		},
	)

	// IDsCollected counts alert IDs collected during pagination.
	IDsCollected = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "ids_collected_total",
			Help:      "Total alert IDs collected during pagination",
		},
	)

	// DetailFetches counts detail fetches by outcome (ok, not_found, failed).
	DetailFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "detail_fetches_total",
			Help:      "Total per-alert detail fetches by outcome",
		},
		[]string{"outcome"},
	)

	// RowsNormalized counts rows that passed normalization.
	RowsNormalized = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "rows_normalized_total",
			Help:      "Total normalized output rows",
		},
	)
)

// Simulated upstream metrics
var (
	// SimRequestsTotal counts requests served by the simulated upstream.
	SimRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simserver",
			Name:      "requests_total",
			Help:      "Total requests served by the simulated upstream",
		},
		[]string{"path", "status"},
	)
)
