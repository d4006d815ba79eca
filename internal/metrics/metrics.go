package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// OperationsTotal counts engine operations by operation, serving
	// provider and outcome (success|error).
	OperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "facefalcon",
		Subsystem: "engine",
		Name:      "operations_total",
		Help:      "Face-analysis operations processed.",
	}, []string{"operation", "provider", "outcome"})

	// FallbacksTotal counts secondary-provider invocations after a
	// primary outage.
	FallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "facefalcon",
		Subsystem: "engine",
		Name:      "fallbacks_total",
		Help:      "Fallback invocations of the secondary provider.",
	}, []string{"operation", "from", "to"})

	// UsageRecordedTotal mirrors the usage ledger increments for
	// scrape-side visibility; the ledger itself stays the source of
	// truth for routing decisions.
	UsageRecordedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "facefalcon",
		Subsystem: "engine",
		Name:      "usage_recorded_total",
		Help:      "Successful operations recorded in the usage ledger.",
	}, []string{"operation", "provider"})

	// OperationDuration observes end-to-end operation latency.
	OperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "facefalcon",
		Subsystem: "engine",
		Name:      "operation_duration_seconds",
		Help:      "End-to-end operation latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "provider"})
)

// Handler exposes the prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
