package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application collectors.
	Registry = prometheus.NewRegistry()

	reconcileDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "checkout",
			Subsystem: "cart",
			Name:      "reconcile_dropped_total",
			Help:      "Cart entries or modifiers dropped during reconciliation.",
		},
		[]string{"kind"},
	)

	cartMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "checkout",
			Subsystem: "cart",
			Name:      "mutations_total",
			Help:      "Cart mutations by operation.",
		},
		[]string{"op"},
	)

	submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "checkout",
			Subsystem: "orders",
			Name:      "submissions_total",
			Help:      "Checkout submissions by outcome.",
		},
		[]string{"outcome"},
	)

	paymentResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "checkout",
			Subsystem: "payments",
			Name:      "results_total",
			Help:      "Payment sequencer terminal states by method.",
		},
		[]string{"method", "state"},
	)

	backendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "checkout",
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Duration of calls to the order/payment backend.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"operation"},
	)

	invalidations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "checkout",
			Subsystem: "realtime",
			Name:      "invalidations_total",
			Help:      "Cached views invalidated by push events.",
		},
		[]string{"event_type"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		reconcileDropped,
		cartMutations,
		submissions,
		paymentResults,
		backendDuration,
		invalidations,
	)
}

// Handler exposes the registry over HTTP.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func RecordReconcileDropped(kind string) {
	reconcileDropped.WithLabelValues(kind).Inc()
}

func RecordCartMutation(op string) {
	cartMutations.WithLabelValues(op).Inc()
}

func RecordSubmission(outcome string) {
	submissions.WithLabelValues(outcome).Inc()
}

func RecordPaymentResult(method, state string) {
	paymentResults.WithLabelValues(method, state).Inc()
}

func ObserveBackendCall(operation string, seconds float64) {
	backendDuration.WithLabelValues(operation).Observe(seconds)
}

func RecordInvalidations(eventType string, n int) {
	invalidations.WithLabelValues(eventType).Add(float64(n))
}
