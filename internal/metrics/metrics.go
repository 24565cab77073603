package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "nfccard"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	applicationsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "applications_submitted_total",
			Help:      "Applications accepted, by plan.",
		},
		[]string{"plan"},
	)

	priceMismatches = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "client_price_mismatch_total",
			Help:      "Submissions whose client-supplied price differed from the plan table.",
		},
	)

	ordersCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "orders_created_total",
			Help:      "Gateway order creation attempts, by result.",
		},
		[]string{"result"},
	)

	ordersUnrecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "orders_unrecorded_total",
			Help:      "Gateway orders created but not persisted locally.",
		},
	)

	paymentsVerified = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "payments_verified_total",
			Help:      "Payment verification outcomes.",
		},
		[]string{"result"},
	)

	paymentsReconciled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "payments_reconciled_total",
			Help:      "Captured payments recorded by the reconciliation job.",
		},
	)

	notificationsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "email",
			Name:      "notifications_total",
			Help:      "Notification deliveries, by channel and result.",
		},
		[]string{"channel", "result"},
	)

	jobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "runs_total",
			Help:      "Scheduled job runs.",
		},
		[]string{"job", "success"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		applicationsSubmitted,
		priceMismatches,
		ordersCreated,
		ordersUnrecorded,
		paymentsVerified,
		paymentsReconciled,
		notificationsSent,
		jobRuns,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveHTTPRequest records one handled request; route is the mux path template.
func ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	method = strings.ToUpper(method)
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func ApplicationSubmitted(plan string) {
	applicationsSubmitted.WithLabelValues(plan).Inc()
}

func ClientPriceMismatch() {
	priceMismatches.Inc()
}

func OrderCreated(result string) {
	ordersCreated.WithLabelValues(result).Inc()
}

func OrderUnrecorded() {
	ordersUnrecorded.Inc()
}

// PaymentVerified result is one of verified, duplicate, invalid_signature, conflict, error.
func PaymentVerified(result string) {
	paymentsVerified.WithLabelValues(result).Inc()
}

func PaymentReconciled() {
	paymentsReconciled.Inc()
}

func NotificationSent(channel string, ok bool) {
	result := "failure"
	if ok {
		result = "success"
	}
	notificationsSent.WithLabelValues(channel, result).Inc()
}

func JobRun(job string, success bool) {
	jobRuns.WithLabelValues(job, strconv.FormatBool(success)).Inc()
}
