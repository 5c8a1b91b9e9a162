package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		registrationsPreparedTotal,
		registrationCallbacksTotal,
		mangoRequestsTotal,
		mangoLatencyMs,
	)
}

var (
	registrationsPreparedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "card_registrations_prepared_total",
			Help: "Card registration sessions prepared.",
		},
	)

	registrationCallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "card_registration_callbacks_total",
			Help: "Callback reconciliations by terminal outcome (validated/error_in_validating/error).",
		},
		[]string{"outcome"},
	)

	mangoRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mango_api_requests_total",
			Help: "MangoPay API calls by operation and success.",
		},
		[]string{"op", "success"},
	)

	mangoLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mango_api_latency_ms",
			Help:    "MangoPay API call latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
		},
		[]string{"op"},
	)
)

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func IncPrepared() {
	registrationsPreparedTotal.Inc()
}

func IncCallback(outcome string) {
	registrationCallbacksTotal.WithLabelValues(norm(outcome)).Inc()
}

func ObserveMangoRequest(op string, success bool, d time.Duration) {
	mangoRequestsTotal.WithLabelValues(norm(op), strconv.FormatBool(success)).Inc()
	mangoLatencyMs.WithLabelValues(norm(op)).Observe(float64(d.Milliseconds()))
}
