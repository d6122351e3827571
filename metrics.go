package kube

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics instruments client requests. Attach one to a Client with
// WithMetrics; a nil *Metrics records nothing, so instrumentation is
// strictly opt-in.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the request metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kube_client_requests_total",
				Help: "Total API requests by verb and HTTP status code.",
			},
			[]string{"verb", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kube_client_request_duration_seconds",
				Help:    "API request latency by verb.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"verb"},
		),
	}

	reg.MustRegister(m.requests, m.duration)

	return m
}

func (m *Metrics) record(verb string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(verb, strconv.Itoa(code)).Inc()
	m.duration.WithLabelValues(verb).Observe(d.Seconds())
}
