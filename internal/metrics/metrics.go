package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	gatewayRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "khidma",
			Name:      "gateway_requests_total",
			Help:      "Gateway requests by endpoint and outcome.",
		},
		[]string{"endpoint", "outcome"},
	)

	gatewayDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "khidma",
			Name:      "gateway_request_duration_seconds",
			Help:      "Gateway request duration by endpoint.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(gatewayRequests, gatewayDuration)
	})
}

// ObserveGateway records one gateway request outcome and its duration.
func ObserveGateway(endpoint, outcome string, elapsed time.Duration) {
	gatewayRequests.WithLabelValues(endpoint, outcome).Inc()
	gatewayDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}
