package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CheckIns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "attendance",
		Name:      "checkins_total",
		Help:      "Total number of successful check-ins",
	}, []string{"status"})

	CheckOuts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "attendance",
		Name:      "checkouts_total",
		Help:      "Total number of successful check-outs",
	})

	LoginFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "attendance",
		Name:      "login_failures_total",
		Help:      "Total number of failed login attempts",
	})

	Registrations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "attendance",
		Name:      "registrations_total",
		Help:      "Total number of registered identities",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "attendance",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "attendance",
		Name:      "ws_connections",
		Help:      "Number of active WebSocket connections",
	})
)
