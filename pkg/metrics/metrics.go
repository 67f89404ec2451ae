package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts handled HTTP requests by method, path and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "universe_http_requests_total",
		Help: "Total number of HTTP requests processed.",
	}, []string{"method", "path", "status"})

	// HTTPLatency observes request duration in seconds.
	HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "universe_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	// AuthAttempts counts login and signup attempts by outcome.
	AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "universe_auth_attempts_total",
		Help: "Authentication attempts by action and result.",
	}, []string{"action", "result"})

	// NotificationsPushed counts notifications delivered over websocket.
	NotificationsPushed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "universe_notifications_pushed_total",
		Help: "Notifications pushed to connected clients.",
	})

	// RealtimeConnections tracks open websocket connections per hub.
	RealtimeConnections = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "universe_realtime_connections",
		Help: "Currently open websocket connections.",
	}, []string{"hub"})

	// ActiveSessions tracks sessions that have not expired or been revoked.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "universe_active_sessions",
		Help: "Sessions currently considered active.",
	})

	// EmailsSent counts outbound emails by kind and result.
	EmailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "universe_emails_sent_total",
		Help: "Outbound emails by kind and result.",
	}, []string{"kind", "result"})
)
