package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campus_flow_http_requests_total",
			Help: "Total number of HTTP requests processed by the API.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "campus_flow_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	wsActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "campus_flow_ws_active_connections",
			Help: "Number of active websocket sessions.",
		},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campus_flow_ws_events_total",
			Help: "Total number of websocket protocol events.",
		},
		[]string{"event"},
	)
	roomMembersGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "campus_flow_room_members",
			Help: "Current number of live sessions per room.",
		},
		[]string{"event_id"},
	)
	moderationActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campus_flow_moderation_actions_total",
			Help: "Total number of moderation actions.",
		},
		[]string{"action", "path"},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "campus_flow_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		wsActiveConnections,
		wsEventsTotal,
		roomMembersGauge,
		moderationActionsTotal,
		amqpPublishErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func IncWSActive() {
	wsActiveConnections.Inc()
}

func DecWSActive() {
	wsActiveConnections.Dec()
}

func IncWSEvent(event string) {
	wsEventsTotal.WithLabelValues(event).Inc()
}

func SetRoomMembers(eventID, count int) {
	label := strconv.Itoa(eventID)
	if count == 0 {
		roomMembersGauge.DeleteLabelValues(label)
		return
	}
	roomMembersGauge.WithLabelValues(label).Set(float64(count))
}

func IncModerationAction(action, path string) {
	moderationActionsTotal.WithLabelValues(action, path).Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
