package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)
	authRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_rejections_total",
			Help: "Total number of unauthorized or forbidden requests",
		},
		[]string{"reason"},
	)
	checkInsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "check_ins_total",
			Help: "Check-in attempts by outcome",
		},
		[]string{"result"},
	)

	registerOnce sync.Once
)

// InitPrometheus registers the metrics. Safe to call more than once.
func InitPrometheus() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequestsTotal, httpRequestDuration, authRejections, checkInsTotal)
	})
}

// MetricsHandler serves the default prometheus registry.
func MetricsHandler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// ObserveCheckIn counts one check-in attempt; result is "created", "duplicate" or "error".
func ObserveCheckIn(result string) {
	checkInsTotal.WithLabelValues(result).Inc()
}

// Monitor records request counts and latency per route template.
func Monitor() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		path := ctx.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := ctx.Writer.Status()
		httpRequestsTotal.WithLabelValues(path, ctx.Request.Method, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(path, ctx.Request.Method).Observe(time.Since(start).Seconds())

		switch status {
		case http.StatusUnauthorized:
			authRejections.WithLabelValues("401_unauthorized").Inc()
		case http.StatusForbidden:
			authRejections.WithLabelValues("403_forbidden").Inc()
		}
	}
}
