package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bbstyle",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	metricLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bbstyle",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
)

// metricsMiddleware counts requests by the matched route, so path params don't blow up the labels.
func metricsMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}

		metricRequests.WithLabelValues(route, strconv.Itoa(ctx.Writer.Status())).Inc()
		metricLatency.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
