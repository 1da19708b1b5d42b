package imagefetch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// results of an image request
const (
	resultMemory  = "memory"
	resultShared  = "shared"
	resultFetched = "fetched"
	resultFailed  = "failed"
)

var (
	metricRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bbstyle",
		Subsystem: "imagefetch",
		Name:      "requests_total",
		Help:      "Image requests by where the image came from.",
	}, []string{"result"})
	metricMerged = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bbstyle",
		Subsystem: "imagefetch",
		Name:      "merged_requests_total",
		Help:      "Image requests served by a concurrent request for the same URL.",
	})
	metricDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "bbstyle",
		Subsystem: "imagefetch",
		Name:      "download_duration_seconds",
		Help:      "Time spent downloading images from the remote endpoint.",
		Buckets:   prometheus.DefBuckets,
	})
)
