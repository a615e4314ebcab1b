package eventloop

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	postedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "knowhub",
			Subsystem: "loop",
			Name:      "posted_total",
			Help:      "Callbacks accepted onto the event loop.",
		},
		[]string{"loop"},
	)

	queueFullTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "knowhub",
			Subsystem: "loop",
			Name:      "queue_full_total",
			Help:      "Posts rejected because the queue stayed full.",
		},
		[]string{"loop"},
	)

	panicsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "knowhub",
			Subsystem: "loop",
			Name:      "callback_panics_total",
			Help:      "Callbacks that panicked and were recovered.",
		},
		[]string{"loop"},
	)

	runDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "knowhub",
			Subsystem: "loop",
			Name:      "callback_seconds",
			Help:      "Time spent running a single callback.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
		},
		[]string{"loop"},
	)

	queueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "knowhub",
			Subsystem: "loop",
			Name:      "queue_depth",
			Help:      "Callbacks waiting to run.",
		},
		[]string{"loop"},
	)
)
