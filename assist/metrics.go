package assist

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var runsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "knowhub_assist",
		Name:      "runs_total",
		Help:      "AI actions by outcome (invalid, ok, failed, discarded).",
	},
	[]string{"action", "outcome"},
)
