package search

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "knowhub_search",
		Name:      "requests_total",
		Help:      "List requests issued for effective criteria changes.",
	})
	discardedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "knowhub_search",
		Name:      "discarded_total",
		Help:      "Responses dropped because a newer request had been issued.",
	})
	failuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "knowhub_search",
		Name:      "failures_total",
		Help:      "Authoritative responses that failed and were shown as empty.",
	})
)
