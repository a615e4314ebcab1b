package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "knowhub_client",
			Name:      "requests_total",
			Help:      "Gateway calls by outcome (ok, network, auth, client, server, other).",
		},
		[]string{"outcome"},
	)

	authFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "knowhub_client",
			Name:      "auth_failures_total",
			Help:      "401 responses that tore the session down.",
		},
	)
)
