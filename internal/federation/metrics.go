package federation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	batchSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "federation_batch_size",
		Help:    "Number of keys resolved by one deferred field batch.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	}, []string{"resolver"})

	subgraphRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "federation_subgraph_requests_total",
		Help: "Subgraph calls by service and outcome.",
	}, []string{"service", "outcome"})

	subgraphLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "federation_subgraph_request_duration_seconds",
		Help:    "Latency of single subgraph call attempts.",
		Buckets: prometheus.DefBuckets,
	}, []string{"service"})
)
