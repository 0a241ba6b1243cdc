package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "companyfinder_cache_lookups_total",
			Help: "Result cache lookups by outcome",
		},
		[]string{"result"}, // hit, miss
	)

	cacheEvictionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "companyfinder_cache_evictions_total",
			Help: "Number of times the result cache exceeded its capacity and was cleared",
		},
	)

	cacheEvictedRowsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "companyfinder_cache_evicted_rows_total",
			Help: "Rows removed by capacity clears",
		},
	)

	upstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "companyfinder_upstream_requests_total",
			Help: "Requests to the places provider by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"}, // outcome: ok, error
	)

	upstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "companyfinder_upstream_request_duration_seconds",
			Help:    "Latency of places provider requests",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint"},
	)

	degradedDetailsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "companyfinder_degraded_details_total",
			Help: "Place detail lookups that failed and produced an N/A record",
		},
	)

	searchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "companyfinder_searches_total",
			Help: "Search orchestrations by outcome",
		},
		[]string{"outcome"}, // cached, fetched, not_found, error
	)
)

func observeUpstream(endpoint string, start time.Time, err error) {
	upstreamRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	upstreamRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
}
