// Package metrics exposes Prometheus collectors for the catalog pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Source traffic
	SourceRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_source_requests_total",
		Help: "Requests sent to the catalog data source.",
	}, []string{"source", "endpoint", "status"}) // status: ok, error, rate_limited, not_found

	SourceRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_source_request_duration_seconds",
		Help:    "Duration of data source requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source", "endpoint"})

	// Cache
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_cache_lookups_total",
		Help: "Cache lookups by namespace and result.",
	}, []string{"namespace", "result"}) // result: hit, miss, error

	// Pipeline
	UnresolvedItems = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_unresolved_items_total",
		Help: "Detail records skipped because they failed to fetch or normalize.",
	})

	QueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_query_duration_seconds",
		Help:    "Duration of catalog queries in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"}) // result: ok, cached, error

	SupersededQueries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_superseded_queries_total",
		Help: "Feed queries discarded because a newer query was submitted.",
	})

	CatalogCards = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_cards",
		Help: "Number of normalized cards in the most recent catalog window.",
	})
)

// RecordSourceRequest counts a source request and observes its duration.
func RecordSourceRequest(source, endpoint, status string, start time.Time) {
	SourceRequests.WithLabelValues(source, endpoint, status).Inc()
	SourceRequestDuration.WithLabelValues(source, endpoint).Observe(time.Since(start).Seconds())
}

// RecordCacheLookup counts a cache lookup.
func RecordCacheLookup(namespace, result string) {
	CacheLookups.WithLabelValues(namespace, result).Inc()
}

// RecordQueryDuration records the time taken by a catalog query.
func RecordQueryDuration(result string, start time.Time) {
	QueryDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
}
