package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initCacheMetrics() {
	r.CacheRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowmap_cache_requests_total",
			Help: "Total number of cache lookups",
		},
		[]string{"key_type", "result"}, // hit, miss
	)

	r.CacheWrittenBytes = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowmap_cache_written_bytes_total",
			Help: "Total bytes written to the cache",
		},
		[]string{"key_type"},
	)
}
