package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ServiceName = "stageguide"
)

var (
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(ServiceName, "cache", "lookups_total"),
		Help: "Table lookups by the tier that served them (memory, persisted, origin)",
	}, []string{"tier", "source"})
	CacheMemoryEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: prometheus.BuildFQName(ServiceName, "cache", "memory_entries"),
		Help: "Number of tables held in the in-process cache tier",
	})
	CachePersistFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(ServiceName, "cache", "persist_failures_total"),
		Help: "Failed reads and writes against the persisted cache tier",
	}, []string{"op"})
	OriginFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    prometheus.BuildFQName(ServiceName, "origin", "fetch_duration_seconds"),
		Help:    "Duration of table downloads from the game data origin in seconds",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"source", "status"})
	RefreshTablesUpdated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(ServiceName, "refresh", "tables_total"),
		Help: "Tables processed by refresh tasks by outcome",
	}, []string{"source", "outcome"})
	RefreshDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: prometheus.BuildFQName(ServiceName, "refresh", "duration_seconds"),
		Help: "Duration of the last refresh task in seconds",
	}, []string{"task_type"})
)
