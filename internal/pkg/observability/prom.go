package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ServiceName = "bookingbackend"
)

var (
	CountQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    prometheus.BuildFQName(ServiceName, "metrics", "count_query_duration_seconds"),
		Help:    "Duration of record store count queries in seconds, including failed ones",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"query"})
	CountQueryFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(ServiceName, "metrics", "count_query_failures_total"),
		Help: "Count queries substituted with zero, by query and failure kind",
	}, []string{"query", "kind"})
	SnapshotValue = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: prometheus.BuildFQName(ServiceName, "metrics", "snapshot_value"),
		Help: "Value of each derived metric in the most recently computed snapshot",
	}, []string{"metric"})
	SnapshotDegraded = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: prometheus.BuildFQName(ServiceName, "metrics", "snapshot_degraded"),
		Help: "Whether each derived metric of the most recently computed snapshot is degraded (1) or not (0)",
	}, []string{"metric"})
	WorkerRefreshDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: prometheus.BuildFQName(ServiceName, "worker", "refresh_duration_seconds"),
		Help: "Duration of last dashboard refresh run by the worker in seconds",
	}, []string{"worker"})
)
