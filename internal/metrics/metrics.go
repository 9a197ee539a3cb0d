package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds all Prometheus metrics for the digest service
type Metrics struct {
	SnapshotBuilds   *prometheus.CounterVec
	SnapshotDuration *prometheus.HistogramVec
	FetchFailures    *prometheus.CounterVec
	CacheEvents      *prometheus.CounterVec
}
