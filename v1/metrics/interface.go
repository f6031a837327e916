package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Aleph-Alpha/agentmem/v1/observability"
)

// MetricsCollector is the metrics surface used by applications. It is an
// observability.Observer and lets callers register their own series.
type MetricsCollector interface {
	observability.Observer

	CreateCounter(name, help string, labels []string) *prometheus.CounterVec
	CreateHistogram(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec
	CreateGauge(name, help string, labels []string) *prometheus.GaugeVec
}

var _ MetricsCollector = (*Metrics)(nil)
