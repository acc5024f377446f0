// Package metrics exposes Prometheus instruments for candle aggregation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result labels for the aggregations counter.
const (
	ResultOK         = "ok"
	ResultStoreError = "store_error"
	ResultError      = "error"
)

// Metrics groups the aggregation instruments. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	Aggregations *prometheus.CounterVec
	WindowRows   prometheus.Histogram
	UploadBytes  prometheus.Counter
}

// New registers the instruments with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Aggregations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tfcandle",
			Name:      "aggregations_total",
			Help:      "Candle aggregations by result.",
		}, []string{"result"}),
		WindowRows: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tfcandle",
			Name:      "window_rows",
			Help:      "Rows folded into each successful candle.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
		UploadBytes: f.NewCounter(prometheus.CounterOpts{
			Namespace: "tfcandle",
			Name:      "upload_bytes_total",
			Help:      "Bytes of uploaded price files written to storage.",
		}),
	}
}

// ObserveAggregation counts one aggregation attempt. rows is only recorded
// for successful results.
func (m *Metrics) ObserveAggregation(result string, rows int) {
	if m == nil {
		return
	}
	m.Aggregations.WithLabelValues(result).Inc()
	if result == ResultOK {
		m.WindowRows.Observe(float64(rows))
	}
}

func (m *Metrics) AddUploadBytes(n int64) {
	if m == nil {
		return
	}
	m.UploadBytes.Add(float64(n))
}
