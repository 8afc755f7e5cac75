package metrics

import "github.com/prometheus/client_golang/prometheus"

// Aggregation Prometheus metrics.
var (
	AggregationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zagg",
			Name:      "aggregations_total",
			Help:      "Total number of sorted set aggregations",
		},
		[]string{"op", "aggregate", "status"},
	)

	AggregationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "zagg",
			Name:      "aggregation_duration_seconds",
			Help:      "Sorted set aggregation duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		},
		[]string{"op"},
	)

	AggregationSourceKeys = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "zagg",
			Name:      "aggregation_source_keys",
			Help:      "Number of source keys per aggregation",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		},
		[]string{"op"},
	)
)

var aggMetricsRegistered bool

// RegisterAggregationMetrics registers Prometheus aggregation metrics. Must be called once from main.
func RegisterAggregationMetrics() {
	if aggMetricsRegistered {
		return
	}
	prometheus.MustRegister(AggregationsTotal)
	prometheus.MustRegister(AggregationDuration)
	prometheus.MustRegister(AggregationSourceKeys)
	aggMetricsRegistered = true
}
