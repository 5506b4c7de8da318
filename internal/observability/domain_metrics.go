package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	modelRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "querydeck_model_requests_total",
			Help: "Total number of hosted model invocations by task.",
		},
		[]string{"task", "status"},
	)
	modelLatencySeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "querydeck_model_latency_seconds",
			Help:    "Round-trip latency of hosted model invocations.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"task"},
	)
	extractionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "querydeck_extractions_total",
			Help: "Structured-response extractions by task and extraction tier.",
		},
		[]string{"task", "tier"},
	)
	queriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "querydeck_queries_total",
			Help: "SQL executions against the demo store by outcome.",
		},
		[]string{"status"},
	)
	queryDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "querydeck_query_duration_seconds",
			Help:    "SQL execution latency against the demo store.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)
	exportObjectsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "querydeck_export_objects_total",
			Help: "Total number of dataset objects published to the object store.",
		},
	)
	exportBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "querydeck_export_bytes_total",
			Help: "Total bytes of dataset objects published to the object store.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		modelRequestsTotal,
		modelLatencySeconds,
		extractionsTotal,
		queriesTotal,
		queryDurationSeconds,
		exportObjectsTotal,
		exportBytesTotal,
	)
}

func ObserveModelRequest(task string, elapsed time.Duration, ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	modelRequestsTotal.WithLabelValues(task, status).Inc()
	modelLatencySeconds.WithLabelValues(task).Observe(elapsed.Seconds())
}

func ObserveExtraction(task, tier string) {
	extractionsTotal.WithLabelValues(task, tier).Inc()
}

func ObserveQuery(elapsed time.Duration, ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	queriesTotal.WithLabelValues(status).Inc()
	queryDurationSeconds.Observe(elapsed.Seconds())
}

func ObserveExport(objects int, bytes int64) {
	if objects > 0 {
		exportObjectsTotal.Add(float64(objects))
	}
	if bytes > 0 {
		exportBytesTotal.Add(float64(bytes))
	}
}
