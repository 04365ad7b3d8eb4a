package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	reportRequestsTotal  *prometheus.CounterVec
	reportLatencySeconds *prometheus.HistogramVec
	reportErrorsTotal    *prometheus.CounterVec
	reportRunsTotal      *prometheus.CounterVec
	reportRowsReturned   *prometheus.HistogramVec
	reportRenderSeconds  *prometheus.HistogramVec
	reportEmptyShortcuts *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the report API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		reportRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "report_http_requests_total",
			Help: "Total number of report and export API requests served.",
		}, []string{"method", "route", "status"})

		reportLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "report_http_latency_seconds",
			Help:    "Latency distribution for report and export API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		}, []string{"method", "route"})

		reportErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "report_http_errors_total",
			Help: "Total number of error responses returned by report and export endpoints.",
		}, []string{"method", "route", "status"})

		reportRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "report_runs_total",
			Help: "Report invocations by output format, scope kind and outcome.",
		}, []string{"format", "scope", "outcome"})

		reportRowsReturned = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "report_rows_returned",
			Help:    "Rows projected per report invocation.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"format"})

		reportRenderSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "report_projection_seconds",
			Help:    "Time spent projecting a result set into its output format.",
			Buckets: prometheus.DefBuckets,
		}, []string{"format"})

		reportEmptyShortcuts = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "report_empty_filters_total",
			Help: "Reports answered without querying submissions because no owner could match.",
		}, []string{"scope"})

		prometheus.MustRegister(
			reportRequestsTotal,
			reportLatencySeconds,
			reportErrorsTotal,
			reportRunsTotal,
			reportRowsReturned,
			reportRenderSeconds,
			reportEmptyShortcuts,
		)
	})
}

// ReportRequests exposes the counter for report HTTP requests.
func ReportRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return reportRequestsTotal
}

// ReportLatency exposes the latency histogram for report HTTP requests.
func ReportLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return reportLatencySeconds
}

// ReportErrors exposes the counter for report error responses.
func ReportErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return reportErrorsTotal
}

// ReportRuns counts façade invocations.
func ReportRuns() *prometheus.CounterVec {
	RegisterMetrics()
	return reportRunsTotal
}

// ReportRows records how many rows each invocation projected.
func ReportRows() *prometheus.HistogramVec {
	RegisterMetrics()
	return reportRowsReturned
}

// ReportProjectionDuration records projection time per format.
func ReportProjectionDuration() *prometheus.HistogramVec {
	RegisterMetrics()
	return reportRenderSeconds
}

// ReportEmptyFilters counts short-circuited reports.
func ReportEmptyFilters() *prometheus.CounterVec {
	RegisterMetrics()
	return reportEmptyShortcuts
}
