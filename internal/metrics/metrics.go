package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// AssetMutations counts successful asset writes by op (create, update, delete, bulk_delete, import).
	AssetMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asset_mutations_total",
			Help: "Total number of successful asset mutations by operation",
		},
		[]string{"op"},
	)

	// ImportRows counts CSV import rows by outcome (imported, skipped).
	ImportRows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "asset_import_rows_total",
			Help: "Total number of CSV import rows by outcome",
		},
		[]string{"outcome"},
	)
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	assetIDPathSegment = regexp.MustCompile(`/[A-Za-z]+-[0-9]+(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, AssetMutations, ImportRows)
	})
}

// NormalizePath reduces cardinality by replacing numeric and asset identifier
// segments with {id}. E.g. /assets/SRV-001 -> /assets/{id}.
func NormalizePath(path string) string {
	path = assetIDPathSegment.ReplaceAllString(path, "/{id}$1")
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request. Call from middleware with method, path, statusCode, duration.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// IncMutation counts one successful asset mutation.
func IncMutation(op string) {
	AssetMutations.WithLabelValues(op).Inc()
}

// AddImportRows adds import row counts.
func AddImportRows(imported, skipped int) {
	ImportRows.WithLabelValues("imported").Add(float64(imported))
	ImportRows.WithLabelValues("skipped").Add(float64(skipped))
}
