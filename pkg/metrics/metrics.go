package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the gatherer served on the metrics endpoint. All collectors below
// register against the default registry via promauto.
var Registry prometheus.Gatherer = prometheus.DefaultGatherer

var (
	// Custom histogram buckets optimized for API response times ranging from milliseconds to 30+ seconds.
	// Provides granularity for identity-gateway round trips and batch provisioning calls.
	CustomAPIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21, 34, 55}

	// HTTP Metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	// Database Client Metrics (PostgreSQL)
	DBRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_client_operation_duration_seconds",
			Help:    "Database client operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	DBRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_client_operation_total",
			Help: "Total number of database client operations",
		},
		[]string{"operation", "status"},
	)

	// Identity Gateway Client Metrics
	IdentityRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "identity_client_operation_duration_seconds",
			Help:    "Identity gateway operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	IdentityRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "identity_client_operation_total",
			Help: "Total number of identity gateway operations",
		},
		[]string{"operation", "status"},
	)

	// Object Storage Client Metrics
	StorageRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storage_client_operation_duration_seconds",
			Help:    "Storage client operation duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	StorageRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storage_client_operation_total",
			Help: "Total number of storage client operations",
		},
		[]string{"operation", "status"},
	)

	// Email Delivery Metrics
	EmailDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aulanexo_email_deliveries_total",
			Help: "Total number of transactional email deliveries",
		},
		[]string{"kind", "status"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_name"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_name"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Number of entries in cache",
		},
		[]string{"cache_name"},
	)

	// Business Metrics
	ProvisioningBatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aulanexo_student_provisioning_batches_total",
			Help: "Total number of student provisioning batch requests",
		},
		[]string{"status"},
	)

	ProvisioningStudents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aulanexo_student_provisioning_students_total",
			Help: "Per-student provisioning outcomes",
		},
		[]string{"status"},
	)

	ProvisioningBatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aulanexo_student_provisioning_batch_duration_seconds",
			Help:    "Student provisioning batch duration in seconds",
			Buckets: CustomAPIBuckets,
		},
	)

	TwoFactorCodesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aulanexo_two_factor_codes_sent_total",
			Help: "Total number of 2FA codes generated and emailed",
		},
		[]string{"status"},
	)

	TwoFactorVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aulanexo_two_factor_verifications_total",
			Help: "Total number of 2FA code verification attempts",
		},
		[]string{"status"},
	)

	Enrollments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aulanexo_enrollments_total",
			Help: "Total number of enrollment/registration writes",
		},
		[]string{"product_type", "status"},
	)

	CatalogWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aulanexo_catalog_writes_total",
			Help: "Total number of catalog create/update/publish operations",
		},
		[]string{"product_type", "status"},
	)

	MediaUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aulanexo_media_uploads_total",
			Help: "Total number of media uploads to object storage",
		},
		[]string{"status"},
	)

	// Infrastructure Metrics
	GoRoutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_goroutines",
			Help: "Number of goroutines",
		},
	)

	HeapAlloc = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_mem_heap_alloc_bytes",
			Help: "Heap allocated bytes",
		},
	)
)

// RecordInfrastructureMetrics collects infrastructure metrics periodically
func RecordInfrastructureMetrics() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		for range ticker.C {
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			GoRoutines.Set(float64(runtime.NumGoroutine()))
			HeapAlloc.Set(float64(m.HeapAlloc))
		}
	}()
}

// MeasureDuration measures the duration of an operation
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}
