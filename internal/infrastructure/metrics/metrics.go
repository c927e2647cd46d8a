package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Relay metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "codedrop",
			Subsystem: "relay",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "codedrop",
			Subsystem: "relay",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	// Upload counters
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "codedrop",
			Subsystem: "relay",
			Name:      "uploads_total",
			Help:      "Total file uploads by outcome",
		},
		[]string{"status"},
	)

	// Upload bytes counter
	UploadBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "codedrop",
			Subsystem: "relay",
			Name:      "upload_bytes_total",
			Help:      "Total decoded bytes accepted",
		},
	)

	// Code collisions seen on conditional insert
	CodeCollisionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "codedrop",
			Subsystem: "relay",
			Name:      "code_collisions_total",
			Help:      "Issued codes rejected because a live record already held them",
		},
	)

	// Resolve outcomes
	ResolvesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "codedrop",
			Subsystem: "relay",
			Name:      "resolves_total",
			Help:      "Code resolutions by outcome",
		},
		[]string{"outcome"},
	)

	// Feedback submissions
	FeedbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "codedrop",
			Subsystem: "relay",
			Name:      "feedback_total",
			Help:      "Feedback submissions by outcome",
		},
		[]string{"status"},
	)

	// Store operations counter
	StoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "codedrop",
			Subsystem: "relay",
			Name:      "store_operations_total",
			Help:      "Total blob/record/feedback store operations",
		},
		[]string{"store", "operation", "status"},
	)

	// Store operation duration
	StoreDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "codedrop",
			Subsystem: "relay",
			Name:      "store_duration_seconds",
			Help:      "Store operation duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"store", "operation"},
	)

	// Presign URL duration
	PresignDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "codedrop",
			Subsystem: "relay",
			Name:      "presign_duration_seconds",
			Help:      "Signed URL generation duration in seconds",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	// Janitor removals
	JanitorSweptTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "codedrop",
			Subsystem: "relay",
			Name:      "janitor_swept_total",
			Help:      "Expired entries removed by background sweeps",
		},
		[]string{"sweeper"},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordUpload records a file upload
func RecordUpload(status string, bytes int64) {
	UploadsTotal.WithLabelValues(status).Inc()
	if status == "success" {
		UploadBytesTotal.Add(float64(bytes))
	}
	otelRecordUpload(status, bytes)
}

// RecordCodeCollision counts a rejected conditional insert.
func RecordCodeCollision() {
	CodeCollisionsTotal.Inc()
}

// RecordResolve records a resolve outcome (ok, not_found, expired, invalid, error).
func RecordResolve(outcome string) {
	ResolvesTotal.WithLabelValues(outcome).Inc()
	otelRecordResolve(outcome)
}

// RecordFeedback records a feedback submission
func RecordFeedback(status string) {
	FeedbackTotal.WithLabelValues(status).Inc()
	otelRecordFeedback(status)
}

// RecordStoreOperation records a store call started at start.
func RecordStoreOperation(store, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	elapsed := time.Since(start).Seconds()
	StoreOperationsTotal.WithLabelValues(store, operation, status).Inc()
	StoreDuration.WithLabelValues(store, operation).Observe(elapsed)
	otelRecordStore(store, operation, status, elapsed)
}

// RecordPresign records signed URL generation
func RecordPresign(durationSec float64) {
	PresignDuration.Observe(durationSec)
	otelRecordPresign(durationSec)
}

// RecordSwept records entries removed by a sweeper
func RecordSwept(sweeper string, count int) {
	if count > 0 {
		JanitorSweptTotal.WithLabelValues(sweeper).Add(float64(count))
		otelRecordSwept(sweeper, count)
	}
}
