package observability

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rpggio/plantree/internal/domain"
)

const (
	namespace = "plantree"
	subsystem = "core"
)

var (
	// operationsTotal counts core operations by component, operation and result.
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "operations_total",
		Help:      "Total core operations by component, operation and result",
	}, []string{"component", "operation", "result"})

	// operationDuration tracks core operation latency.
	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "operation_duration_seconds",
		Help:      "Core operation duration in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
	}, []string{"component", "operation"})

	// renumberWrites tracks how many numbers a renumber pass rewrote.
	renumberWrites = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "renumber_writes",
		Help:      "Number writes issued per renumber pass",
		Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
	})

	// resyncFailures counts post-mutation renumber passes that failed.
	resyncFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "resync_failures_total",
		Help:      "Renumber resyncs that failed after a committed mutation",
	})

	// timelineExcluded counts objects and edges left out of a layout.
	timelineExcluded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "timeline_excluded_total",
		Help:      "Objects or edges excluded from a timeline layout",
	}, []string{"kind"})
)

// ObserveOperation records the outcome and latency of a core operation.
func ObserveOperation(component, operation string, start time.Time, err error) {
	operationsTotal.WithLabelValues(component, operation, Result(err)).Inc()
	operationDuration.WithLabelValues(component, operation).Observe(time.Since(start).Seconds())
}

// RecordRenumberWrites records the number writes of one renumber pass.
func RecordRenumberWrites(n int) {
	renumberWrites.Observe(float64(n))
}

// RecordResyncFailure counts a failed post-mutation resync.
func RecordResyncFailure() {
	resyncFailures.Inc()
}

// RecordTimelineExcluded counts n excluded items of kind "bar" or "curve".
func RecordTimelineExcluded(kind string, n int) {
	if n > 0 {
		timelineExcluded.WithLabelValues(kind).Add(float64(n))
	}
}

// Result maps err onto a low-cardinality label value.
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrAccessDenied):
		return "access_denied"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}
