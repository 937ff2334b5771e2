package store

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var operationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "recipes_store_operation_duration_seconds",
		Help:    "Duration of store gateway operations in seconds.",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"operation", "outcome"},
)

// observe records the duration of op. Use it with defer and a named error.
func observe(op string, start time.Time, err *error) {
	operationDuration.WithLabelValues(op, outcome(*err)).Observe(time.Since(start).Seconds())
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidKey):
		return "invalid"
	default:
		return "error"
	}
}
