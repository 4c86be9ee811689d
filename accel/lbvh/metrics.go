package lbvh

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	kernelLabel    = "kernel"
	errorTypeLabel = "error_type"
)

var (
	buildsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lbvh_builds_total",
		Help: "The number of completed acceleration structure builds.",
	})

	buildErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lbvh_build_errors_total",
		Help: "The errors that occurred while building acceleration structures.",
	}, []string{
		errorTypeLabel,
	})

	leavesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lbvh_leaves_total",
		Help: "The number of leaves processed by completed builds.",
	})

	kernelDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lbvh_kernel_duration_seconds",
		Help:    "The time to execute a builder kernel dispatch.",
		Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
	}, []string{
		kernelLabel,
	})
)

func instrumentKernel(kt kernelType, elapsed time.Duration) {
	kernelDuration.With(prometheus.Labels{
		kernelLabel: kt.String(),
	}).Observe(elapsed.Seconds())
}

func instrumentBuild(stats *Stats) {
	buildsTotal.Inc()
	leavesTotal.Add(float64(stats.Leaves))
}

func instrumentBuildError(err error) {
	buildErrors.With(prometheus.Labels{
		errorTypeLabel: errorType(err),
	}).Inc()
}

// Map an error to a low cardinality label value.
func errorType(err error) string {
	switch {
	case errors.Is(err, ErrNoLeaves):
		return "no_leaves"
	case errors.Is(err, ErrBufferTooSmall):
		return "buffer_too_small"
	case errors.Is(err, ErrScratchTooSmall):
		return "scratch_too_small"
	case errors.Is(err, ErrDegenerateBounds):
		return "degenerate_bounds"
	case errors.Is(err, ErrLeafCountMismatch):
		return "leaf_count_mismatch"
	case errors.Is(err, ErrMisalignedOffset):
		return "misaligned_offset"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}
	return "internal"
}
