// Package observer defines metrics hooks for code execution.
package observer

import (
	"context"
	"time"
)

// MetricsRecorder records execution metrics.
type MetricsRecorder interface {
	ObserveCompile(ctx context.Context, language string, ok bool, duration time.Duration)
	ObserveRun(ctx context.Context, language string, status string, duration time.Duration)
}

// NoopMetricsRecorder discards everything.
type NoopMetricsRecorder struct{}

func (NoopMetricsRecorder) ObserveCompile(ctx context.Context, language string, ok bool, duration time.Duration) {
}

func (NoopMetricsRecorder) ObserveRun(ctx context.Context, language string, status string, duration time.Duration) {
}
