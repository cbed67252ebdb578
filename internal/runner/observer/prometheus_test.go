package observer

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r, err := NewPrometheusRecorder(reg)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	ctx := context.Background()

	r.ObserveCompile(ctx, "c", true, 120*time.Millisecond)
	r.ObserveCompile(ctx, "c", false, 80*time.Millisecond)
	r.ObserveRun(ctx, "py", "ok", 10*time.Millisecond)
	r.ObserveRun(ctx, "py", "ok", 15*time.Millisecond)
	r.ObserveRun(ctx, "py", "timeout", time.Second)

	if got := testutil.ToFloat64(r.compileTotal.WithLabelValues("c", "false")); got != 1 {
		t.Fatalf("failed compiles = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.runTotal.WithLabelValues("py", "ok")); got != 2 {
		t.Fatalf("ok runs = %v, want 2", got)
	}
	if got := testutil.CollectAndCount(r.runDuration); got != 1 {
		t.Fatalf("run duration series = %d, want 1", got)
	}
}

func TestPrometheusRecorderRejectsDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPrometheusRecorder(reg); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := NewPrometheusRecorder(reg); err == nil {
		t.Fatal("expected duplicate registration error")
	}
}
