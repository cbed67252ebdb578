package observer

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "coderun"

// PrometheusRecorder exports compile and run metrics.
type PrometheusRecorder struct {
	compileTotal    *prometheus.CounterVec
	compileDuration *prometheus.HistogramVec
	runTotal        *prometheus.CounterVec
	runDuration     *prometheus.HistogramVec
}

// NewPrometheusRecorder creates the collectors and registers them with reg.
func NewPrometheusRecorder(reg prometheus.Registerer) (*PrometheusRecorder, error) {
	buckets := []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}
	r := &PrometheusRecorder{
		compileTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "compile_total",
			Help:      "Compilations by language and result.",
		}, []string{"language", "ok"}),
		compileDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "compile_duration_seconds",
			Help:      "Compilation wall time.",
			Buckets:   buckets,
		}, []string{"language"}),
		runTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "run_total",
			Help:      "Executions by language and status.",
		}, []string{"language", "status"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "run_duration_seconds",
			Help:      "Execution wall time.",
			Buckets:   buckets,
		}, []string{"language"}),
	}
	for _, c := range []prometheus.Collector{r.compileTotal, r.compileDuration, r.runTotal, r.runDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *PrometheusRecorder) ObserveCompile(ctx context.Context, language string, ok bool, duration time.Duration) {
	r.compileTotal.WithLabelValues(language, strconv.FormatBool(ok)).Inc()
	r.compileDuration.WithLabelValues(language).Observe(duration.Seconds())
}

func (r *PrometheusRecorder) ObserveRun(ctx context.Context, language string, status string, duration time.Duration) {
	r.runTotal.WithLabelValues(language, status).Inc()
	r.runDuration.WithLabelValues(language).Observe(duration.Seconds())
}
