// Package metrics exposes pipeline run metrics in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the ETL collectors on a private Prometheus registry. It
// implements pipeline.Recorder.
type Registry struct {
	reg            *prometheus.Registry
	Runs           *prometheus.CounterVec
	RunDuration    prometheus.Histogram
	RowsWritten    *prometheus.CounterVec
	EntityFailures *prometheus.CounterVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "etl_runs_total",
		Help: "Pipeline runs by final status.",
	}, []string{"status"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "etl_run_duration_seconds",
		Help:    "Wall time of pipeline runs.",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 900},
	})
	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "etl_rows_written_total",
		Help: "Rows written to the sink by entity.",
	}, []string{"entity"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "etl_entity_failures_total",
		Help: "Entity writes that failed.",
	}, []string{"entity"})

	r.MustRegister(runs, duration, rows, failures)
	return &Registry{
		reg:            r,
		Runs:           runs,
		RunDuration:    duration,
		RowsWritten:    rows,
		EntityFailures: failures,
	}
}

// RunFinished records a completed run.
func (r *Registry) RunFinished(status string, d time.Duration) {
	r.Runs.WithLabelValues(status).Inc()
	r.RunDuration.Observe(d.Seconds())
}

// TableWritten records rows written for entity.
func (r *Registry) TableWritten(entity string, rows int) {
	r.RowsWritten.WithLabelValues(entity).Add(float64(rows))
}

// EntityFailed records a failed entity write.
func (r *Registry) EntityFailed(entity string) {
	r.EntityFailures.WithLabelValues(entity).Inc()
}

// MustRegister adds extra collectors, such as limiter gauges, to the registry.
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	r.reg.MustRegister(cs...)
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
