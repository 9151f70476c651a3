package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	reconcileOps      *prometheus.CounterVec
	jobsLive          prometheus.Gauge
	executions        *prometheus.CounterVec
	executionDuration *prometheus.HistogramVec
	datapointsWritten prometheus.Counter
	errorsTotal       *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		reconcileOps: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetcast_reconcile_operations_total",
				Help: "Schedule changes applied by config reconciliation",
			},
			[]string{"op"},
		),
		jobsLive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "assetcast_jobs_live",
				Help: "Number of currently scheduled jobs",
			},
		),
		executions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetcast_job_executions_total",
				Help: "Completed job executions by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		executionDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "assetcast_job_duration_seconds",
				Help:    "Duration of job executions in seconds",
				Buckets: []float64{.1, .5, 1, 5, 15, 60, 300, 900},
			},
			[]string{"kind"},
		),
		datapointsWritten: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "assetcast_forecast_datapoints_written_total",
				Help: "Forecast datapoints written to the predicted store",
			},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetcast_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

// RecordReconcile records one reconciliation pass's schedule changes.
func (r *Recorder) RecordReconcile(created, replaced, removed int) {
	r.reconcileOps.WithLabelValues("created").Add(float64(created))
	r.reconcileOps.WithLabelValues("replaced").Add(float64(replaced))
	r.reconcileOps.WithLabelValues("removed").Add(float64(removed))
}

// SetJobsLive sets the live job gauge.
func (r *Recorder) SetJobsLive(n int) {
	r.jobsLive.Set(float64(n))
}

// RecordExecution records one finished job execution.
func (r *Recorder) RecordExecution(kind, outcome string, seconds float64) {
	r.executions.WithLabelValues(kind, outcome).Inc()
	r.executionDuration.WithLabelValues(kind).Observe(seconds)
}

// RecordDatapointsWritten counts forecast datapoints persisted.
func (r *Recorder) RecordDatapointsWritten(n int) {
	r.datapointsWritten.Add(float64(n))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
