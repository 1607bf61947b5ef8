package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type ScheduleMetrics struct {
	jobRuns     *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec
	lastSuccess *prometheus.GaugeVec
}

var (
	scheduleOnce     sync.Once
	scheduleRegistry *ScheduleMetrics
)

func Schedule() *ScheduleMetrics {
	scheduleOnce.Do(func() {
		scheduleRegistry = &ScheduleMetrics{
			jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "scheduler_job_runs_total",
				Help: "Count of scheduler job executions by job and outcome.",
			}, []string{"job", "outcome"}),
			jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "scheduler_job_duration_seconds",
				Help:    "Execution time distribution per scheduler job.",
				Buckets: prometheus.DefBuckets,
			}, []string{"job"}),
			lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "scheduler_job_last_success_timestamp_seconds",
				Help: "Unix timestamp of the last successful run per job.",
			}, []string{"job"}),
		}
		prometheus.MustRegister(
			scheduleRegistry.jobRuns,
			scheduleRegistry.jobDuration,
			scheduleRegistry.lastSuccess,
		)
	})
	return scheduleRegistry
}

func (m *ScheduleMetrics) ObserveRun(job string, seconds float64, err error) {
	if m == nil {
		return
	}
	if job == "" {
		job = "unknown"
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.jobRuns.WithLabelValues(job, outcome).Inc()
	m.jobDuration.WithLabelValues(job).Observe(seconds)
}

func (m *ScheduleMetrics) MarkSuccess(job string, unixSeconds float64) {
	if m == nil {
		return
	}
	if job == "" {
		job = "unknown"
	}
	m.lastSuccess.WithLabelValues(job).Set(unixSeconds)
}

func (m *ScheduleMetrics) InitJob(job string) {
	if m == nil {
		return
	}
	if job == "" {
		job = "unknown"
	}
	m.jobRuns.WithLabelValues(job, "success").Add(0)
	m.jobRuns.WithLabelValues(job, "error").Add(0)
}
