package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Jobs colectores Prometheus de los trabajos de propagación.
type Jobs struct {
	runs     *prometheus.CounterVec
	failures *prometheus.CounterVec
	dropped  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var (
	defaultOnce sync.Once
	defaultJobs *Jobs
)

// NewJobs registra las métricas en el registerer dado; con nil usa el registerer por defecto
// (una sola vez por proceso).
func NewJobs(registerer prometheus.Registerer) *Jobs {
	if registerer == nil {
		defaultOnce.Do(func() {
			defaultJobs = build(prometheus.DefaultRegisterer)
		})
		return defaultJobs
	}
	return build(registerer)
}

// Tracker mide una ejecución de un trabajo.
type Tracker struct {
	jobs  *Jobs
	job   string
	start time.Time
}

// Track inicia la medición de un trabajo. Un *Jobs nil produce un tracker inerte.
func (m *Jobs) Track(job string) *Tracker {
	return &Tracker{jobs: m, job: job, start: time.Now()}
}

// End registra duración y resultado; devuelve err sin modificarlo.
func (t *Tracker) End(err error) error {
	if t == nil || t.jobs == nil || t.job == "" {
		return err
	}
	status := "success"
	if err != nil {
		status = "failure"
		t.jobs.failures.WithLabelValues(t.job).Inc()
	}
	t.jobs.runs.WithLabelValues(t.job, status).Inc()
	t.jobs.duration.WithLabelValues(t.job).Observe(time.Since(t.start).Seconds())
	return err
}

// Dropped cuenta un trabajo descartado tras agotar los reintentos.
func (m *Jobs) Dropped(job string) {
	if m == nil {
		return
	}
	m.dropped.WithLabelValues(job).Inc()
}

func build(registerer prometheus.Registerer) *Jobs {
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_ledger_jobs_total",
		Help: "Ejecuciones de trabajos de propagación por trabajo y estado.",
	}, []string{"job", "status"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_ledger_jobs_failures_total",
		Help: "Fallos de trabajos de propagación.",
	}, []string{"job"})
	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_ledger_jobs_dropped_total",
		Help: "Trabajos descartados tras agotar los reintentos.",
	}, []string{"job"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stock_ledger_job_duration_seconds",
		Help:    "Duración en segundos de los trabajos de propagación.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	registerer.MustRegister(runs, failures, dropped, duration)
	return &Jobs{runs: runs, failures: failures, dropped: dropped, duration: duration}
}
