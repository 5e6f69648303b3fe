package download

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ytget/yt-grabber/internal/model"
)

// MetricsNamespace prefixes every metric name
const MetricsNamespace = "ytgrab"

// Task results used as metric labels
const (
	ResultCompleted = "completed"
	ResultFailed    = "failed"
	ResultStopped   = "stopped"
)

// Metrics records task outcomes. A nil *Metrics records nothing.
type Metrics struct {
	tasksTotal      *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	durationSeconds *prometheus.HistogramVec
	inProgress      prometheus.Gauge
}

// NewMetrics creates the task metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		tasksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Name:      "tasks_total",
				Help:      "Finished acquisition tasks by mode and result.",
			},
			[]string{"mode", "result"},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: MetricsNamespace,
				Name:      "errors_total",
				Help:      "Failed acquisition tasks by error kind.",
			},
			[]string{"kind"},
		),
		durationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: MetricsNamespace,
				Name:      "task_duration_seconds",
				Help:      "Run time of acquisition tasks.",
				Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
			},
			[]string{"mode"},
		),
		inProgress: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: MetricsNamespace,
				Name:      "tasks_in_progress",
				Help:      "Acquisition tasks currently running.",
			},
		),
	}

	reg.MustRegister(m.tasksTotal, m.errorsTotal, m.durationSeconds, m.inProgress)
	return m
}

func (m *Metrics) started() {
	if m == nil {
		return
	}
	m.inProgress.Inc()
}

func (m *Metrics) finished(task *model.DownloadTask, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.inProgress.Dec()

	mode := task.Mode()
	switch task.Status {
	case model.TaskStatusCompleted:
		m.tasksTotal.WithLabelValues(mode, ResultCompleted).Inc()
		m.durationSeconds.WithLabelValues(mode).Observe(elapsed.Seconds())
	case model.TaskStatusStopped:
		m.tasksTotal.WithLabelValues(mode, ResultStopped).Inc()
	default:
		m.tasksTotal.WithLabelValues(mode, ResultFailed).Inc()
		m.errorsTotal.WithLabelValues(task.ErrorKind).Inc()
	}
}
