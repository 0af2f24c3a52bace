package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// initQueueMetrics initializes task queue metrics.
func (m *Manager) initQueueMetrics(cfg Config) {
	m.queueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "taskqueue_depth",
			Help: "Current number of pending tasks per queue",
		},
		[]string{"queue_name"},
	)

	m.queueTaskDur = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskqueue_task_duration_seconds",
			Help:    "Task execution time on the worker goroutine",
			Buckets: cfg.TaskDurationBuckets,
		},
		[]string{"queue_name"},
	)

	m.queueLateness = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskqueue_delayed_lateness_seconds",
			Help:    "How far past its fire time a delayed task started",
			Buckets: cfg.LatenessBuckets,
		},
		[]string{"queue_name"},
	)

	m.queueThroughput = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskqueue_tasks_total",
			Help: "Total number of tasks executed per queue",
		},
		[]string{"queue_name"},
	)

	m.registry.MustRegister(m.queueDepth)
	m.registry.MustRegister(m.queueTaskDur)
	m.registry.MustRegister(m.queueLateness)
	m.registry.MustRegister(m.queueThroughput)
}

// IncQueueDepth implements taskqueue.MetricsRecorder.
func (m *Manager) IncQueueDepth(queueName string) {
	if !m.enabled {
		return
	}
	m.queueDepth.WithLabelValues(queueName).Inc()
}

// DecQueueDepth implements taskqueue.MetricsRecorder.
func (m *Manager) DecQueueDepth(queueName string) {
	if !m.enabled {
		return
	}
	m.queueDepth.WithLabelValues(queueName).Dec()
}

// RecordTaskRun implements taskqueue.MetricsRecorder.
func (m *Manager) RecordTaskRun(queueName string, duration time.Duration) {
	if !m.enabled {
		return
	}
	m.queueTaskDur.WithLabelValues(queueName).Observe(duration.Seconds())
	m.queueThroughput.WithLabelValues(queueName).Inc()
}

// RecordDelayedLateness implements taskqueue.MetricsRecorder.
func (m *Manager) RecordDelayedLateness(queueName string, lateness time.Duration) {
	if !m.enabled {
		return
	}
	if lateness < 0 {
		lateness = 0
	}
	m.queueLateness.WithLabelValues(queueName).Observe(lateness.Seconds())
}
