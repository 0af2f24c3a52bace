package taskqueue

import "time"

// MetricsRecorder defines the interface for recording queue metrics.
type MetricsRecorder interface {
	IncQueueDepth(queueName string)
	DecQueueDepth(queueName string)
	RecordTaskRun(queueName string, duration time.Duration)
	RecordDelayedLateness(queueName string, lateness time.Duration)
}

// nopMetrics is a no-op implementation of MetricsRecorder.
type nopMetrics struct{}

func (n *nopMetrics) IncQueueDepth(queueName string)                                 {}
func (n *nopMetrics) DecQueueDepth(queueName string)                                 {}
func (n *nopMetrics) RecordTaskRun(queueName string, duration time.Duration)         {}
func (n *nopMetrics) RecordDelayedLateness(queueName string, lateness time.Duration) {}
