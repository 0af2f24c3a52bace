package sigslot

import "sync"

// MetricsRecorder defines metrics hooks for dispatch operations.
type MetricsRecorder interface {
	RecordEmit()
	RecordDelivered(mode string)
	RecordSkipped(reason string)
	RecordConnect()
	RecordDisconnect()
}

type nopMetrics struct{}

func (n *nopMetrics) RecordEmit()                 {}
func (n *nopMetrics) RecordDelivered(mode string) {}
func (n *nopMetrics) RecordSkipped(reason string) {}
func (n *nopMetrics) RecordConnect()              {}
func (n *nopMetrics) RecordDisconnect()           {}

var (
	metricsMu sync.RWMutex
	metrics   MetricsRecorder = &nopMetrics{}
)

// SetMetricsRecorder sets the package-level dispatch metrics recorder.
func SetMetricsRecorder(recorder MetricsRecorder) {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	if recorder == nil {
		metrics = &nopMetrics{}
		return
	}
	metrics = recorder
}

func metricsRecorder() MetricsRecorder {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	if metrics == nil {
		return &nopMetrics{}
	}
	return metrics
}
