package metrics

import "github.com/prometheus/client_golang/prometheus"

// initDispatchMetrics initializes signal dispatch metrics.
func (m *Manager) initDispatchMetrics() {
	m.signalEmits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "signal_emits_total",
			Help: "Total number of signal emissions",
		},
	)

	m.signalDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_deliveries_total",
			Help: "Total number of slot invocations by effective delivery mode",
		},
		[]string{"mode"},
	)

	m.signalSkips = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_skips_total",
			Help: "Total number of skipped deliveries by reason",
		},
		[]string{"reason"},
	)

	m.signalConnects = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "signal_connects_total",
			Help: "Total number of slot registrations",
		},
	)

	m.signalDisconnects = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "signal_disconnects_total",
			Help: "Total number of slot removals",
		},
	)

	m.registry.MustRegister(m.signalEmits)
	m.registry.MustRegister(m.signalDeliveries)
	m.registry.MustRegister(m.signalSkips)
	m.registry.MustRegister(m.signalConnects)
	m.registry.MustRegister(m.signalDisconnects)
}

// RecordEmit implements sigslot.MetricsRecorder.
func (m *Manager) RecordEmit() {
	if !m.enabled {
		return
	}
	m.signalEmits.Inc()
}

// RecordDelivered implements sigslot.MetricsRecorder.
func (m *Manager) RecordDelivered(mode string) {
	if !m.enabled {
		return
	}
	m.signalDeliveries.WithLabelValues(mode).Inc()
}

// RecordSkipped implements sigslot.MetricsRecorder.
func (m *Manager) RecordSkipped(reason string) {
	if !m.enabled {
		return
	}
	m.signalSkips.WithLabelValues(reason).Inc()
}

// RecordConnect implements sigslot.MetricsRecorder.
func (m *Manager) RecordConnect() {
	if !m.enabled {
		return
	}
	m.signalConnects.Inc()
}

// RecordDisconnect implements sigslot.MetricsRecorder.
func (m *Manager) RecordDisconnect() {
	if !m.enabled {
		return
	}
	m.signalDisconnects.Inc()
}
