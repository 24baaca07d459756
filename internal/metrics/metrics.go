// Package metrics holds the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "social"

var (
	ActiveRecordAnomalies = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "active_record_anomalies_total",
			Help:      "Reads that found more than one active record in a single-active collection.",
		},
		[]string{"collection"},
	)

	StorageRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_retries_total",
			Help:      "Storage operations retried after a transient failure.",
		},
		[]string{"operation"},
	)

	StorageExhausted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_retries_exhausted_total",
			Help:      "Storage operations that failed after every retry attempt.",
		},
		[]string{"operation"},
	)

	ConnectionTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connection_transitions_total",
			Help:      "Connection request transitions by action (send, resend, accept, decline, cancel).",
		},
		[]string{"action"},
	)

	MessagesAppended = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_appended_total",
			Help:      "Messages appended to conversations.",
		},
	)

	MessageClockClamps = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "message_clock_clamps_total",
			Help:      "Appends whose timestamp was moved past the previous message.",
		},
	)

	ComponentUp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "component_up",
			Help:      "1 when the named dependency passed its last probe.",
		},
		[]string{"component"},
	)

	ServiceUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "service_up",
			Help:      "1 when every dependency is healthy and the service accepts traffic.",
		},
	)
)
