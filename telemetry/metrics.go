// Package telemetry holds the per-node prometheus metrics.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "glomers"

// Metrics is one node's instrument set. Each node registers its own so that
// an in-process cluster can label them apart.
type Metrics struct {
	MessagesReceived *prometheus.CounterVec
	MessagesSent     *prometheus.CounterVec
	DecodeErrors     prometheus.Counter
	Ignored          *prometheus.CounterVec

	BroadcastDuplicates prometheus.Counter
	BroadcastForwarded  prometheus.Counter
	CounterReplicated   prometheus.Counter

	SeenValues   prometheus.Gauge
	CounterValue prometheus.Gauge

	HandleDuration *prometheus.HistogramVec

	startTime time.Time
}

// New creates the metrics and registers them with reg. A nil reg gets a
// private registry, which keeps tests and multiple nodes from colliding.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		MessagesReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_received_total",
				Help:      "Envelopes decoded from input, by payload type.",
			},
			[]string{"type"},
		),
		MessagesSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_sent_total",
				Help:      "Envelopes emitted, by payload type.",
			},
			[]string{"type"},
		),
		DecodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      "Input lines skipped because they did not decode.",
		}),
		Ignored: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ignored_total",
				Help:      "Envelopes with no handler in this role, by payload type.",
			},
			[]string{"type"},
		),
		BroadcastDuplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broadcast_duplicates_total",
			Help:      "Broadcast values received that were already in the seen-set.",
		}),
		BroadcastForwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broadcast_forwarded_total",
			Help:      "Broadcast messages sent to topology neighbours.",
		}),
		CounterReplicated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "counter_replicated_total",
			Help:      "Add messages sent to peer replicas.",
		}),
		SeenValues: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "seen_values",
			Help:      "Size of the broadcast seen-set.",
		}),
		CounterValue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "counter_value",
			Help:      "Current grow-only counter total.",
		}),
		HandleDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "handle_duration_seconds",
				Help:      "Time spent handling one envelope.",
				// 10µs .. ~80ms
				Buckets: prometheus.ExponentialBuckets(0.00001, 2, 14),
			},
			[]string{"type"},
		),
		startTime: time.Now(),
	}

	uptime := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Seconds since the node's metrics were created.",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	reg.MustRegister(
		m.MessagesReceived,
		m.MessagesSent,
		m.DecodeErrors,
		m.Ignored,
		m.BroadcastDuplicates,
		m.BroadcastForwarded,
		m.CounterReplicated,
		m.SeenValues,
		m.CounterValue,
		m.HandleDuration,
		uptime,
	)
	return m
}

// ObserveHandle records how long handling one envelope of type typ took.
func (m *Metrics) ObserveHandle(typ string, start time.Time) {
	m.HandleDuration.WithLabelValues(typ).Observe(time.Since(start).Seconds())
}

// Handler exposes a gatherer at /metrics.
// Mount it with mux.Handle("/metrics", telemetry.Handler(reg)).
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
