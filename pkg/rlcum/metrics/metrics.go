// Package metrics exposes the entity's observability contract as
// Prometheus collectors: histograms of PDU sizes on both directions and of
// rx delay, counters of reassembly discards and protocol violations, and tx
// queue depth/HOL delay gauges.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "rlcum"

// Metrics bundles the collectors the entity reports into. The zero value is
// not usable; construct with New or NewUnregistered.
type Metrics struct {
	TxPduBytes *prometheus.HistogramVec
	RxPduBytes *prometheus.HistogramVec
	RxDelay    *prometheus.HistogramVec

	ReassemblyDiscards *prometheus.CounterVec
	ProtocolViolations *prometheus.CounterVec

	TxQueueBytes *prometheus.GaugeVec
	TxQueueHOL   *prometheus.GaugeVec
}

func newMetrics() *Metrics {
	labels := []string{"rnti", "lcid"}
	return &Metrics{
		TxPduBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tx_pdu_bytes",
			Help:      "Size in bytes of each PDU handed to MAC.",
			Buckets:   prometheus.ExponentialBuckets(8, 2, 12),
		}, labels),
		RxPduBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rx_pdu_bytes",
			Help:      "Size in bytes of each PDU received from MAC.",
			Buckets:   prometheus.ExponentialBuckets(8, 2, 12),
		}, labels),
		RxDelay: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rx_pdu_delay_seconds",
			Help:      "Elapsed time between a PDU's egress timestamp and its reception.",
			Buckets:   prometheus.DefBuckets,
		}, labels),
		ReassemblyDiscards: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reassembly_discards_total",
			Help:      "Fragments or PDUs discarded by the receive path (admission reject, orphan segment, gap-forced discard).",
		}, labels),
		ProtocolViolations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "protocol_violations_total",
			Help:      "Impossible (state, framing_info) pairs or length indicators exceeding remaining payload.",
		}, labels),
		TxQueueBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tx_queue_bytes",
			Help:      "Current tx queue byte count, including the per-SDU header overhead estimate.",
		}, labels),
		TxQueueHOL: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tx_queue_hol_delay_seconds",
			Help:      "Age of the head-of-line SDU in the tx queue.",
		}, labels),
	}
}

// New creates a Metrics bundle and registers every collector with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(
		m.TxPduBytes, m.RxPduBytes, m.RxDelay,
		m.ReassemblyDiscards, m.ProtocolViolations,
		m.TxQueueBytes, m.TxQueueHOL,
	)
	return m
}

// NewUnregistered creates a Metrics bundle without registering it with any
// registry, for tests that want to inspect collectors directly without
// touching the global default registry.
func NewUnregistered() *Metrics {
	return newMetrics()
}
