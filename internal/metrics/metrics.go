// Package metrics defines the prometheus collectors for store traffic and
// change notifications. A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Write outcomes used as the result label.
const (
	ResultOK    = "ok"
	ResultFull  = "full"
	ResultError = "error"
)

// Metrics holds the docshelf collectors.
type Metrics struct {
	storeReads     *prometheus.CounterVec
	storeWrites    *prometheus.CounterVec
	storeUsage     prometheus.Gauge
	signals        *prometheus.CounterVec
	signalsDropped prometheus.Counter
	subscribers    prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		storeReads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "docshelf",
				Name:      "store_reads_total",
				Help:      "Total number of store reads by key.",
			},
			[]string{"key"},
		),
		storeWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "docshelf",
				Name:      "store_writes_total",
				Help:      "Total number of store writes by key and result.",
			},
			[]string{"key", "result"},
		),
		storeUsage: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "docshelf",
			Name:      "store_usage_bytes",
			Help:      "Bytes counted against the store capacity ceiling.",
		}),
		signals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "docshelf",
				Name:      "signals_delivered_total",
				Help:      "Total number of change signals delivered by kind.",
			},
			[]string{"kind"},
		),
		signalsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "docshelf",
			Name:      "signals_dropped_total",
			Help:      "Signals dropped after the cascade limit was reached.",
		}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "docshelf",
			Name:      "subscribers",
			Help:      "Currently registered change subscribers.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.storeReads, m.storeWrites, m.storeUsage,
		m.signals, m.signalsDropped, m.subscribers,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// StoreRead counts a read of key.
func (m *Metrics) StoreRead(key string) {
	if m == nil {
		return
	}
	m.storeReads.WithLabelValues(key).Inc()
}

// StoreWrite counts a write of key with its outcome.
func (m *Metrics) StoreWrite(key, result string) {
	if m == nil {
		return
	}
	m.storeWrites.WithLabelValues(key, result).Inc()
}

// StoreUsage records current usage.
func (m *Metrics) StoreUsage(bytes int64) {
	if m == nil {
		return
	}
	m.storeUsage.Set(float64(bytes))
}

// SignalDelivered counts one delivery round of a signal.
func (m *Metrics) SignalDelivered(kind string) {
	if m == nil {
		return
	}
	m.signals.WithLabelValues(kind).Inc()
}

// SignalsDropped counts signals discarded by the cascade limit.
func (m *Metrics) SignalsDropped(n int) {
	if m == nil {
		return
	}
	m.signalsDropped.Add(float64(n))
}

// Subscribers records the number of live subscriptions.
func (m *Metrics) Subscribers(n int) {
	if m == nil {
		return
	}
	m.subscribers.Set(float64(n))
}
