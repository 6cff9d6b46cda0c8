// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package metrics

import (
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gitlab.com/hashledger/querynode/pkg/protocol"
)

const namespace = "querynode"

// Metrics records per-functionality query metrics. It is safe for concurrent
// use.
type Metrics struct {
	duration  *prometheus.HistogramVec
	received  *prometheus.CounterVec
	answered  *prometheus.CounterVec
	throttled *prometheus.CounterVec
	reg       prometheus.Registerer
}

// New registers the query metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "duration_ms",
			Help:      "Time to process a query in milliseconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 1000},
		}, []string{"functionality"}),
		received: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "received_total",
			Help:      "Number of queries received",
		}, []string{"functionality"}),
		answered: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "answered_total",
			Help:      "Number of queries answered with OK",
		}, []string{"functionality"}),
		throttled: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "throttled_total",
			Help:      "Number of queries rejected by the throttle",
		}, []string{"functionality"}),
	}
}

func (m *Metrics) UpdateDuration(fn protocol.Functionality, elapsed time.Duration) {
	m.duration.WithLabelValues(fn.String()).Observe(float64(elapsed) / float64(time.Millisecond))
}

func (m *Metrics) IncrementThrottled(fn protocol.Functionality) {
	m.throttled.WithLabelValues(fn.String()).Inc()
}

func (m *Metrics) CountReceived(fn protocol.Functionality) {
	m.received.WithLabelValues(fn.String()).Inc()
}

func (m *Metrics) CountAnswered(fn protocol.Functionality) {
	m.answered.WithLabelValues(fn.String()).Inc()
}

// TrackUtilization exports the utilization of throttle buckets as a gauge.
// The function is called on every scrape.
func (m *Metrics) TrackUtilization(fn func() map[string]float64) error {
	return m.reg.Register(&utilization{
		fn: fn,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "throttle", "utilization"),
			"Fraction of a throttle bucket that is in use",
			[]string{"bucket"}, nil),
	})
}

type utilization struct {
	fn   func() map[string]float64
	desc *prometheus.Desc
}

func (u *utilization) Describe(ch chan<- *prometheus.Desc) { ch <- u.desc }

func (u *utilization) Collect(ch chan<- prometheus.Metric) {
	values := u.fn()
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ch <- prometheus.MustNewConstMetric(u.desc, prometheus.GaugeValue, values[name], name)
	}
}
