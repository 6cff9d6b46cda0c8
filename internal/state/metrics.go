// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package state

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mDbOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "querynode",
		Subsystem: "state",
		Name:      "db_open",
		Help:      "Number of open databases",
	})
	mGcRun = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "querynode",
		Subsystem: "state",
		Name:      "gc_run",
		Help:      "Number of times garbage collection has run",
	})
	mViewsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "querynode",
		Subsystem: "state",
		Name:      "views_open",
		Help:      "Number of unreleased state views",
	})
)
