// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package metrics

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"gitlab.com/hashledger/querynode/pkg/protocol"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.CountReceived(protocol.FunctionalityFileGetInfo)
			m.IncrementThrottled(protocol.FunctionalityFileGetInfo)
		}()
	}
	wg.Wait()
	m.CountAnswered(protocol.FunctionalityCryptoGetInfo)

	require.Equal(t, 10.0, testutil.ToFloat64(m.received.WithLabelValues("FileGetInfo")))
	require.Equal(t, 10.0, testutil.ToFloat64(m.throttled.WithLabelValues("FileGetInfo")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.answered.WithLabelValues("CryptoGetInfo")))
	require.Equal(t, 0.0, testutil.ToFloat64(m.answered.WithLabelValues("FileGetInfo")))
}

func TestDuration(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.UpdateDuration(protocol.FunctionalityFileGetInfo, 3*time.Millisecond)
	m.UpdateDuration(protocol.FunctionalityFileGetInfo, time.Millisecond)
	require.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestUtilization(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	require.NoError(t, m.TrackUtilization(func() map[string]float64 {
		return map[string]float64{"QueryLimits": 0.25}
	}))

	err := testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP querynode_throttle_utilization Fraction of a throttle bucket that is in use
# TYPE querynode_throttle_utilization gauge
querynode_throttle_utilization{bucket="QueryLimits"} 0.25
`), "querynode_throttle_utilization")
	require.NoError(t, err)
}
