// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package throttle

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gitlab.com/hashledger/querynode/config"
	"gitlab.com/hashledger/querynode/pkg/protocol"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock { return &clock{t: time.Unix(1700000000, 0)} }

func fileInfo() *protocol.Query { return &protocol.Query{FileGetInfo: &protocol.FileQuery{}} }

func newAccumulator(t *testing.T, cfg config.Throttle, c *clock) *Accumulator {
	a, err := New(cfg)
	require.NoError(t, err)
	a.now = c.now
	return a
}

func TestBucketCapacity(t *testing.T) {
	c := newClock()
	a := newAccumulator(t, config.Throttle{
		CapacitySplit: 2,
		Buckets: []config.Bucket{
			{Name: "A", OpsPerSec: 10, BurstPeriod: time.Second, Functionalities: []string{"FileGetInfo"}},
		},
	}, c)

	// 10 ops/s split between 2 nodes is 5 per node
	for i := 0; i < 5; i++ {
		require.False(t, a.ShouldThrottle(protocol.FunctionalityFileGetInfo, fileInfo()), i)
	}
	require.True(t, a.ShouldThrottle(protocol.FunctionalityFileGetInfo, fileInfo()))

	// Draining 200ms at 5 ops/s frees one slot
	c.advance(200 * time.Millisecond)
	require.False(t, a.ShouldThrottle(protocol.FunctionalityFileGetInfo, fileInfo()))
	require.True(t, a.ShouldThrottle(protocol.FunctionalityFileGetInfo, fileInfo()))

	c.advance(time.Second)
	require.InDelta(t, 0, a.Utilization()["A"], 1e-9)
}

func TestUnknownFunctionalityIsThrottled(t *testing.T) {
	a := newAccumulator(t, config.Throttle{
		Buckets: []config.Bucket{
			{Name: "A", OpsPerSec: 10, BurstPeriod: time.Second, Functionalities: []string{"FileGetInfo"}},
		},
	}, newClock())
	require.True(t, a.ShouldThrottle(protocol.FunctionalityCryptoGetInfo, nil))
}

func TestAllOrNothing(t *testing.T) {
	c := newClock()
	a := newAccumulator(t, config.Throttle{
		Buckets: []config.Bucket{
			{Name: "Small", OpsPerSec: 1, BurstPeriod: time.Second, Functionalities: []string{"FileGetInfo"}},
			{Name: "Large", OpsPerSec: 100, BurstPeriod: time.Second, Functionalities: []string{"FileGetInfo", "FileGetContents"}},
		},
	}, c)

	require.False(t, a.ShouldThrottle(protocol.FunctionalityFileGetInfo, nil))
	require.True(t, a.ShouldThrottle(protocol.FunctionalityFileGetInfo, nil))

	// The rejected operation must not have been charged to the large bucket
	u := a.Utilization()
	require.InDelta(t, 1.0, u["Small"], 1e-9)
	require.InDelta(t, 0.01, u["Large"], 1e-9)

	require.False(t, a.ShouldThrottle(protocol.FunctionalityFileGetContents, nil))
}

func TestRangeWeight(t *testing.T) {
	a := newAccumulator(t, config.Throttle{
		Buckets: []config.Bucket{
			{Name: "A", OpsPerSec: 10, BurstPeriod: time.Second, Functionalities: []string{"TokenGetNftInfos"}},
		},
	}, newClock())

	q := &protocol.Query{TokenGetNftInfos: &protocol.NftRangeQuery{Start: 0, End: 11}}
	require.True(t, a.ShouldThrottle(protocol.FunctionalityTokenGetNftInfos, q))
	q.TokenGetNftInfos.End = 10
	require.False(t, a.ShouldThrottle(protocol.FunctionalityTokenGetNftInfos, q))
}

func TestInvalidDefinitions(t *testing.T) {
	_, err := New(config.Throttle{Buckets: []config.Bucket{{Name: "A", Functionalities: []string{"FileGetInfo"}}}})
	require.Error(t, err)

	_, err = New(config.Throttle{Buckets: []config.Bucket{{Name: "A", OpsPerSec: 1, BurstPeriod: time.Second, Functionalities: []string{"Teleport"}}}})
	require.Error(t, err)
}

func TestConcurrentAdmission(t *testing.T) {
	a := newAccumulator(t, config.Throttle{
		Buckets: []config.Bucket{
			{Name: "A", OpsPerSec: 100, BurstPeriod: time.Second, Functionalities: []string{"FileGetInfo", "FileGetContents"}},
			{Name: "B", OpsPerSec: 1000, BurstPeriod: time.Second, Functionalities: []string{"FileGetContents", "FileGetInfo"}},
		},
	}, newClock())

	var admitted atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			fn := protocol.FunctionalityFileGetInfo
			if i%2 == 0 {
				fn = protocol.FunctionalityFileGetContents
			}
			for j := 0; j < 20; j++ {
				if !a.ShouldThrottle(fn, nil) {
					admitted.Add(1)
				}
			}
		}(i)
	}
	wg.Wait()
	require.Equal(t, int64(100), admitted.Load())
}
