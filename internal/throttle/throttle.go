// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package throttle

import (
	"fmt"
	"sort"
	"time"

	"gitlab.com/hashledger/querynode/config"
	"gitlab.com/hashledger/querynode/pkg/protocol"
)

// Accumulator decides whether operations should be throttled. It is safe for
// concurrent use. Operations of different functionalities only contend if
// they share a bucket.
type Accumulator struct {
	buckets []*bucket
	byFn    map[protocol.Functionality][]*bucket
	now     func() time.Time
}

// New builds buckets from the throttle definitions. Each node gets
// 1/CapacitySplit of the network's capacity.
func New(cfg config.Throttle) (*Accumulator, error) {
	split := cfg.CapacitySplit
	if split < 1 {
		split = 1
	}

	a := &Accumulator{
		byFn: map[protocol.Functionality][]*bucket{},
		now:  time.Now,
	}
	for i, def := range cfg.Buckets {
		if def.OpsPerSec <= 0 || def.BurstPeriod <= 0 {
			return nil, fmt.Errorf("bucket %q has no capacity", def.Name)
		}
		b := newBucket(def.Name, i, def.OpsPerSec, def.BurstPeriod, split)
		a.buckets = append(a.buckets, b)
		for _, name := range def.Functionalities {
			fn, ok := protocol.FunctionalityByName(name)
			if !ok || !fn.IsValid() {
				return nil, fmt.Errorf("bucket %q: unknown functionality %q", def.Name, name)
			}
			if bb := a.byFn[fn]; len(bb) > 0 && bb[len(bb)-1] == b {
				continue // Listed twice
			}
			a.byFn[fn] = append(a.byFn[fn], b)
		}
	}

	// Buckets are always locked in rank order
	for _, bb := range a.byFn {
		sort.Slice(bb, func(i, j int) bool { return bb[i].rank < bb[j].rank })
	}
	return a, nil
}

// ShouldThrottle returns true if the query must be rejected. A query is
// admitted only if every bucket of its functionality has room, in which
// case it is charged to all of them. Functionalities with no bucket are
// always throttled.
func (a *Accumulator) ShouldThrottle(fn protocol.Functionality, query *protocol.Query) bool {
	buckets := a.byFn[fn]
	if len(buckets) == 0 {
		return true
	}

	n := weight(query)
	now := a.now()
	for _, b := range buckets {
		b.mu.Lock()
	}
	defer func() {
		for _, b := range buckets {
			b.mu.Unlock()
		}
	}()

	for _, b := range buckets {
		b.leak(now)
		if !b.fits(n) {
			return true
		}
	}
	for _, b := range buckets {
		b.used += n
	}
	return false
}

// Utilization returns the fraction of each bucket that is in use.
func (a *Accumulator) Utilization() map[string]float64 {
	now := a.now()
	u := make(map[string]float64, len(a.buckets))
	for _, b := range a.buckets {
		u[b.name] = b.utilization(now)
	}
	return u
}

// weight is the number of operations a query counts as. Range queries count
// each requested item.
func weight(q *protocol.Query) float64 {
	if q == nil {
		return 1
	}
	var r *protocol.NftRangeQuery
	switch {
	case q.TokenGetNftInfos != nil:
		r = q.TokenGetNftInfos
	case q.TokenGetAccountNftInfos != nil:
		r = q.TokenGetAccountNftInfos
	default:
		return 1
	}
	if n := r.End - r.Start; n > 1 {
		return float64(n)
	}
	return 1
}
