// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package throttle

import (
	"sync"
	"time"
)

// bucket is a leaky bucket. Each admitted operation adds to the bucket, which
// drains at a constant rate.
type bucket struct {
	name string
	rank int

	mu       sync.Mutex
	capacity float64 // operations
	rate     float64 // operations per second
	used     float64
	last     time.Time
}

func newBucket(name string, rank int, opsPerSec float64, burst time.Duration, split int) *bucket {
	rate := opsPerSec / float64(split)
	capacity := rate * burst.Seconds()
	if capacity < 1 {
		// A bucket that cannot hold a single operation admits nothing
		capacity = 0
	}
	return &bucket{name: name, rank: rank, capacity: capacity, rate: rate}
}

// leak must be called with the lock held.
func (b *bucket) leak(now time.Time) {
	if b.last.IsZero() {
		b.last = now
		return
	}
	dt := now.Sub(b.last).Seconds()
	if dt <= 0 {
		return
	}
	b.last = now
	b.used -= dt * b.rate
	if b.used < 0 {
		b.used = 0
	}
}

// fits must be called with the lock held.
func (b *bucket) fits(n float64) bool {
	return b.capacity > 0 && b.used+n <= b.capacity
}

func (b *bucket) utilization(now time.Time) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.leak(now)
	if b.capacity == 0 {
		return 1
	}
	return b.used / b.capacity
}
