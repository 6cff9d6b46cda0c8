// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package submission

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const defaultCacheSize = 1 << 16

// cache remembers transaction IDs until the transaction could no longer be
// valid. The LRU's TTL bounds how long an entry is held; the stored expiry
// decides whether an entry still counts as a duplicate.
type cache struct {
	mu  sync.Mutex
	lru *expirable.LRU[string, time.Time]
}

func newCache(size int, ttl time.Duration) *cache {
	if size <= 0 {
		size = defaultCacheSize
	}
	return &cache{lru: expirable.NewLRU[string, time.Time](size, nil, ttl)}
}

// add returns false if the ID is already present and has not expired.
func (c *cache) add(id string, expires, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.lru.Get(id); ok && t.After(now) {
		return false
	}
	c.lru.Add(id, expires)
	return true
}

func (c *cache) remove(id string) {
	c.lru.Remove(id)
}

func (c *cache) len() int {
	return c.lru.Len()
}
