// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAmounts(t *testing.T) {
	require.Equal(t, uint64(1_000_000), parseAmount("1,000,000"))
	require.Equal(t, uint64(25), parseAmount("2_5"))
	require.Equal(t, "150,000,000 tinybars (1.5 hbar)", formatAmount(150_000_000))
	require.Equal(t, "0 tinybars (0 hbar)", formatAmount(0))
}

func TestParseKey(t *testing.T) {
	seed := make([]byte, 32)
	seed[0] = 1
	key := parseKey(hex.EncodeToString(seed))
	require.Len(t, key, 64)
	require.Equal(t, seed, key.Seed())
	require.Equal(t, key, parseKey(hex.EncodeToString(key)))
}
