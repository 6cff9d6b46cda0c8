// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package logging

import (
	"encoding/hex"
	"fmt"
	"log/slog"
)

// Hex logs as a hex string.
type Hex []byte

func (h Hex) LogValue() slog.Value {
	return slog.StringValue(hex.EncodeToString(h))
}

func AsHex(v interface{}) Hex {
	switch v := v.(type) {
	case []byte:
		u := make(Hex, len(v))
		copy(u, v)
		return u
	case [32]byte:
		return Hex(v[:])
	case *[32]byte:
		return Hex(v[:])
	case string:
		return Hex(v)
	case fmt.Stringer:
		return Hex(v.String())
	default:
		return Hex(fmt.Sprint(v))
	}
}
