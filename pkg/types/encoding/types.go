// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package encoding

import (
	"github.com/fxamacker/cbor/v2"
)

// Error is returned when a value cannot be encoded or decoded.
type Error struct {
	E error
}

func (e Error) Error() string { return e.E.Error() }
func (e Error) Unwrap() error { return e.E }

// RawMessage is a raw encoded value. It is used for payloads that are opaque
// to the layer that carries them.
type RawMessage = cbor.RawMessage
