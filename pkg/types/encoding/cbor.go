// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package encoding

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

var (
	modesOnce sync.Once
	modesErr  error
	decMode   cbor.DecMode
	encMode   cbor.EncMode
)

func modes() (cbor.DecMode, cbor.EncMode, error) {
	modesOnce.Do(func() {
		decOptions := cbor.DecOptions{
			// Strict decoding: a field the receiver does not know about is
			// an error, as are duplicate map keys
			ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
			DupMapKey:         cbor.DupMapKeyEnforcedAPF,
			MaxNestedLevels:   32,
		}
		decMode, modesErr = decOptions.DecMode()
		if modesErr != nil {
			return
		}

		encOptions := cbor.EncOptions{
			// Make sure that maps have ordered keys
			Sort: cbor.SortCoreDeterministic,
			Time: cbor.TimeRFC3339Nano,
		}
		encMode, modesErr = encOptions.EncMode()
	})
	return decMode, encMode, modesErr
}

// Marshal encodes v deterministically.
func Marshal(v interface{}) ([]byte, error) {
	_, enc, err := modes()
	if err != nil {
		return nil, Error{err}
	}
	b, err := enc.Marshal(v)
	if err != nil {
		return nil, Error{err}
	}
	return b, nil
}

// Unmarshal strictly decodes b into v. Unknown fields, duplicate keys, and
// trailing bytes are errors.
func Unmarshal(b []byte, v interface{}) error {
	if len(b) == 0 {
		return Error{fmt.Errorf("empty input")}
	}
	dec, _, err := modes()
	if err != nil {
		return Error{err}
	}
	d := dec.NewDecoder(bytes.NewReader(b))
	err = d.Decode(v)
	if err != nil {
		return Error{err}
	}
	if n := d.NumBytesRead(); n != len(b) {
		return Error{fmt.Errorf("%d trailing bytes", len(b)-n)}
	}
	return nil
}
