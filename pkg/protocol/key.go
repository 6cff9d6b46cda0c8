// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package protocol

// Key is a public key or a threshold list of keys. Exactly one field is set.
type Key struct {
	Ed25519        []byte   `cbor:"1,keyasint,omitempty"`
	ECDSASecp256k1 []byte   `cbor:"2,keyasint,omitempty"`
	KeyList        *KeyList `cbor:"3,keyasint,omitempty"`
}

// KeyList is satisfied when Threshold of its keys are. A zero threshold
// requires all of them.
type KeyList struct {
	Keys      []*Key `cbor:"1,keyasint,omitempty"`
	Threshold uint32 `cbor:"2,keyasint,omitempty"`
}

// IsEmpty returns true if the key holds no public key material.
func (k *Key) IsEmpty() bool {
	if k == nil {
		return true
	}
	switch {
	case len(k.Ed25519) > 0, len(k.ECDSASecp256k1) > 0:
		return false
	case k.KeyList != nil:
		for _, k := range k.KeyList.Keys {
			if !k.IsEmpty() {
				return false
			}
		}
	}
	return true
}

// Required returns the number of keys that must sign.
func (l *KeyList) Required() int {
	if l.Threshold == 0 || int(l.Threshold) > len(l.Keys) {
		return len(l.Keys)
	}
	return int(l.Threshold)
}

// CountSimpleKeys returns the number of ed25519 and secp256k1 keys in the
// key, recursively.
func (k *Key) CountSimpleKeys() int {
	if k == nil {
		return 0
	}
	switch {
	case len(k.Ed25519) > 0, len(k.ECDSASecp256k1) > 0:
		return 1
	case k.KeyList != nil:
		var n int
		for _, k := range k.KeyList.Keys {
			n += k.CountSimpleKeys()
		}
		return n
	}
	return 0
}
