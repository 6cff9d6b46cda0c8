// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package ingest

import (
	"crypto/ed25519"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"gitlab.com/hashledger/querynode/pkg/errors"
	"gitlab.com/hashledger/querynode/pkg/protocol"
	"golang.org/x/crypto/sha3"
)

func verify(key *protocol.Key, signed *protocol.SignedTransaction) error {
	if key.IsEmpty() {
		return errors.InvalidSignature.With("payer has no key")
	}
	if !isSatisfied(key, signed.BodyBytes, &signed.SigMap) {
		return errors.InvalidSignature.With("payer signature is missing or invalid")
	}
	return nil
}

func isSatisfied(key *protocol.Key, message []byte, sigs *protocol.SignatureMap) bool {
	switch {
	case len(key.Ed25519) > 0:
		pair := sigs.Find(key.Ed25519)
		return pair != nil && VerifyEd25519(key.Ed25519, message, pair.Ed25519)

	case len(key.ECDSASecp256k1) > 0:
		pair := sigs.Find(key.ECDSASecp256k1)
		return pair != nil && VerifySecp256k1(key.ECDSASecp256k1, message, pair.ECDSASecp256k1)

	case key.KeyList != nil:
		var n int
		for _, k := range key.KeyList.Keys {
			if k != nil && isSatisfied(k, message, sigs) {
				n++
			}
		}
		return len(key.KeyList.Keys) > 0 && n >= key.KeyList.Required()
	}
	return false
}

// VerifyEd25519 verifies an ed25519 signature over the message.
func VerifyEd25519(pubKey, message, sig []byte) bool {
	if len(pubKey) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(pubKey, message, sig)
}

// VerifySecp256k1 verifies a 64-byte r||s secp256k1 signature over the
// keccak-256 hash of the message.
func VerifySecp256k1(pubKey, message, sig []byte) bool {
	if len(sig) != 64 {
		return false
	}
	pub, err := btcec.ParsePubKey(pubKey)
	if err != nil {
		return false
	}

	var r, s btcec.ModNScalar
	if r.SetByteSlice(sig[:32]) || s.SetByteSlice(sig[32:]) {
		return false
	}
	return ecdsa.NewSignature(&r, &s).Verify(Keccak256(message), pub)
}

// Keccak256 returns the legacy keccak-256 hash of the message.
func Keccak256(message []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write(message)
	return h.Sum(nil)
}
