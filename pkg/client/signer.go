// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package client

import (
	"crypto/ed25519"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"gitlab.com/hashledger/querynode/pkg/protocol"
	"golang.org/x/crypto/sha3"
)

// Signer signs transaction bodies.
type Signer interface {
	PublicKey() *protocol.Key
	Sign(message []byte) *protocol.SignaturePair
}

// Ed25519Signer signs with an ed25519 private key.
type Ed25519Signer ed25519.PrivateKey

func (s Ed25519Signer) PublicKey() *protocol.Key {
	return &protocol.Key{Ed25519: ed25519.PrivateKey(s).Public().(ed25519.PublicKey)}
}

func (s Ed25519Signer) Sign(message []byte) *protocol.SignaturePair {
	pub := ed25519.PrivateKey(s).Public().(ed25519.PublicKey)
	return &protocol.SignaturePair{
		PubKeyPrefix: pub,
		Ed25519:      ed25519.Sign(ed25519.PrivateKey(s), message),
	}
}

// Secp256k1Signer signs the keccak-256 hash of a message with a secp256k1
// private key.
type Secp256k1Signer struct {
	key *btcec.PrivateKey
}

func NewSecp256k1Signer(privateKey []byte) *Secp256k1Signer {
	key, _ := btcec.PrivKeyFromBytes(privateKey)
	return &Secp256k1Signer{key}
}

func (s *Secp256k1Signer) PublicKey() *protocol.Key {
	return &protocol.Key{ECDSASecp256k1: s.key.PubKey().SerializeCompressed()}
}

func (s *Secp256k1Signer) Sign(message []byte) *protocol.SignaturePair {
	hash := sha3.NewLegacyKeccak256()
	_, _ = hash.Write(message)

	// Drop the recovery byte, leaving r||s
	sig := ecdsa.SignCompact(s.key, hash.Sum(nil), true)
	return &protocol.SignaturePair{
		PubKeyPrefix:   s.key.PubKey().SerializeCompressed(),
		ECDSASecp256k1: sig[1:],
	}
}
