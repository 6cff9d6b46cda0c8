// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package protocol

import (
	"bytes"

	"gitlab.com/hashledger/querynode/pkg/types/encoding"
)

// Transaction is the outer envelope of a transaction as submitted by a
// client.
type Transaction struct {
	SignedTransactionBytes []byte `cbor:"1,keyasint"`
}

// SignedTransaction is the body bytes plus the signatures over them.
type SignedTransaction struct {
	BodyBytes []byte       `cbor:"1,keyasint"`
	SigMap    SignatureMap `cbor:"2,keyasint,omitempty"`
}

// SignatureMap holds the signatures of a transaction.
type SignatureMap struct {
	SigPairs []*SignaturePair `cbor:"1,keyasint,omitempty"`
}

// SignaturePair is a signature and a prefix of the public key that made it.
type SignaturePair struct {
	PubKeyPrefix   []byte `cbor:"1,keyasint,omitempty"`
	Ed25519        []byte `cbor:"2,keyasint,omitempty"`
	ECDSASecp256k1 []byte `cbor:"3,keyasint,omitempty"`
}

// Find returns the pair whose prefix matches the public key, preferring the
// longest prefix.
func (m *SignatureMap) Find(pubKey []byte) *SignaturePair {
	var best *SignaturePair
	for _, p := range m.SigPairs {
		if !bytes.HasPrefix(pubKey, p.PubKeyPrefix) {
			continue
		}
		if best == nil || len(p.PubKeyPrefix) > len(best.PubKeyPrefix) {
			best = p
		}
	}
	return best
}

// TransactionBody is the signed content of a transaction. Exactly one of the
// operation fields is set.
type TransactionBody struct {
	TransactionID  TransactionID `cbor:"1,keyasint"`
	NodeAccountID  AccountID     `cbor:"2,keyasint"`
	TransactionFee uint64        `cbor:"3,keyasint,omitempty"`
	ValidDuration  int64         `cbor:"4,keyasint,omitempty"` // seconds
	Memo           string        `cbor:"5,keyasint,omitempty"`

	CryptoTransfer         *CryptoTransferBody         `cbor:"6,keyasint,omitempty"`
	ConsensusSubmitMessage *ConsensusSubmitMessageBody `cbor:"7,keyasint,omitempty"`
}

// Functionality returns the functionality of the populated operation, or
// None.
func (b *TransactionBody) Functionality() Functionality {
	switch {
	case b.CryptoTransfer != nil && b.ConsensusSubmitMessage != nil:
		return FunctionalityNone
	case b.CryptoTransfer != nil:
		return FunctionalityCryptoTransfer
	case b.ConsensusSubmitMessage != nil:
		return FunctionalityConsensusSubmitMessage
	}
	return FunctionalityNone
}

// CryptoTransferBody moves hbars between accounts.
type CryptoTransferBody struct {
	Transfers []AccountAmount `cbor:"1,keyasint,omitempty"`
}

// AccountAmount is a signed adjustment to an account balance.
type AccountAmount struct {
	AccountID AccountID `cbor:"1,keyasint"`
	Amount    int64     `cbor:"2,keyasint"`
}

// ConsensusSubmitMessageBody submits a message to a topic.
type ConsensusSubmitMessageBody struct {
	TopicID TopicID `cbor:"1,keyasint"`
	Message []byte  `cbor:"2,keyasint,omitempty"`
}

// NewTransaction wraps encoded body bytes and their signatures in a
// transaction envelope.
func NewTransaction(bodyBytes []byte, sigs SignatureMap) (*Transaction, error) {
	b, err := encoding.Marshal(&SignedTransaction{BodyBytes: bodyBytes, SigMap: sigs})
	if err != nil {
		return nil, err
	}
	return &Transaction{SignedTransactionBytes: b}, nil
}
