// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package ingest

import "gitlab.com/hashledger/querynode/pkg/protocol"

// TransactionInfo is a transaction that passed ingest, decoded once.
type TransactionInfo struct {
	Transaction   *protocol.Transaction
	Signed        *protocol.SignedTransaction
	Body          *protocol.TransactionBody
	Functionality protocol.Functionality

	// PayerKey is the key of the payer account as of the snapshot the
	// checks ran against.
	PayerKey *protocol.Key
}

// Payer returns the account paying for the transaction.
func (i *TransactionInfo) Payer() protocol.AccountID {
	return i.Body.TransactionID.AccountID
}

// SignedBytes returns the bytes that are submitted to consensus.
func (i *TransactionInfo) SignedBytes() []byte {
	return i.Transaction.SignedTransactionBytes
}

// SignatureMap returns the signatures of the transaction.
func (i *TransactionInfo) SignatureMap() *protocol.SignatureMap {
	return &i.Signed.SigMap
}

// ValidDuration returns the number of seconds the transaction remains
// valid after its start time.
func (i *TransactionInfo) ValidDuration() int64 {
	return i.Body.ValidDuration
}
