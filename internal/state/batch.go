// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package state

import (
	"github.com/dgraph-io/badger/v4"
	"gitlab.com/hashledger/querynode/pkg/errors"
	"gitlab.com/hashledger/querynode/pkg/protocol"
	"gitlab.com/hashledger/querynode/pkg/types/encoding"
)

// Batch writes to the state. It is only valid within [Store.Update].
type Batch struct {
	txn *badger.Txn
}

func (b *Batch) PutAccount(v *protocol.Account) error {
	return b.put(entityKey(prefixAccount, v.ID), v)
}

func (b *Batch) PutFile(v *protocol.File) error {
	return b.put(entityKey(prefixFile, v.ID), v)
}

func (b *Batch) PutContract(v *protocol.Contract) error {
	return b.put(entityKey(prefixContract, v.ID), v)
}

func (b *Batch) PutTopic(v *protocol.Topic) error {
	return b.put(entityKey(prefixTopic, v.ID), v)
}

func (b *Batch) PutToken(v *protocol.Token) error {
	return b.put(entityKey(prefixToken, v.ID), v)
}

func (b *Batch) PutSchedule(v *protocol.Schedule) error {
	return b.put(entityKey(prefixSchedule, v.ID), v)
}

func (b *Batch) PutNft(v *protocol.Nft) error {
	return b.put(nftKey(v.ID), v)
}

// PutRecord stores a transaction record, indexes it under its payer, and
// clears the transaction's pending marker.
func (b *Batch) PutRecord(v *protocol.TransactionRecord) error {
	err := b.put(recordKey(v.TransactionID), v)
	if err != nil {
		return err
	}
	err = b.txn.Set(accountRecordKey(v.TransactionID.AccountID, v.TransactionID), nil)
	if err != nil {
		return errors.Unknown.WithFormat("index record: %w", err)
	}
	err = b.txn.Delete(pendingKey(v.TransactionID))
	if err != nil {
		return errors.Unknown.WithFormat("clear pending: %w", err)
	}
	return nil
}

// PutPending records that a transaction was submitted.
func (b *Batch) PutPending(id protocol.TransactionID, signedBytes []byte) error {
	err := b.txn.Set(pendingKey(id), signedBytes)
	if err != nil {
		return errors.Unknown.WithFormat("store pending %v: %w", id, err)
	}
	return nil
}

func (b *Batch) put(key []byte, v any) error {
	data, err := encoding.Marshal(v)
	if err != nil {
		return errors.BadEncoding.WithFormat("encode %s: %w", key, err)
	}
	err = b.txn.Set(key, data)
	if err != nil {
		return errors.Unknown.WithFormat("store %s: %w", key, err)
	}
	return nil
}
