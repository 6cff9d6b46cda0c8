// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package state

import (
	"bytes"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"gitlab.com/hashledger/querynode/pkg/errors"
	"gitlab.com/hashledger/querynode/pkg/protocol"
	"gitlab.com/hashledger/querynode/pkg/types/encoding"
)

// View is a read-only snapshot of the state. Release must be called exactly
// once; further calls are ignored.
type View struct {
	txn     *badger.Txn
	once    sync.Once
	release func()
}

func (v *View) Release() {
	v.once.Do(func() {
		v.txn.Discard()
		if v.release != nil {
			v.release()
		}
	})
}

// OnRelease registers fn to run when the view is released.
func (v *View) OnRelease(fn func()) {
	prev := v.release
	v.release = func() {
		if prev != nil {
			prev()
		}
		fn()
	}
}

func (v *View) Account(id protocol.AccountID) (*protocol.Account, error) {
	return get[protocol.Account](v.txn, entityKey(prefixAccount, id))
}

func (v *View) File(id protocol.FileID) (*protocol.File, error) {
	return get[protocol.File](v.txn, entityKey(prefixFile, id))
}

func (v *View) Contract(id protocol.ContractID) (*protocol.Contract, error) {
	return get[protocol.Contract](v.txn, entityKey(prefixContract, id))
}

func (v *View) Topic(id protocol.TopicID) (*protocol.Topic, error) {
	return get[protocol.Topic](v.txn, entityKey(prefixTopic, id))
}

func (v *View) Token(id protocol.TokenID) (*protocol.Token, error) {
	return get[protocol.Token](v.txn, entityKey(prefixToken, id))
}

func (v *View) Schedule(id protocol.ScheduleID) (*protocol.Schedule, error) {
	return get[protocol.Schedule](v.txn, entityKey(prefixSchedule, id))
}

func (v *View) Nft(id protocol.NftID) (*protocol.Nft, error) {
	return get[protocol.Nft](v.txn, nftKey(id))
}

// Record returns the record of a transaction that reached consensus.
func (v *View) Record(id protocol.TransactionID) (*protocol.TransactionRecord, error) {
	return get[protocol.TransactionRecord](v.txn, recordKey(id))
}

// AccountRecords returns the records of the transactions paid for by the
// account, oldest first.
func (v *View) AccountRecords(id protocol.AccountID) ([]*protocol.TransactionRecord, error) {
	var records []*protocol.TransactionRecord
	err := scan(v.txn, accountRecordPrefix(id), func(key []byte, _ *struct{}) error {
		r, err := get[protocol.TransactionRecord](v.txn, append([]byte(prefixRecord), key[len(accountRecordPrefix(id)):]...))
		if err != nil {
			return err
		}
		records = append(records, r)
		return nil
	})
	return records, err
}

// NftsOfToken returns the NFTs of a token with serials in [start, end).
func (v *View) NftsOfToken(id protocol.TokenID, start, end int64) ([]*protocol.Nft, error) {
	var nfts []*protocol.Nft
	err := scan(v.txn, nftTokenPrefix(id), func(_ []byte, nft *protocol.Nft) error {
		if nft.ID.Serial >= start && nft.ID.Serial < end {
			nfts = append(nfts, nft)
		}
		return nil
	})
	return nfts, err
}

// NftsOwnedBy returns the NFTs owned by an account. Start and end index the
// account's NFTs in token and serial order.
func (v *View) NftsOwnedBy(id protocol.AccountID, start, end int64) ([]*protocol.Nft, error) {
	var nfts []*protocol.Nft
	var i int64
	err := scan(v.txn, []byte(prefixNft), func(_ []byte, nft *protocol.Nft) error {
		if nft.Owner != id {
			return nil
		}
		if i >= start && i < end {
			nfts = append(nfts, nft)
		}
		i++
		return nil
	})
	return nfts, err
}

// AccountsWithKey returns the accounts whose key is exactly the given key.
func (v *View) AccountsWithKey(key *protocol.Key) ([]protocol.AccountID, error) {
	want, err := encoding.Marshal(key)
	if err != nil {
		return nil, err
	}

	var ids []protocol.AccountID
	err = scan(v.txn, []byte(prefixAccount), func(_ []byte, acct *protocol.Account) error {
		if acct.Key == nil || acct.Deleted {
			return nil
		}
		have, err := encoding.Marshal(acct.Key)
		if err != nil {
			return err
		}
		if bytes.Equal(have, want) {
			ids = append(ids, acct.ID)
		}
		return nil
	})
	return ids, err
}

// ContractBySolidityID returns the contract with the given solidity address.
func (v *View) ContractBySolidityID(sid string) (*protocol.Contract, error) {
	var found *protocol.Contract
	err := scan(v.txn, []byte(prefixContract), func(_ []byte, c *protocol.Contract) error {
		if c.SolidityID == sid {
			found = c
			return errStop
		}
		return nil
	})
	switch {
	case err != nil && err != errStop:
		return nil, err
	case found == nil:
		return nil, ErrNotFound
	}
	return found, nil
}

// IsPending returns true if a transaction has been recorded as submitted but
// has no record yet.
func (v *View) IsPending(id protocol.TransactionID) (bool, error) {
	return has(v.txn, pendingKey(id))
}

var errStop = errors.New("stop")

func has(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return false, nil
	default:
		return false, errors.Unknown.WithFormat("load %s: %w", key, err)
	}
}

func get[T any](txn *badger.Txn, key []byte) (*T, error) {
	item, err := txn.Get(key)
	switch {
	case err == nil:
	case errors.Is(err, badger.ErrKeyNotFound):
		return nil, ErrNotFound
	default:
		return nil, errors.Unknown.WithFormat("load %s: %w", key, err)
	}

	v := new(T)
	err = item.Value(func(b []byte) error {
		return encoding.Unmarshal(b, v)
	})
	if err != nil {
		return nil, errors.BadEncoding.WithFormat("decode %s: %w", key, err)
	}
	return v, nil
}

// scan calls fn for every entry under the prefix in key order. If T is
// struct{} values are not decoded.
func scan[T any](txn *badger.Txn, prefix []byte, fn func(key []byte, value *T) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	_, keysOnly := any((*T)(nil)).(*struct{})
	opts.PrefetchValues = !keysOnly

	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		key := item.KeyCopy(nil)
		v := new(T)
		if !keysOnly {
			err := item.Value(func(b []byte) error {
				return encoding.Unmarshal(b, v)
			})
			if err != nil {
				return errors.BadEncoding.WithFormat("decode %s: %w", key, err)
			}
		}
		if err := fn(key, v); err != nil {
			return err
		}
	}
	return nil
}
