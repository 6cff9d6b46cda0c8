// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package state

import (
	"fmt"

	"gitlab.com/hashledger/querynode/pkg/protocol"
)

// Keys are human readable so the database can be inspected with badger's
// tooling.

const (
	prefixAccount       = "account/"
	prefixFile          = "file/"
	prefixContract      = "contract/"
	prefixTopic         = "topic/"
	prefixToken         = "token/"
	prefixSchedule      = "schedule/"
	prefixNft           = "nft/"
	prefixRecord        = "record/"
	prefixAccountRecord = "account-record/"
	prefixPending       = "pending/"
)

func entityKey(prefix string, id protocol.EntityID) []byte {
	return []byte(prefix + id.String())
}

func nftKey(id protocol.NftID) []byte {
	return []byte(fmt.Sprintf("%s%v/%020d", prefixNft, id.TokenID, id.Serial))
}

func nftTokenPrefix(id protocol.TokenID) []byte {
	return []byte(fmt.Sprintf("%s%v/", prefixNft, id))
}

func recordKey(id protocol.TransactionID) []byte {
	return []byte(prefixRecord + txidKey(id))
}

func accountRecordKey(account protocol.AccountID, id protocol.TransactionID) []byte {
	return []byte(fmt.Sprintf("%s%v/%s", prefixAccountRecord, account, txidKey(id)))
}

func accountRecordPrefix(account protocol.AccountID) []byte {
	return []byte(fmt.Sprintf("%s%v/", prefixAccountRecord, account))
}

func pendingKey(id protocol.TransactionID) []byte {
	return []byte(prefixPending + txidKey(id))
}

// txidKey sorts by valid start within a payer.
func txidKey(id protocol.TransactionID) string {
	s := fmt.Sprintf("%v@%020d.%09d", id.AccountID, id.ValidStart.Seconds, id.ValidStart.Nanos)
	if id.Scheduled {
		s += "?scheduled"
	}
	if id.Nonce != 0 {
		s += fmt.Sprintf("/%d", id.Nonce)
	}
	return s
}
