// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package protocol

import "gitlab.com/hashledger/querynode/pkg/errors"

// Account is a cryptocurrency account.
type Account struct {
	ID                  AccountID `cbor:"1,keyasint"`
	Key                 *Key      `cbor:"2,keyasint,omitempty"`
	Balance             uint64    `cbor:"3,keyasint,omitempty"`
	Deleted             bool      `cbor:"4,keyasint,omitempty"`
	Memo                string    `cbor:"5,keyasint,omitempty"`
	ExpirationTime      Timestamp `cbor:"6,keyasint,omitempty"`
	AutoRenewPeriod     int64     `cbor:"7,keyasint,omitempty"`
	ReceiverSigRequired bool      `cbor:"8,keyasint,omitempty"`
	Alias               []byte    `cbor:"9,keyasint,omitempty"`
	OwnedNfts           uint64    `cbor:"10,keyasint,omitempty"`
	Tokens              []TokenID `cbor:"11,keyasint,omitempty"`
	ProxyAccountID      AccountID `cbor:"12,keyasint,omitempty"`
}

// File is a file stored on the ledger.
type File struct {
	ID             FileID    `cbor:"1,keyasint"`
	Keys           *KeyList  `cbor:"2,keyasint,omitempty"`
	Contents       []byte    `cbor:"3,keyasint,omitempty"`
	Deleted        bool      `cbor:"4,keyasint,omitempty"`
	Memo           string    `cbor:"5,keyasint,omitempty"`
	ExpirationTime Timestamp `cbor:"6,keyasint,omitempty"`
}

// Contract is a smart contract instance.
type Contract struct {
	ID             ContractID `cbor:"1,keyasint"`
	AccountID      AccountID  `cbor:"2,keyasint,omitempty"`
	AdminKey       *Key       `cbor:"3,keyasint,omitempty"`
	Bytecode       []byte     `cbor:"4,keyasint,omitempty"`
	Deleted        bool       `cbor:"5,keyasint,omitempty"`
	Memo           string     `cbor:"6,keyasint,omitempty"`
	ExpirationTime Timestamp  `cbor:"7,keyasint,omitempty"`
	SolidityID     string     `cbor:"8,keyasint,omitempty"`
}

// Topic is a consensus topic.
type Topic struct {
	ID               TopicID   `cbor:"1,keyasint"`
	Memo             string    `cbor:"2,keyasint,omitempty"`
	RunningHash      []byte    `cbor:"3,keyasint,omitempty"`
	SequenceNumber   uint64    `cbor:"4,keyasint,omitempty"`
	AdminKey         *Key      `cbor:"5,keyasint,omitempty"`
	SubmitKey        *Key      `cbor:"6,keyasint,omitempty"`
	AutoRenewAccount AccountID `cbor:"7,keyasint,omitempty"`
	Deleted          bool      `cbor:"8,keyasint,omitempty"`
	ExpirationTime   Timestamp `cbor:"9,keyasint,omitempty"`
}

// Token is a fungible or non-fungible token type.
type Token struct {
	ID          TokenID   `cbor:"1,keyasint"`
	Name        string    `cbor:"2,keyasint,omitempty"`
	Symbol      string    `cbor:"3,keyasint,omitempty"`
	Decimals    uint32    `cbor:"4,keyasint,omitempty"`
	TotalSupply uint64    `cbor:"5,keyasint,omitempty"`
	Treasury    AccountID `cbor:"6,keyasint,omitempty"`
	Deleted     bool      `cbor:"7,keyasint,omitempty"`
	Paused      bool      `cbor:"8,keyasint,omitempty"`
	Memo        string    `cbor:"9,keyasint,omitempty"`
}

// Schedule is a scheduled transaction awaiting signatures.
type Schedule struct {
	ID                       ScheduleID `cbor:"1,keyasint"`
	Memo                     string     `cbor:"2,keyasint,omitempty"`
	Creator                  AccountID  `cbor:"3,keyasint,omitempty"`
	Payer                    AccountID  `cbor:"4,keyasint,omitempty"`
	ScheduledTransactionBody []byte     `cbor:"5,keyasint,omitempty"`
	ExecutedAt               *Timestamp `cbor:"6,keyasint,omitempty"`
	Deleted                  bool       `cbor:"7,keyasint,omitempty"`
	ExpirationTime           Timestamp  `cbor:"8,keyasint,omitempty"`
}

// Nft is a single non-fungible token.
type Nft struct {
	ID           NftID     `cbor:"1,keyasint"`
	Owner        AccountID `cbor:"2,keyasint,omitempty"`
	CreationTime Timestamp `cbor:"3,keyasint,omitempty"`
	Metadata     []byte    `cbor:"4,keyasint,omitempty"`
}

// TransactionReceipt is the consensus outcome of a transaction.
type TransactionReceipt struct {
	Status              errors.Status `cbor:"1,keyasint"`
	CreatedEntity       *EntityID     `cbor:"2,keyasint,omitempty"`
	TopicSequenceNumber uint64        `cbor:"3,keyasint,omitempty"`
}

// TransactionRecord is the full result of a transaction.
type TransactionRecord struct {
	TransactionID      TransactionID      `cbor:"1,keyasint"`
	Receipt            TransactionReceipt `cbor:"2,keyasint"`
	TransactionHash    []byte             `cbor:"3,keyasint,omitempty"`
	ConsensusTimestamp Timestamp          `cbor:"4,keyasint,omitempty"`
	Memo               string             `cbor:"5,keyasint,omitempty"`
	TransactionFee     uint64             `cbor:"6,keyasint,omitempty"`
	Transfers          []AccountAmount    `cbor:"7,keyasint,omitempty"`
	ExecutionNanos     uint64             `cbor:"8,keyasint,omitempty"`
}
