// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package protocol

// Payloads of query answers that are not simply a ledger record.

type AccountBalance struct {
	AccountID AccountID `cbor:"1,keyasint"`
	Balance   uint64    `cbor:"2,keyasint"`
}

type AccountRecords struct {
	AccountID AccountID            `cbor:"1,keyasint"`
	Records   []*TransactionRecord `cbor:"2,keyasint,omitempty"`
}

type ContractBytecode struct {
	ContractID ContractID `cbor:"1,keyasint"`
	Bytecode   []byte     `cbor:"2,keyasint,omitempty"`
}

type ContractRecords struct {
	ContractID ContractID           `cbor:"1,keyasint"`
	Records    []*TransactionRecord `cbor:"2,keyasint,omitempty"`
}

type ContractCallResult struct {
	ContractID ContractID `cbor:"1,keyasint"`
	GasUsed    uint64     `cbor:"2,keyasint,omitempty"`
	Result     []byte     `cbor:"3,keyasint,omitempty"`
	Error      string     `cbor:"4,keyasint,omitempty"`
}

type FileContents struct {
	FileID   FileID `cbor:"1,keyasint"`
	Contents []byte `cbor:"2,keyasint,omitempty"`
}

// EntityIDs is the answer to a lookup that resolves to entities, such as
// get-by-key and get-by-solidity-ID.
type EntityIDs struct {
	Accounts  []AccountID  `cbor:"1,keyasint,omitempty"`
	Contracts []ContractID `cbor:"2,keyasint,omitempty"`
	Files     []FileID     `cbor:"3,keyasint,omitempty"`
}

type Nfts struct {
	Nfts []*Nft `cbor:"1,keyasint,omitempty"`
}

type SemanticVersion struct {
	Major uint32 `cbor:"1,keyasint"`
	Minor uint32 `cbor:"2,keyasint"`
	Patch uint32 `cbor:"3,keyasint"`
}

type VersionInfo struct {
	ProtocolVersion SemanticVersion `cbor:"1,keyasint"`
	NodeVersion     SemanticVersion `cbor:"2,keyasint"`
}

type ExecutionTimes struct {
	ExecutionNanos []uint64 `cbor:"1,keyasint,omitempty"`
}

// AccountDetails is the privileged view of an account.
type AccountDetails struct {
	Account *Account  `cbor:"1,keyasint"`
	Tokens  []*Token  `cbor:"2,keyasint,omitempty"`
	Expires Timestamp `cbor:"3,keyasint,omitempty"`
}
