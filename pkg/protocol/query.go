// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package protocol

import (
	"gitlab.com/hashledger/querynode/pkg/errors"
)

// QueryHeader is carried by every query.
type QueryHeader struct {
	ResponseType ResponseType `cbor:"1,keyasint,omitempty"`
	Payment      *Transaction `cbor:"2,keyasint,omitempty"`
}

// QueryBody is implemented by the body of every query arm.
type QueryBody interface {
	GetHeader() *QueryHeader
}

// AccountQuery targets a single account.
type AccountQuery struct {
	Header    QueryHeader `cbor:"1,keyasint"`
	AccountID AccountID   `cbor:"2,keyasint,omitempty"`
}

// BalanceQuery targets an account or a contract.
type BalanceQuery struct {
	Header     QueryHeader `cbor:"1,keyasint"`
	AccountID  AccountID   `cbor:"2,keyasint,omitempty"`
	ContractID ContractID  `cbor:"3,keyasint,omitempty"`
}

// LiveHashQuery targets a live hash attached to an account.
type LiveHashQuery struct {
	Header    QueryHeader `cbor:"1,keyasint"`
	AccountID AccountID   `cbor:"2,keyasint,omitempty"`
	Hash      []byte      `cbor:"3,keyasint,omitempty"`
}

// ContractQuery targets a single contract.
type ContractQuery struct {
	Header     QueryHeader `cbor:"1,keyasint"`
	ContractID ContractID  `cbor:"2,keyasint,omitempty"`
}

// ContractCallLocalQuery runs a contract function against the local state.
type ContractCallLocalQuery struct {
	Header             QueryHeader `cbor:"1,keyasint"`
	ContractID         ContractID  `cbor:"2,keyasint,omitempty"`
	Gas                uint64      `cbor:"3,keyasint,omitempty"`
	FunctionParameters []byte      `cbor:"4,keyasint,omitempty"`
}

// FileQuery targets a single file.
type FileQuery struct {
	Header QueryHeader `cbor:"1,keyasint"`
	FileID FileID      `cbor:"2,keyasint,omitempty"`
}

// TopicQuery targets a single consensus topic.
type TopicQuery struct {
	Header  QueryHeader `cbor:"1,keyasint"`
	TopicID TopicID     `cbor:"2,keyasint,omitempty"`
}

// TokenQuery targets a single token type.
type TokenQuery struct {
	Header  QueryHeader `cbor:"1,keyasint"`
	TokenID TokenID     `cbor:"2,keyasint,omitempty"`
}

// ScheduleQuery targets a single schedule.
type ScheduleQuery struct {
	Header     QueryHeader `cbor:"1,keyasint"`
	ScheduleID ScheduleID  `cbor:"2,keyasint,omitempty"`
}

// NftQuery targets a single NFT.
type NftQuery struct {
	Header QueryHeader `cbor:"1,keyasint"`
	NftID  NftID       `cbor:"2,keyasint,omitempty"`
}

// NftRangeQuery targets a range of the NFTs owned by an account or minted
// for a token. End is exclusive.
type NftRangeQuery struct {
	Header QueryHeader `cbor:"1,keyasint"`
	ID     EntityID    `cbor:"2,keyasint,omitempty"`
	Start  int64       `cbor:"3,keyasint,omitempty"`
	End    int64       `cbor:"4,keyasint,omitempty"`
}

// TransactionQuery targets a transaction by ID.
type TransactionQuery struct {
	Header            QueryHeader   `cbor:"1,keyasint"`
	TransactionID     TransactionID `cbor:"2,keyasint,omitempty"`
	IncludeDuplicates bool          `cbor:"3,keyasint,omitempty"`
}

// KeyQuery looks up the entities controlled by a key.
type KeyQuery struct {
	Header QueryHeader `cbor:"1,keyasint"`
	Key    *Key        `cbor:"2,keyasint,omitempty"`
}

// SolidityIDQuery looks up the entity with a solidity address.
type SolidityIDQuery struct {
	Header     QueryHeader `cbor:"1,keyasint"`
	SolidityID string      `cbor:"2,keyasint,omitempty"`
}

// NetworkQuery carries nothing but the header.
type NetworkQuery struct {
	Header QueryHeader `cbor:"1,keyasint"`
}

// ExecutionTimeQuery asks for the execution time of recent transactions.
type ExecutionTimeQuery struct {
	Header         QueryHeader     `cbor:"1,keyasint"`
	TransactionIDs []TransactionID `cbor:"2,keyasint,omitempty"`
}

func (q *AccountQuery) GetHeader() *QueryHeader           { return &q.Header }
func (q *BalanceQuery) GetHeader() *QueryHeader           { return &q.Header }
func (q *LiveHashQuery) GetHeader() *QueryHeader          { return &q.Header }
func (q *ContractQuery) GetHeader() *QueryHeader          { return &q.Header }
func (q *ContractCallLocalQuery) GetHeader() *QueryHeader { return &q.Header }
func (q *FileQuery) GetHeader() *QueryHeader              { return &q.Header }
func (q *TopicQuery) GetHeader() *QueryHeader             { return &q.Header }
func (q *TokenQuery) GetHeader() *QueryHeader             { return &q.Header }
func (q *ScheduleQuery) GetHeader() *QueryHeader          { return &q.Header }
func (q *NftQuery) GetHeader() *QueryHeader               { return &q.Header }
func (q *NftRangeQuery) GetHeader() *QueryHeader          { return &q.Header }
func (q *TransactionQuery) GetHeader() *QueryHeader       { return &q.Header }
func (q *KeyQuery) GetHeader() *QueryHeader               { return &q.Header }
func (q *SolidityIDQuery) GetHeader() *QueryHeader        { return &q.Header }
func (q *NetworkQuery) GetHeader() *QueryHeader           { return &q.Header }
func (q *ExecutionTimeQuery) GetHeader() *QueryHeader     { return &q.Header }

// Query is a tagged union. Exactly one field must be set.
type Query struct {
	GetByKey                 *KeyQuery               `cbor:"1,keyasint,omitempty"`
	GetBySolidityID          *SolidityIDQuery        `cbor:"2,keyasint,omitempty"`
	ContractCallLocal        *ContractCallLocalQuery `cbor:"3,keyasint,omitempty"`
	ContractGetInfo          *ContractQuery          `cbor:"4,keyasint,omitempty"`
	ContractGetBytecode      *ContractQuery          `cbor:"5,keyasint,omitempty"`
	ContractGetRecords       *ContractQuery          `cbor:"6,keyasint,omitempty"`
	CryptoGetAccountBalance  *BalanceQuery           `cbor:"7,keyasint,omitempty"`
	CryptoGetAccountRecords  *AccountQuery           `cbor:"8,keyasint,omitempty"`
	CryptoGetInfo            *AccountQuery           `cbor:"9,keyasint,omitempty"`
	CryptoGetLiveHash        *LiveHashQuery          `cbor:"10,keyasint,omitempty"`
	CryptoGetProxyStakers    *AccountQuery           `cbor:"11,keyasint,omitempty"`
	FileGetContents          *FileQuery              `cbor:"12,keyasint,omitempty"`
	FileGetInfo              *FileQuery              `cbor:"13,keyasint,omitempty"`
	TransactionGetReceipt    *TransactionQuery       `cbor:"14,keyasint,omitempty"`
	TransactionGetRecord     *TransactionQuery       `cbor:"15,keyasint,omitempty"`
	TransactionGetFastRecord *TransactionQuery       `cbor:"16,keyasint,omitempty"`
	ConsensusGetTopicInfo    *TopicQuery             `cbor:"17,keyasint,omitempty"`
	NetworkGetVersionInfo    *NetworkQuery           `cbor:"18,keyasint,omitempty"`
	TokenGetInfo             *TokenQuery             `cbor:"19,keyasint,omitempty"`
	ScheduleGetInfo          *ScheduleQuery          `cbor:"20,keyasint,omitempty"`
	TokenGetAccountNftInfos  *NftRangeQuery          `cbor:"21,keyasint,omitempty"`
	TokenGetNftInfo          *NftQuery               `cbor:"22,keyasint,omitempty"`
	TokenGetNftInfos         *NftRangeQuery          `cbor:"23,keyasint,omitempty"`
	NetworkGetExecutionTime  *ExecutionTimeQuery     `cbor:"24,keyasint,omitempty"`
	AccountDetails           *AccountQuery           `cbor:"25,keyasint,omitempty"`
}

// ErrUnrecognizedQuery is returned when a query has no arm set or more than
// one.
var ErrUnrecognizedQuery = errors.InvalidTransactionBody.With("unrecognized query")

// Kind returns the kind of the populated arm.
func (q *Query) Kind() (QueryKind, error) {
	if q == nil {
		return 0, ErrUnrecognizedQuery
	}
	var kind QueryKind
	for k := queryKindFirst; k <= queryKindLast; k++ {
		if q.Body(k) == nil {
			continue
		}
		if kind != 0 {
			return 0, errors.InvalidTransactionBody.WithFormat("query has both %v and %v set", kind, k)
		}
		kind = k
	}
	if kind == 0 {
		return 0, ErrUnrecognizedQuery
	}
	return kind, nil
}

// Header returns the header of the populated arm.
func (q *Query) Header() (*QueryHeader, error) {
	kind, err := q.Kind()
	if err != nil {
		return nil, err
	}
	return q.Body(kind).GetHeader(), nil
}

// Body returns the body of the given arm, or nil if it is not set.
func (q *Query) Body(kind QueryKind) QueryBody {
	switch kind {
	case QueryKindGetByKey:
		return body(q.GetByKey)
	case QueryKindGetBySolidityID:
		return body(q.GetBySolidityID)
	case QueryKindContractCallLocal:
		return body(q.ContractCallLocal)
	case QueryKindContractGetInfo:
		return body(q.ContractGetInfo)
	case QueryKindContractGetBytecode:
		return body(q.ContractGetBytecode)
	case QueryKindContractGetRecords:
		return body(q.ContractGetRecords)
	case QueryKindCryptoGetAccountBalance:
		return body(q.CryptoGetAccountBalance)
	case QueryKindCryptoGetAccountRecords:
		return body(q.CryptoGetAccountRecords)
	case QueryKindCryptoGetInfo:
		return body(q.CryptoGetInfo)
	case QueryKindCryptoGetLiveHash:
		return body(q.CryptoGetLiveHash)
	case QueryKindCryptoGetProxyStakers:
		return body(q.CryptoGetProxyStakers)
	case QueryKindFileGetContents:
		return body(q.FileGetContents)
	case QueryKindFileGetInfo:
		return body(q.FileGetInfo)
	case QueryKindTransactionGetReceipt:
		return body(q.TransactionGetReceipt)
	case QueryKindTransactionGetRecord:
		return body(q.TransactionGetRecord)
	case QueryKindTransactionGetFastRecord:
		return body(q.TransactionGetFastRecord)
	case QueryKindConsensusGetTopicInfo:
		return body(q.ConsensusGetTopicInfo)
	case QueryKindNetworkGetVersionInfo:
		return body(q.NetworkGetVersionInfo)
	case QueryKindTokenGetInfo:
		return body(q.TokenGetInfo)
	case QueryKindScheduleGetInfo:
		return body(q.ScheduleGetInfo)
	case QueryKindTokenGetAccountNftInfos:
		return body(q.TokenGetAccountNftInfos)
	case QueryKindTokenGetNftInfo:
		return body(q.TokenGetNftInfo)
	case QueryKindTokenGetNftInfos:
		return body(q.TokenGetNftInfos)
	case QueryKindNetworkGetExecutionTime:
		return body(q.NetworkGetExecutionTime)
	case QueryKindAccountDetails:
		return body(q.AccountDetails)
	}
	return nil
}

// body converts a nil pointer to a nil interface.
func body[P interface {
	comparable
	QueryBody
}](p P) QueryBody {
	var zero P
	if p == zero {
		return nil
	}
	return p
}
