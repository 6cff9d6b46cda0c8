// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package protocol

import (
	"gitlab.com/hashledger/querynode/pkg/errors"
	"gitlab.com/hashledger/querynode/pkg/types/encoding"
)

// ResponseHeader is carried by every answer.
type ResponseHeader struct {
	PrecheckCode errors.Status `cbor:"1,keyasint,omitempty"`
	ResponseType ResponseType  `cbor:"2,keyasint,omitempty"`
	Cost         uint64        `cbor:"3,keyasint,omitempty"`
}

// Answer is one arm of a [Response]. The payload is empty unless the
// precheck code is OK and the query asked for an answer.
type Answer struct {
	Header  ResponseHeader      `cbor:"1,keyasint"`
	Payload encoding.RawMessage `cbor:"2,keyasint,omitempty"`
}

// Response mirrors [Query]. Exactly one field is set, the one matching the
// query.
type Response struct {
	GetByKey                 *Answer `cbor:"1,keyasint,omitempty"`
	GetBySolidityID          *Answer `cbor:"2,keyasint,omitempty"`
	ContractCallLocal        *Answer `cbor:"3,keyasint,omitempty"`
	ContractGetInfo          *Answer `cbor:"4,keyasint,omitempty"`
	ContractGetBytecode      *Answer `cbor:"5,keyasint,omitempty"`
	ContractGetRecords       *Answer `cbor:"6,keyasint,omitempty"`
	CryptoGetAccountBalance  *Answer `cbor:"7,keyasint,omitempty"`
	CryptoGetAccountRecords  *Answer `cbor:"8,keyasint,omitempty"`
	CryptoGetInfo            *Answer `cbor:"9,keyasint,omitempty"`
	CryptoGetLiveHash        *Answer `cbor:"10,keyasint,omitempty"`
	CryptoGetProxyStakers    *Answer `cbor:"11,keyasint,omitempty"`
	FileGetContents          *Answer `cbor:"12,keyasint,omitempty"`
	FileGetInfo              *Answer `cbor:"13,keyasint,omitempty"`
	TransactionGetReceipt    *Answer `cbor:"14,keyasint,omitempty"`
	TransactionGetRecord     *Answer `cbor:"15,keyasint,omitempty"`
	TransactionGetFastRecord *Answer `cbor:"16,keyasint,omitempty"`
	ConsensusGetTopicInfo    *Answer `cbor:"17,keyasint,omitempty"`
	NetworkGetVersionInfo    *Answer `cbor:"18,keyasint,omitempty"`
	TokenGetInfo             *Answer `cbor:"19,keyasint,omitempty"`
	ScheduleGetInfo          *Answer `cbor:"20,keyasint,omitempty"`
	TokenGetAccountNftInfos  *Answer `cbor:"21,keyasint,omitempty"`
	TokenGetNftInfo          *Answer `cbor:"22,keyasint,omitempty"`
	TokenGetNftInfos         *Answer `cbor:"23,keyasint,omitempty"`
	NetworkGetExecutionTime  *Answer `cbor:"24,keyasint,omitempty"`
	AccountDetails           *Answer `cbor:"25,keyasint,omitempty"`
}

// NewResponse returns a response with the given arm set.
func NewResponse(kind QueryKind, answer *Answer) *Response {
	r := new(Response)
	if p := r.slot(kind); p != nil {
		*p = answer
	}
	return r
}

// Answer returns the populated arm and its kind.
func (r *Response) Answer() (QueryKind, *Answer, error) {
	var kind QueryKind
	var answer *Answer
	for k := queryKindFirst; k <= queryKindLast; k++ {
		a := *r.slot(k)
		if a == nil {
			continue
		}
		if answer != nil {
			return 0, nil, errors.BadEncoding.WithFormat("response has both %v and %v set", kind, k)
		}
		kind, answer = k, a
	}
	if answer == nil {
		return 0, nil, errors.BadEncoding.With("empty response")
	}
	return kind, answer, nil
}

// Get returns the answer for the given kind, or nil.
func (r *Response) Get(kind QueryKind) *Answer {
	if p := r.slot(kind); p != nil {
		return *p
	}
	return nil
}

// UnmarshalPayload decodes the answer's payload into v.
func (a *Answer) UnmarshalPayload(v any) error {
	if len(a.Payload) == 0 {
		return errors.BadEncoding.With("answer has no payload")
	}
	return encoding.Unmarshal(a.Payload, v)
}

func (r *Response) slot(kind QueryKind) **Answer {
	switch kind {
	case QueryKindGetByKey:
		return &r.GetByKey
	case QueryKindGetBySolidityID:
		return &r.GetBySolidityID
	case QueryKindContractCallLocal:
		return &r.ContractCallLocal
	case QueryKindContractGetInfo:
		return &r.ContractGetInfo
	case QueryKindContractGetBytecode:
		return &r.ContractGetBytecode
	case QueryKindContractGetRecords:
		return &r.ContractGetRecords
	case QueryKindCryptoGetAccountBalance:
		return &r.CryptoGetAccountBalance
	case QueryKindCryptoGetAccountRecords:
		return &r.CryptoGetAccountRecords
	case QueryKindCryptoGetInfo:
		return &r.CryptoGetInfo
	case QueryKindCryptoGetLiveHash:
		return &r.CryptoGetLiveHash
	case QueryKindCryptoGetProxyStakers:
		return &r.CryptoGetProxyStakers
	case QueryKindFileGetContents:
		return &r.FileGetContents
	case QueryKindFileGetInfo:
		return &r.FileGetInfo
	case QueryKindTransactionGetReceipt:
		return &r.TransactionGetReceipt
	case QueryKindTransactionGetRecord:
		return &r.TransactionGetRecord
	case QueryKindTransactionGetFastRecord:
		return &r.TransactionGetFastRecord
	case QueryKindConsensusGetTopicInfo:
		return &r.ConsensusGetTopicInfo
	case QueryKindNetworkGetVersionInfo:
		return &r.NetworkGetVersionInfo
	case QueryKindTokenGetInfo:
		return &r.TokenGetInfo
	case QueryKindScheduleGetInfo:
		return &r.ScheduleGetInfo
	case QueryKindTokenGetAccountNftInfos:
		return &r.TokenGetAccountNftInfos
	case QueryKindTokenGetNftInfo:
		return &r.TokenGetNftInfo
	case QueryKindTokenGetNftInfos:
		return &r.TokenGetNftInfos
	case QueryKindNetworkGetExecutionTime:
		return &r.NetworkGetExecutionTime
	case QueryKindAccountDetails:
		return &r.AccountDetails
	}
	return nil
}
