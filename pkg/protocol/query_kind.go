// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package protocol

import (
	"fmt"
	"strings"
)

// QueryKind is the discriminant of a [Query] and its [Response].
type QueryKind uint8

const (
	QueryKindGetByKey QueryKind = iota + 1
	QueryKindGetBySolidityID
	QueryKindContractCallLocal
	QueryKindContractGetInfo
	QueryKindContractGetBytecode
	QueryKindContractGetRecords
	QueryKindCryptoGetAccountBalance
	QueryKindCryptoGetAccountRecords
	QueryKindCryptoGetInfo
	QueryKindCryptoGetLiveHash
	QueryKindCryptoGetProxyStakers
	QueryKindFileGetContents
	QueryKindFileGetInfo
	QueryKindTransactionGetReceipt
	QueryKindTransactionGetRecord
	QueryKindTransactionGetFastRecord
	QueryKindConsensusGetTopicInfo
	QueryKindNetworkGetVersionInfo
	QueryKindTokenGetInfo
	QueryKindScheduleGetInfo
	QueryKindTokenGetAccountNftInfos
	QueryKindTokenGetNftInfo
	QueryKindTokenGetNftInfos
	QueryKindNetworkGetExecutionTime
	QueryKindAccountDetails

	queryKindFirst = QueryKindGetByKey
	queryKindLast  = QueryKindAccountDetails
)

var queryKindInfo = [...]struct {
	name string
	fn   Functionality
}{
	QueryKindGetByKey:                 {"getByKey", FunctionalityGetByKey},
	QueryKindGetBySolidityID:          {"getBySolidityID", FunctionalityGetBySolidityID},
	QueryKindContractCallLocal:        {"contractCallLocal", FunctionalityContractCallLocal},
	QueryKindContractGetInfo:          {"contractGetInfo", FunctionalityContractGetInfo},
	QueryKindContractGetBytecode:      {"contractGetBytecode", FunctionalityContractGetBytecode},
	QueryKindContractGetRecords:       {"contractGetRecords", FunctionalityContractGetRecords},
	QueryKindCryptoGetAccountBalance:  {"cryptoGetAccountBalance", FunctionalityCryptoGetAccountBalance},
	QueryKindCryptoGetAccountRecords:  {"cryptoGetAccountRecords", FunctionalityCryptoGetAccountRecords},
	QueryKindCryptoGetInfo:            {"cryptoGetInfo", FunctionalityCryptoGetInfo},
	QueryKindCryptoGetLiveHash:        {"cryptoGetLiveHash", FunctionalityCryptoGetLiveHash},
	QueryKindCryptoGetProxyStakers:    {"cryptoGetProxyStakers", FunctionalityCryptoGetProxyStakers},
	QueryKindFileGetContents:          {"fileGetContents", FunctionalityFileGetContents},
	QueryKindFileGetInfo:              {"fileGetInfo", FunctionalityFileGetInfo},
	QueryKindTransactionGetReceipt:    {"transactionGetReceipt", FunctionalityTransactionGetReceipt},
	QueryKindTransactionGetRecord:     {"transactionGetRecord", FunctionalityTransactionGetRecord},
	QueryKindTransactionGetFastRecord: {"transactionGetFastRecord", FunctionalityTransactionGetFastRecord},
	QueryKindConsensusGetTopicInfo:    {"consensusGetTopicInfo", FunctionalityConsensusGetTopicInfo},
	QueryKindNetworkGetVersionInfo:    {"networkGetVersionInfo", FunctionalityNetworkGetVersionInfo},
	QueryKindTokenGetInfo:             {"tokenGetInfo", FunctionalityTokenGetInfo},
	QueryKindScheduleGetInfo:          {"scheduleGetInfo", FunctionalityScheduleGetInfo},
	QueryKindTokenGetAccountNftInfos:  {"tokenGetAccountNftInfos", FunctionalityTokenGetAccountNftInfos},
	QueryKindTokenGetNftInfo:          {"tokenGetNftInfo", FunctionalityTokenGetNftInfo},
	QueryKindTokenGetNftInfos:         {"tokenGetNftInfos", FunctionalityTokenGetNftInfos},
	QueryKindNetworkGetExecutionTime:  {"networkGetExecutionTime", FunctionalityNetworkGetExecutionTime},
	QueryKindAccountDetails:           {"accountDetails", FunctionalityGetAccountDetails},
}

// QueryKinds returns every query kind.
func QueryKinds() []QueryKind {
	v := make([]QueryKind, 0, queryKindLast)
	for k := queryKindFirst; k <= queryKindLast; k++ {
		v = append(v, k)
	}
	return v
}

// QueryKindByName looks up a query kind by name, ignoring case.
func QueryKindByName(name string) (QueryKind, bool) {
	for k := queryKindFirst; k <= queryKindLast; k++ {
		if strings.EqualFold(queryKindInfo[k].name, name) {
			return k, true
		}
	}
	return 0, false
}

func (k QueryKind) IsValid() bool { return k >= queryKindFirst && k <= queryKindLast }

// Functionality returns the functionality used to price, throttle, and
// authorize queries of this kind.
func (k QueryKind) Functionality() Functionality {
	if !k.IsValid() {
		return FunctionalityNone
	}
	return queryKindInfo[k].fn
}

func (k QueryKind) String() string {
	if !k.IsValid() {
		return fmt.Sprintf("QueryKind(%d)", uint8(k))
	}
	return queryKindInfo[k].name
}
