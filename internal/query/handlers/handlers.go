// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package handlers

import (
	"gitlab.com/hashledger/querynode/internal/query"
	"gitlab.com/hashledger/querynode/pkg/protocol"
)

// All returns a handler for every kind of query.
func All() []query.Handler {
	return []query.Handler{
		getByKey{paid{protocol.QueryKindGetByKey}},
		getBySolidityID{paid{protocol.QueryKindGetBySolidityID}},
		contractCallLocal{paid{protocol.QueryKindContractCallLocal}},
		contractGetInfo{paid{protocol.QueryKindContractGetInfo}},
		contractGetBytecode{paid{protocol.QueryKindContractGetBytecode}},
		contractGetRecords{paid{protocol.QueryKindContractGetRecords}},
		cryptoGetAccountBalance{free{protocol.QueryKindCryptoGetAccountBalance}},
		cryptoGetAccountRecords{paid{protocol.QueryKindCryptoGetAccountRecords}},
		cryptoGetInfo{paid{protocol.QueryKindCryptoGetInfo}},
		deprecated{paid{protocol.QueryKindCryptoGetLiveHash}},
		deprecated{paid{protocol.QueryKindCryptoGetProxyStakers}},
		fileGetContents{paid{protocol.QueryKindFileGetContents}},
		fileGetInfo{paid{protocol.QueryKindFileGetInfo}},
		transactionGetReceipt{free{protocol.QueryKindTransactionGetReceipt}},
		transactionGetRecord{paid{protocol.QueryKindTransactionGetRecord}},
		deprecated{paid{protocol.QueryKindTransactionGetFastRecord}},
		consensusGetTopicInfo{paid{protocol.QueryKindConsensusGetTopicInfo}},
		networkGetVersionInfo{paid{protocol.QueryKindNetworkGetVersionInfo}},
		tokenGetInfo{paid{protocol.QueryKindTokenGetInfo}},
		scheduleGetInfo{paid{protocol.QueryKindScheduleGetInfo}},
		tokenGetAccountNftInfos{paid{protocol.QueryKindTokenGetAccountNftInfos}},
		tokenGetNftInfo{paid{protocol.QueryKindTokenGetNftInfo}},
		tokenGetNftInfos{paid{protocol.QueryKindTokenGetNftInfos}},
		networkGetExecutionTime{paid{protocol.QueryKindNetworkGetExecutionTime}},
		accountDetails{paid{protocol.QueryKindAccountDetails}},
	}
}

// NewDispatcher returns a dispatcher with every handler registered.
func NewDispatcher() (*query.Dispatcher, error) {
	return query.NewDispatcher(All()...)
}
