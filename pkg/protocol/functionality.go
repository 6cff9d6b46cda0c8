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

// Functionality identifies an operation for the purposes of fees,
// throttling, permissions, and metrics.
type Functionality uint16

const (
	FunctionalityNone Functionality = iota
	FunctionalityCryptoTransfer
	FunctionalityConsensusSubmitMessage
	FunctionalityGetByKey
	FunctionalityGetBySolidityID
	FunctionalityContractCallLocal
	FunctionalityContractGetInfo
	FunctionalityContractGetBytecode
	FunctionalityContractGetRecords
	FunctionalityCryptoGetAccountBalance
	FunctionalityCryptoGetAccountRecords
	FunctionalityCryptoGetInfo
	FunctionalityCryptoGetLiveHash
	FunctionalityCryptoGetProxyStakers
	FunctionalityFileGetContents
	FunctionalityFileGetInfo
	FunctionalityTransactionGetReceipt
	FunctionalityTransactionGetRecord
	FunctionalityTransactionGetFastRecord
	FunctionalityConsensusGetTopicInfo
	FunctionalityNetworkGetVersionInfo
	FunctionalityTokenGetInfo
	FunctionalityScheduleGetInfo
	FunctionalityTokenGetAccountNftInfos
	FunctionalityTokenGetNftInfo
	FunctionalityTokenGetNftInfos
	FunctionalityNetworkGetExecutionTime
	FunctionalityGetAccountDetails

	functionalityCount
)

var functionalityNames = [...]string{
	FunctionalityNone:                     "None",
	FunctionalityCryptoTransfer:           "CryptoTransfer",
	FunctionalityConsensusSubmitMessage:   "ConsensusSubmitMessage",
	FunctionalityGetByKey:                 "GetByKey",
	FunctionalityGetBySolidityID:          "GetBySolidityID",
	FunctionalityContractCallLocal:        "ContractCallLocal",
	FunctionalityContractGetInfo:          "ContractGetInfo",
	FunctionalityContractGetBytecode:      "ContractGetBytecode",
	FunctionalityContractGetRecords:       "ContractGetRecords",
	FunctionalityCryptoGetAccountBalance:  "CryptoGetAccountBalance",
	FunctionalityCryptoGetAccountRecords:  "CryptoGetAccountRecords",
	FunctionalityCryptoGetInfo:            "CryptoGetInfo",
	FunctionalityCryptoGetLiveHash:        "CryptoGetLiveHash",
	FunctionalityCryptoGetProxyStakers:    "CryptoGetProxyStakers",
	FunctionalityFileGetContents:          "FileGetContents",
	FunctionalityFileGetInfo:              "FileGetInfo",
	FunctionalityTransactionGetReceipt:    "TransactionGetReceipt",
	FunctionalityTransactionGetRecord:     "TransactionGetRecord",
	FunctionalityTransactionGetFastRecord: "TransactionGetFastRecord",
	FunctionalityConsensusGetTopicInfo:    "ConsensusGetTopicInfo",
	FunctionalityNetworkGetVersionInfo:    "NetworkGetVersionInfo",
	FunctionalityTokenGetInfo:             "TokenGetInfo",
	FunctionalityScheduleGetInfo:          "ScheduleGetInfo",
	FunctionalityTokenGetAccountNftInfos:  "TokenGetAccountNftInfos",
	FunctionalityTokenGetNftInfo:          "TokenGetNftInfo",
	FunctionalityTokenGetNftInfos:         "TokenGetNftInfos",
	FunctionalityNetworkGetExecutionTime:  "NetworkGetExecutionTime",
	FunctionalityGetAccountDetails:        "GetAccountDetails",
}

// Functionalities returns every functionality except None.
func Functionalities() []Functionality {
	v := make([]Functionality, 0, functionalityCount-1)
	for f := FunctionalityNone + 1; f < functionalityCount; f++ {
		v = append(v, f)
	}
	return v
}

// FunctionalityByName looks up a functionality by name, ignoring case.
func FunctionalityByName(name string) (Functionality, bool) {
	for f, n := range functionalityNames {
		if strings.EqualFold(n, name) {
			return Functionality(f), true
		}
	}
	return 0, false
}

func (f Functionality) IsValid() bool { return f > FunctionalityNone && f < functionalityCount }

// IsRestricted returns true for functionalities that are never answered
// without a paying, authorized payer.
func (f Functionality) IsRestricted() bool {
	switch f {
	case FunctionalityNetworkGetExecutionTime,
		FunctionalityGetAccountDetails:
		return true
	}
	return false
}

func (f Functionality) String() string {
	if int(f) < len(functionalityNames) {
		return functionalityNames[f]
	}
	return fmt.Sprintf("Functionality(%d)", uint16(f))
}

func (f Functionality) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *Functionality) UnmarshalText(b []byte) error {
	v, ok := FunctionalityByName(string(b))
	if !ok {
		return fmt.Errorf("invalid functionality %q", b)
	}
	*f = v
	return nil
}
