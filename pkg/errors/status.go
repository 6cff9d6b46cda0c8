// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package errors

import (
	"fmt"
	"strings"
)

// Precheck codes. The numeric values are part of the wire format and must not
// be reordered.
const (
	OK                              Status = 0
	InvalidTransaction              Status = 1
	PayerAccountNotFound            Status = 2
	InvalidNodeAccount              Status = 3
	TransactionExpired              Status = 4
	InvalidTransactionStart         Status = 5
	InvalidTransactionDuration      Status = 6
	InvalidSignature                Status = 7
	MemoTooLong                     Status = 8
	InsufficientTxFee               Status = 9
	InsufficientPayerBalance        Status = 10
	DuplicateTransaction            Status = 11
	Busy                            Status = 12
	NotSupported                    Status = 13
	InvalidFileID                   Status = 14
	InvalidAccountID                Status = 15
	InvalidContractID               Status = 16
	InvalidTransactionID            Status = 17
	ReceiptNotFound                 Status = 18
	RecordNotFound                  Status = 19
	InvalidSolidityID               Status = 20
	Unknown                         Status = 21
	Success                         Status = 22
	FailInvalid                     Status = 23
	FailFee                         Status = 24
	FailBalance                     Status = 25
	KeyRequired                     Status = 26
	BadEncoding                     Status = 27
	InsufficientAccountBalance      Status = 28
	InvalidTransactionBody          Status = 29
	InvalidAccountAmounts           Status = 30
	AccountRepeatedInAccountAmounts Status = 31
	TransferListSizeLimitExceeded   Status = 32
	AccountIDDoesNotExist           Status = 33
	AccountDeleted                  Status = 34
	FileDeleted                     Status = 35
	InvalidTopicID                  Status = 36
	InvalidTokenID                  Status = 37
	InvalidScheduleID               Status = 38
	InvalidNftID                    Status = 39
	PlatformNotActive               Status = 40
	PlatformTransactionNotCreated   Status = 41
	ContractDeleted                 Status = 42
	TokenWasDeleted                 Status = 43
	ScheduleDeleted                 Status = 44
	Conflict                        Status = 45
)

var statusNames = map[Status]string{
	OK:                              "OK",
	InvalidTransaction:              "INVALID_TRANSACTION",
	PayerAccountNotFound:            "PAYER_ACCOUNT_NOT_FOUND",
	InvalidNodeAccount:              "INVALID_NODE_ACCOUNT",
	TransactionExpired:              "TRANSACTION_EXPIRED",
	InvalidTransactionStart:         "INVALID_TRANSACTION_START",
	InvalidTransactionDuration:      "INVALID_TRANSACTION_DURATION",
	InvalidSignature:                "INVALID_SIGNATURE",
	MemoTooLong:                     "MEMO_TOO_LONG",
	InsufficientTxFee:               "INSUFFICIENT_TX_FEE",
	InsufficientPayerBalance:        "INSUFFICIENT_PAYER_BALANCE",
	DuplicateTransaction:            "DUPLICATE_TRANSACTION",
	Busy:                            "BUSY",
	NotSupported:                    "NOT_SUPPORTED",
	InvalidFileID:                   "INVALID_FILE_ID",
	InvalidAccountID:                "INVALID_ACCOUNT_ID",
	InvalidContractID:               "INVALID_CONTRACT_ID",
	InvalidTransactionID:            "INVALID_TRANSACTION_ID",
	ReceiptNotFound:                 "RECEIPT_NOT_FOUND",
	RecordNotFound:                  "RECORD_NOT_FOUND",
	InvalidSolidityID:               "INVALID_SOLIDITY_ID",
	Unknown:                         "UNKNOWN",
	Success:                         "SUCCESS",
	FailInvalid:                     "FAIL_INVALID",
	FailFee:                         "FAIL_FEE",
	FailBalance:                     "FAIL_BALANCE",
	KeyRequired:                     "KEY_REQUIRED",
	BadEncoding:                     "BAD_ENCODING",
	InsufficientAccountBalance:      "INSUFFICIENT_ACCOUNT_BALANCE",
	InvalidTransactionBody:          "INVALID_TRANSACTION_BODY",
	InvalidAccountAmounts:           "INVALID_ACCOUNT_AMOUNTS",
	AccountRepeatedInAccountAmounts: "ACCOUNT_REPEATED_IN_ACCOUNT_AMOUNTS",
	TransferListSizeLimitExceeded:   "TRANSFER_LIST_SIZE_LIMIT_EXCEEDED",
	AccountIDDoesNotExist:           "ACCOUNT_ID_DOES_NOT_EXIST",
	AccountDeleted:                  "ACCOUNT_DELETED",
	FileDeleted:                     "FILE_DELETED",
	InvalidTopicID:                  "INVALID_TOPIC_ID",
	InvalidTokenID:                  "INVALID_TOKEN_ID",
	InvalidScheduleID:               "INVALID_SCHEDULE_ID",
	InvalidNftID:                    "INVALID_NFT_ID",
	PlatformNotActive:               "PLATFORM_NOT_ACTIVE",
	PlatformTransactionNotCreated:   "PLATFORM_TRANSACTION_NOT_CREATED",
	ContractDeleted:                 "CONTRACT_DELETED",
	TokenWasDeleted:                 "TOKEN_WAS_DELETED",
	ScheduleDeleted:                 "SCHEDULE_DELETED",
	Conflict:                        "CONFLICT",
}

var statusByName = func() map[string]Status {
	m := make(map[string]Status, len(statusNames))
	for s, n := range statusNames {
		m[n] = s
	}
	return m
}()

// StatusByName returns the status with the given name. Names are matched
// case-insensitively.
func StatusByName(name string) (Status, bool) {
	s, ok := statusByName[strings.ToUpper(name)]
	return s, ok
}

// String returns the name of the status.
func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Status(%d)", uint32(s))
}

// IsOK returns true if the status is OK.
func (s Status) IsOK() bool { return s == OK }

// IsKnownError returns true if the status is non-zero and not Unknown.
func (s Status) IsKnownError() bool { return s != OK && s != Unknown }

// MarshalText implements [encoding.TextMarshaler].
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (s *Status) UnmarshalText(b []byte) error {
	v, ok := StatusByName(string(b))
	if !ok {
		return fmt.Errorf("invalid status %q", b)
	}
	*s = v
	return nil
}
