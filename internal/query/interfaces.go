// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package query

import (
	"context"
	"time"

	"gitlab.com/hashledger/querynode/internal/ingest"
	"gitlab.com/hashledger/querynode/internal/state"
	"gitlab.com/hashledger/querynode/pkg/protocol"
)

// StateAccessor provides snapshots of the state.
type StateAccessor interface {
	// Acquire returns a snapshot. The caller must release it.
	Acquire(protocol.ResponseType) *state.View
}

// IngestChecker checks payment transactions and the node's liveness.
type IngestChecker interface {
	CheckNodeState(context.Context) error
	RunAllChecks(context.Context, *state.View, *protocol.Transaction) (*ingest.TransactionInfo, error)
}

type Authorizer interface {
	IsAuthorized(protocol.AccountID, protocol.Functionality) bool
	IsSuperUser(protocol.AccountID) bool
}

// Submitter hands a transaction to consensus without waiting for it to
// execute.
type Submitter interface {
	Submit(context.Context, *ingest.TransactionInfo) error
}

// Throttle is the admission controller.
type Throttle interface {
	ShouldThrottle(protocol.Functionality, *protocol.Query) bool
}

// PaymentChecker checks the payment of a paid query.
type PaymentChecker interface {
	ValidateCryptoTransfer(*ingest.TransactionInfo) error
	CheckPermissions(protocol.AccountID, protocol.Functionality) error
	EstimateTxFees(*ingest.TransactionInfo) uint64
	ValidateAccountBalances(view *state.View, info *ingest.TransactionInfo, payer *protocol.Account, queryCost, txFee uint64) error
}

type Metrics interface {
	UpdateDuration(protocol.Functionality, time.Duration)
	IncrementThrottled(protocol.Functionality)
	CountReceived(protocol.Functionality)
	CountAnswered(protocol.Functionality)
}
