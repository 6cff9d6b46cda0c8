// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package handlers

import (
	"gitlab.com/hashledger/querynode"
	"gitlab.com/hashledger/querynode/internal/fees"
	"gitlab.com/hashledger/querynode/internal/query"
	"gitlab.com/hashledger/querynode/internal/state"
	"gitlab.com/hashledger/querynode/pkg/errors"
	"gitlab.com/hashledger/querynode/pkg/protocol"
)

type networkGetVersionInfo struct{ paid }

func (networkGetVersionInfo) ComputeFees(ctx query.Context) (fees.Fees, error) {
	return price(ctx, fees.Usage{}), nil
}

func (networkGetVersionInfo) Validate(query.Context) error { return nil }

func (h networkGetVersionInfo) FindResponse(_ query.Context, header protocol.ResponseHeader) (*protocol.Response, error) {
	return respond(h.kind, header, &protocol.VersionInfo{
		ProtocolVersion: querynode.ProtocolVersion,
		NodeVersion:     querynode.NodeVersion(),
	})
}

// networkGetExecutionTime reports how long recent transactions took to
// execute. It is restricted to privileged accounts.
type networkGetExecutionTime struct{ paid }

const maxExecutionTimes = 100

func (networkGetExecutionTime) ComputeFees(ctx query.Context) (fees.Fees, error) {
	q := bodyOf[*protocol.ExecutionTimeQuery](ctx)
	return price(ctx, fees.Usage{Results: uint64(len(q.TransactionIDs))}), nil
}

func (networkGetExecutionTime) Validate(ctx query.Context) error {
	q := bodyOf[*protocol.ExecutionTimeQuery](ctx)
	if len(q.TransactionIDs) == 0 || len(q.TransactionIDs) > maxExecutionTimes {
		return errors.InvalidTransactionID.WithFormat("query must name between 1 and %d transactions", maxExecutionTimes)
	}
	for _, id := range q.TransactionIDs {
		err := validTransactionID(id)
		if err != nil {
			return err
		}
	}
	return nil
}

func (h networkGetExecutionTime) FindResponse(ctx query.Context, header protocol.ResponseHeader) (*protocol.Response, error) {
	q := bodyOf[*protocol.ExecutionTimeQuery](ctx)
	times := &protocol.ExecutionTimes{ExecutionNanos: make([]uint64, len(q.TransactionIDs))}
	for i, id := range q.TransactionIDs {
		r, err := ctx.View().Record(id)
		switch {
		case err == nil:
			times.ExecutionNanos[i] = r.ExecutionNanos
		case errors.Is(err, state.ErrNotFound):
			return nil, errors.InvalidTransactionID.WithFormat("no execution time for %v", id)
		default:
			return nil, err
		}
	}
	return respond(h.kind, header, times)
}
