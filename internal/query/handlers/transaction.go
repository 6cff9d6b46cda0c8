// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package handlers

import (
	"gitlab.com/hashledger/querynode/internal/fees"
	"gitlab.com/hashledger/querynode/internal/query"
	"gitlab.com/hashledger/querynode/internal/state"
	"gitlab.com/hashledger/querynode/pkg/errors"
	"gitlab.com/hashledger/querynode/pkg/protocol"
)

type transactionGetReceipt struct{ free }

func (transactionGetReceipt) Validate(ctx query.Context) error {
	return validTransactionID(bodyOf[*protocol.TransactionQuery](ctx).TransactionID)
}

// FindResponse returns the receipt of the transaction. A transaction that
// has been submitted but has not reached consensus has an UNKNOWN receipt.
func (h transactionGetReceipt) FindResponse(ctx query.Context, header protocol.ResponseHeader) (*protocol.Response, error) {
	id := bodyOf[*protocol.TransactionQuery](ctx).TransactionID
	record, err := ctx.View().Record(id)
	switch {
	case err == nil:
		return respond(h.kind, header, &record.Receipt)
	case !errors.Is(err, state.ErrNotFound):
		return nil, err
	}

	pending, err := ctx.View().IsPending(id)
	if err != nil {
		return nil, err
	}
	if !pending {
		return nil, errors.ReceiptNotFound.WithFormat("no receipt for %v", id)
	}
	return respond(h.kind, header, &protocol.TransactionReceipt{Status: errors.Unknown})
}

type transactionGetRecord struct{ paid }

func (transactionGetRecord) ComputeFees(ctx query.Context) (fees.Fees, error) {
	return price(ctx, fees.Usage{}), nil
}

func (transactionGetRecord) Validate(ctx query.Context) error {
	return validTransactionID(bodyOf[*protocol.TransactionQuery](ctx).TransactionID)
}

func (h transactionGetRecord) FindResponse(ctx query.Context, header protocol.ResponseHeader) (*protocol.Response, error) {
	id := bodyOf[*protocol.TransactionQuery](ctx).TransactionID
	record, err := ctx.View().Record(id)
	switch {
	case err == nil:
		return respond(h.kind, header, record)
	case errors.Is(err, state.ErrNotFound):
		return nil, errors.RecordNotFound.WithFormat("no record for %v", id)
	default:
		return nil, err
	}
}
