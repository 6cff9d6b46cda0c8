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

// getByKey returns the accounts controlled by a key.
type getByKey struct{ paid }

func (getByKey) ComputeFees(ctx query.Context) (fees.Fees, error) {
	return price(ctx, fees.Usage{}), nil
}

func (getByKey) Validate(ctx query.Context) error {
	if bodyOf[*protocol.KeyQuery](ctx).Key.IsEmpty() {
		return errors.KeyRequired.With("query must specify a key")
	}
	return nil
}

func (h getByKey) FindResponse(ctx query.Context, header protocol.ResponseHeader) (*protocol.Response, error) {
	ids, err := ctx.View().AccountsWithKey(bodyOf[*protocol.KeyQuery](ctx).Key)
	if err != nil {
		return nil, err
	}
	return respond(h.kind, header, &protocol.EntityIDs{Accounts: ids})
}

// getBySolidityID resolves a solidity address to a contract and its account.
type getBySolidityID struct{ paid }

func (getBySolidityID) ComputeFees(ctx query.Context) (fees.Fees, error) {
	return price(ctx, fees.Usage{}), nil
}

func (getBySolidityID) Validate(ctx query.Context) error {
	_, err := findBySolidityID(ctx)
	return err
}

func (h getBySolidityID) FindResponse(ctx query.Context, header protocol.ResponseHeader) (*protocol.Response, error) {
	c, err := findBySolidityID(ctx)
	if err != nil {
		return nil, err
	}
	ids := &protocol.EntityIDs{Contracts: []protocol.ContractID{c.ID}}
	if c.AccountID.IsValid() {
		ids.Accounts = []protocol.AccountID{c.AccountID}
	}
	return respond(h.kind, header, ids)
}

func findBySolidityID(ctx query.Context) (*protocol.Contract, error) {
	sid := bodyOf[*protocol.SolidityIDQuery](ctx).SolidityID
	if sid == "" {
		return nil, errors.InvalidSolidityID.With("query must specify a solidity ID")
	}
	c, err := ctx.View().ContractBySolidityID(sid)
	switch {
	case err == nil:
		return c, nil
	case errors.Is(err, state.ErrNotFound):
		return nil, errors.InvalidSolidityID.WithFormat("no contract has solidity ID %s", sid)
	default:
		return nil, err
	}
}
