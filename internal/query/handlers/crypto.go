// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package handlers

import (
	"gitlab.com/hashledger/querynode/internal/fees"
	"gitlab.com/hashledger/querynode/internal/query"
	"gitlab.com/hashledger/querynode/pkg/errors"
	"gitlab.com/hashledger/querynode/pkg/protocol"
)

type cryptoGetAccountBalance struct{ free }

func (cryptoGetAccountBalance) Validate(ctx query.Context) error {
	_, err := balanceOf(ctx)
	return err
}

func (h cryptoGetAccountBalance) FindResponse(ctx query.Context, header protocol.ResponseHeader) (*protocol.Response, error) {
	b, err := balanceOf(ctx)
	if err != nil {
		return nil, err
	}
	return respond(h.kind, header, b)
}

// balanceOf returns the balance of the account or contract the query
// targets. A contract's balance is held by its account.
func balanceOf(ctx query.Context) (*protocol.AccountBalance, error) {
	q := bodyOf[*protocol.BalanceQuery](ctx)
	id := q.AccountID
	switch {
	case !q.AccountID.IsZero() && !q.ContractID.IsZero():
		return nil, errors.InvalidAccountID.With("query must target an account or a contract, not both")

	case !q.ContractID.IsZero():
		c, err := loadContract(ctx.View(), q.ContractID)
		if err != nil {
			return nil, err
		}
		id = c.AccountID
	}

	a, err := loadAccount(ctx.View(), id)
	if err != nil {
		return nil, err
	}
	return &protocol.AccountBalance{AccountID: a.ID, Balance: a.Balance}, nil
}

type cryptoGetInfo struct{ paid }

func (cryptoGetInfo) ComputeFees(ctx query.Context) (fees.Fees, error) {
	var u fees.Usage
	if a, err := ctx.View().Account(bodyOf[*protocol.AccountQuery](ctx).AccountID); err == nil {
		u.Bytes = uint64(len(a.Memo) + len(a.Alias))
	}
	return price(ctx, u), nil
}

func (cryptoGetInfo) Validate(ctx query.Context) error {
	_, err := loadAccount(ctx.View(), bodyOf[*protocol.AccountQuery](ctx).AccountID)
	return err
}

func (h cryptoGetInfo) FindResponse(ctx query.Context, header protocol.ResponseHeader) (*protocol.Response, error) {
	a, err := loadAccount(ctx.View(), bodyOf[*protocol.AccountQuery](ctx).AccountID)
	if err != nil {
		return nil, err
	}
	return respond(h.kind, header, a)
}

type cryptoGetAccountRecords struct{ paid }

func (cryptoGetAccountRecords) ComputeFees(ctx query.Context) (fees.Fees, error) {
	var u fees.Usage
	if r, err := ctx.View().AccountRecords(bodyOf[*protocol.AccountQuery](ctx).AccountID); err == nil {
		u.Results = uint64(len(r))
	}
	return price(ctx, u), nil
}

func (cryptoGetAccountRecords) Validate(ctx query.Context) error {
	_, err := loadAccount(ctx.View(), bodyOf[*protocol.AccountQuery](ctx).AccountID)
	return err
}

func (h cryptoGetAccountRecords) FindResponse(ctx query.Context, header protocol.ResponseHeader) (*protocol.Response, error) {
	id := bodyOf[*protocol.AccountQuery](ctx).AccountID
	_, err := loadAccount(ctx.View(), id)
	if err != nil {
		return nil, err
	}
	records, err := ctx.View().AccountRecords(id)
	if err != nil {
		return nil, err
	}
	return respond(h.kind, header, &protocol.AccountRecords{AccountID: id, Records: records})
}

// accountDetails is the privileged view of an account. Only accounts
// permitted to use it may pay for it.
type accountDetails struct{ paid }

func (accountDetails) ComputeFees(ctx query.Context) (fees.Fees, error) {
	var u fees.Usage
	if a, err := ctx.View().Account(bodyOf[*protocol.AccountQuery](ctx).AccountID); err == nil {
		u.Results = uint64(len(a.Tokens))
	}
	return price(ctx, u), nil
}

func (accountDetails) Validate(ctx query.Context) error {
	_, err := loadAccount(ctx.View(), bodyOf[*protocol.AccountQuery](ctx).AccountID)
	return err
}

func (h accountDetails) FindResponse(ctx query.Context, header protocol.ResponseHeader) (*protocol.Response, error) {
	a, err := loadAccount(ctx.View(), bodyOf[*protocol.AccountQuery](ctx).AccountID)
	if err != nil {
		return nil, err
	}

	details := &protocol.AccountDetails{Account: a, Expires: a.ExpirationTime}
	for _, id := range a.Tokens {
		t, err := ctx.View().Token(id)
		if err != nil {
			// Tokens that have since been removed are skipped
			continue
		}
		details.Tokens = append(details.Tokens, t)
	}
	return respond(h.kind, header, details)
}
