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

type contractGetInfo struct{ paid }

func (contractGetInfo) ComputeFees(ctx query.Context) (fees.Fees, error) {
	var u fees.Usage
	if c, err := ctx.View().Contract(bodyOf[*protocol.ContractQuery](ctx).ContractID); err == nil {
		u.Bytes = uint64(len(c.Memo))
	}
	return price(ctx, u), nil
}

func (contractGetInfo) Validate(ctx query.Context) error {
	_, err := loadContract(ctx.View(), bodyOf[*protocol.ContractQuery](ctx).ContractID)
	return err
}

func (h contractGetInfo) FindResponse(ctx query.Context, header protocol.ResponseHeader) (*protocol.Response, error) {
	c, err := loadContract(ctx.View(), bodyOf[*protocol.ContractQuery](ctx).ContractID)
	if err != nil {
		return nil, err
	}

	// The bytecode has its own query
	info := *c
	info.Bytecode = nil
	return respond(h.kind, header, &info)
}

type contractGetBytecode struct{ paid }

func (contractGetBytecode) ComputeFees(ctx query.Context) (fees.Fees, error) {
	var u fees.Usage
	if c, err := ctx.View().Contract(bodyOf[*protocol.ContractQuery](ctx).ContractID); err == nil {
		u.Bytes = uint64(len(c.Bytecode))
	}
	return price(ctx, u), nil
}

func (contractGetBytecode) Validate(ctx query.Context) error {
	_, err := loadContract(ctx.View(), bodyOf[*protocol.ContractQuery](ctx).ContractID)
	return err
}

func (h contractGetBytecode) FindResponse(ctx query.Context, header protocol.ResponseHeader) (*protocol.Response, error) {
	c, err := loadContract(ctx.View(), bodyOf[*protocol.ContractQuery](ctx).ContractID)
	if err != nil {
		return nil, err
	}
	return respond(h.kind, header, &protocol.ContractBytecode{ContractID: c.ID, Bytecode: c.Bytecode})
}

type contractGetRecords struct{ paid }

func (contractGetRecords) ComputeFees(ctx query.Context) (fees.Fees, error) {
	var u fees.Usage
	if c, err := ctx.View().Contract(bodyOf[*protocol.ContractQuery](ctx).ContractID); err == nil {
		if r, err := ctx.View().AccountRecords(c.AccountID); err == nil {
			u.Results = uint64(len(r))
		}
	}
	return price(ctx, u), nil
}

func (contractGetRecords) Validate(ctx query.Context) error {
	_, err := loadContract(ctx.View(), bodyOf[*protocol.ContractQuery](ctx).ContractID)
	return err
}

func (h contractGetRecords) FindResponse(ctx query.Context, header protocol.ResponseHeader) (*protocol.Response, error) {
	c, err := loadContract(ctx.View(), bodyOf[*protocol.ContractQuery](ctx).ContractID)
	if err != nil {
		return nil, err
	}
	var records []*protocol.TransactionRecord
	if c.AccountID.IsValid() {
		records, err = ctx.View().AccountRecords(c.AccountID)
		if err != nil {
			return nil, err
		}
	}
	return respond(h.kind, header, &protocol.ContractRecords{ContractID: c.ID, Records: records})
}

// contractCallLocal checks the call but cannot execute it since the node
// has no virtual machine.
type contractCallLocal struct{ paid }

func (contractCallLocal) ComputeFees(ctx query.Context) (fees.Fees, error) {
	q := bodyOf[*protocol.ContractCallLocalQuery](ctx)
	return price(ctx, fees.Usage{Bytes: uint64(len(q.FunctionParameters))}), nil
}

func (contractCallLocal) Validate(ctx query.Context) error {
	q := bodyOf[*protocol.ContractCallLocalQuery](ctx)
	_, err := loadContract(ctx.View(), q.ContractID)
	if err != nil {
		return err
	}
	return errors.NotSupported.WithFormat("local execution of %v is not supported", q.ContractID)
}

func (contractCallLocal) FindResponse(query.Context, protocol.ResponseHeader) (*protocol.Response, error) {
	return nil, errors.NotSupported.With("local execution is not supported")
}
