// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package handlers implements a handler for every kind of query.
package handlers

import (
	"gitlab.com/hashledger/querynode/internal/fees"
	"gitlab.com/hashledger/querynode/internal/query"
	"gitlab.com/hashledger/querynode/internal/state"
	"gitlab.com/hashledger/querynode/pkg/errors"
	"gitlab.com/hashledger/querynode/pkg/protocol"
	"gitlab.com/hashledger/querynode/pkg/types/encoding"
)

// paid is embedded by handlers of queries that must be paid for unless only
// the cost is asked for.
type paid struct {
	kind protocol.QueryKind
}

func (h paid) Kind() protocol.QueryKind { return h.kind }

func (h paid) ExtractHeader(q *protocol.Query) (*protocol.QueryHeader, error) {
	return extractHeader(q, h.kind)
}

func (paid) NeedsAnswerOnlyCost(t protocol.ResponseType) bool {
	return t == protocol.CostAnswer
}

func (paid) RequiresNodePayment(t protocol.ResponseType) bool {
	return t == protocol.AnswerOnly || t == protocol.AnswerStateProof
}

func (h paid) CreateEmptyResponse(header protocol.ResponseHeader) *protocol.Response {
	return query.EmptyResponse(h.kind, header)
}

// free is embedded by handlers of queries that are never charged.
type free struct {
	kind protocol.QueryKind
}

func (h free) Kind() protocol.QueryKind { return h.kind }

func (h free) ExtractHeader(q *protocol.Query) (*protocol.QueryHeader, error) {
	return extractHeader(q, h.kind)
}

func (free) NeedsAnswerOnlyCost(protocol.ResponseType) bool { return false }
func (free) RequiresNodePayment(protocol.ResponseType) bool { return false }
func (free) ComputeFees(query.Context) (fees.Fees, error)   { return fees.Free, nil }

func (h free) CreateEmptyResponse(header protocol.ResponseHeader) *protocol.Response {
	return query.EmptyResponse(h.kind, header)
}

// deprecated answers queries the node no longer supports.
type deprecated struct {
	paid
}

func (deprecated) ComputeFees(query.Context) (fees.Fees, error) { return fees.Free, nil }

func (h deprecated) Validate(query.Context) error {
	return errors.NotSupported.WithFormat("%v is no longer supported", h.kind)
}

func (h deprecated) FindResponse(query.Context, protocol.ResponseHeader) (*protocol.Response, error) {
	return nil, errors.NotSupported.WithFormat("%v is no longer supported", h.kind)
}

func extractHeader(q *protocol.Query, kind protocol.QueryKind) (*protocol.QueryHeader, error) {
	body := q.Body(kind)
	if body == nil {
		return nil, errors.InvalidTransactionBody.WithFormat("query is not %v", kind)
	}
	return body.GetHeader(), nil
}

func bodyOf[T protocol.QueryBody](ctx query.Context) T {
	b, _ := ctx.Body().(T)
	return b
}

// respond returns a response with the payload encoded.
func respond(kind protocol.QueryKind, header protocol.ResponseHeader, payload any) (*protocol.Response, error) {
	b, err := encoding.Marshal(payload)
	if err != nil {
		return nil, errors.BadEncoding.WithFormat("encode %v answer: %w", kind, err)
	}
	return protocol.NewResponse(kind, &protocol.Answer{Header: header, Payload: b}), nil
}

func price(ctx query.Context, usage fees.Usage) fees.Fees {
	return ctx.Fees().Compute(ctx.Kind().Functionality(), usage)
}

// load fetches an entity and maps a missing entity to the given status.
func load[T any](get func(protocol.EntityID) (*T, error), id protocol.EntityID, invalid errors.Status, what string) (*T, error) {
	if !id.IsValid() {
		return nil, invalid.WithFormat("invalid %s %v", what, id)
	}
	v, err := get(id)
	switch {
	case err == nil:
		return v, nil
	case errors.Is(err, state.ErrNotFound):
		return nil, invalid.WithFormat("%s %v does not exist", what, id)
	default:
		return nil, errors.Unknown.WithFormat("load %s %v: %w", what, id, err)
	}
}

func loadAccount(v *state.View, id protocol.AccountID) (*protocol.Account, error) {
	a, err := load(v.Account, id, errors.InvalidAccountID, "account")
	if err != nil {
		return nil, err
	}
	if a.Deleted {
		return nil, errors.AccountDeleted.WithFormat("account %v has been deleted", id)
	}
	return a, nil
}

func loadContract(v *state.View, id protocol.ContractID) (*protocol.Contract, error) {
	c, err := load(v.Contract, id, errors.InvalidContractID, "contract")
	if err != nil {
		return nil, err
	}
	if c.Deleted {
		return nil, errors.ContractDeleted.WithFormat("contract %v has been deleted", id)
	}
	return c, nil
}

func loadToken(v *state.View, id protocol.TokenID) (*protocol.Token, error) {
	t, err := load(v.Token, id, errors.InvalidTokenID, "token")
	if err != nil {
		return nil, err
	}
	if t.Deleted {
		return nil, errors.TokenWasDeleted.WithFormat("token %v has been deleted", id)
	}
	return t, nil
}

func validTransactionID(id protocol.TransactionID) error {
	if !id.IsValid() {
		return errors.InvalidTransactionID.WithFormat("invalid transaction ID %v", id)
	}
	return nil
}
