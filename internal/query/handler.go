// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package query

import (
	"gitlab.com/hashledger/querynode/internal/fees"
	"gitlab.com/hashledger/querynode/pkg/protocol"
)

// Handler answers one kind of query.
type Handler interface {
	// Kind returns the kind of query the handler answers.
	Kind() protocol.QueryKind

	ExtractHeader(*protocol.Query) (*protocol.QueryHeader, error)

	// NeedsAnswerOnlyCost returns true if a COST_ANSWER query is answered
	// with the cost alone.
	NeedsAnswerOnlyCost(protocol.ResponseType) bool

	// RequiresNodePayment returns true if the query must carry a payment.
	RequiresNodePayment(protocol.ResponseType) bool

	ComputeFees(Context) (fees.Fees, error)

	// Validate checks the query against the state. The payer of the context
	// is not set if the query is not paid.
	Validate(Context) error

	FindResponse(Context, protocol.ResponseHeader) (*protocol.Response, error)
	CreateEmptyResponse(protocol.ResponseHeader) *protocol.Response
}

// EmptyResponse returns a response of the given kind with no payload.
func EmptyResponse(kind protocol.QueryKind, header protocol.ResponseHeader) *protocol.Response {
	return protocol.NewResponse(kind, &protocol.Answer{Header: header})
}
