// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package query

import (
	"context"

	"gitlab.com/hashledger/querynode/config"
	"gitlab.com/hashledger/querynode/internal/fees"
	"gitlab.com/hashledger/querynode/internal/state"
	"gitlab.com/hashledger/querynode/pkg/protocol"
)

// Context is what a handler sees of a request. It is a value; WithPayer
// returns a modified copy.
type Context struct {
	ctx    context.Context
	query  *protocol.Query
	kind   protocol.QueryKind
	view   *state.View
	payer  *protocol.AccountID
	config *config.Config
	fees   *fees.Calculator
}

// NewContext returns a context with no payer.
func NewContext(ctx context.Context, query *protocol.Query, kind protocol.QueryKind, view *state.View, cfg *config.Config, calc *fees.Calculator) Context {
	return Context{
		ctx:    ctx,
		query:  query,
		kind:   kind,
		view:   view,
		config: cfg,
		fees:   calc,
	}
}

// WithPayer returns a copy of the context with the payer set.
func (c Context) WithPayer(id protocol.AccountID) Context {
	c.payer = &id
	return c
}

// Payer returns the payer of the query. The payer is only known for paid
// queries, and only once the payment has been checked.
func (c Context) Payer() (protocol.AccountID, bool) {
	if c.payer == nil {
		return protocol.AccountID{}, false
	}
	return *c.payer, true
}

func (c Context) Context() context.Context { return c.ctx }
func (c Context) Query() *protocol.Query   { return c.query }
func (c Context) Kind() protocol.QueryKind { return c.kind }
func (c Context) Body() protocol.QueryBody { return c.query.Body(c.kind) }
func (c Context) View() *state.View        { return c.view }
func (c Context) Config() *config.Config   { return c.config }
func (c Context) Fees() *fees.Calculator   { return c.fees }
