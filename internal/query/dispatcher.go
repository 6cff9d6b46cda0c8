// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package query

import (
	"gitlab.com/hashledger/querynode/pkg/errors"
	"gitlab.com/hashledger/querynode/pkg/protocol"
)

// Dispatcher selects the handler of a query.
type Dispatcher struct {
	handlers map[protocol.QueryKind]Handler
}

// NewDispatcher returns a dispatcher for the given handlers. Every kind of
// query must have exactly one handler.
func NewDispatcher(handlers ...Handler) (*Dispatcher, error) {
	d := &Dispatcher{handlers: make(map[protocol.QueryKind]Handler, len(handlers))}
	for _, h := range handlers {
		kind := h.Kind()
		if !kind.IsValid() {
			return nil, errors.FailInvalid.WithFormat("handler %T has invalid kind %v", h, kind)
		}
		if _, ok := d.handlers[kind]; ok {
			return nil, errors.Conflict.WithFormat("double registered handler for %v", kind)
		}
		d.handlers[kind] = h
	}

	for _, kind := range protocol.QueryKinds() {
		if _, ok := d.handlers[kind]; !ok {
			return nil, errors.NotSupported.WithFormat("no handler for %v", kind)
		}
	}
	return d, nil
}

// HandlerFor returns the handler of the populated arm of the query.
func (d *Dispatcher) HandlerFor(query *protocol.Query) (Handler, protocol.QueryKind, error) {
	kind, err := query.Kind()
	if err != nil {
		return nil, 0, err
	}
	h, ok := d.handlers[kind]
	if !ok {
		return nil, 0, errors.NotSupported.WithFormat("no handler for %v", kind)
	}
	return h, kind, nil
}
