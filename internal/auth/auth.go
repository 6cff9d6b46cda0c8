// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package auth

import (
	"fmt"

	"gitlab.com/hashledger/querynode/config"
	"gitlab.com/hashledger/querynode/pkg/protocol"
)

// Authorizer decides which payers may use which functionalities.
type Authorizer struct {
	superUsers  map[protocol.AccountID]bool
	permissions map[protocol.Functionality]accountRange
}

// accountRange is an inclusive range of account numbers. A negative upper
// bound is unbounded.
type accountRange struct {
	from, to int64
}

func (r accountRange) contains(num int64) bool {
	return num >= r.from && (r.to < 0 || num <= r.to)
}

// New builds an authorizer from the accounts configuration. Functionalities
// with no permission entry are open to every account.
func New(cfg config.Accounts) (*Authorizer, error) {
	a := &Authorizer{
		superUsers:  map[protocol.AccountID]bool{},
		permissions: map[protocol.Functionality]accountRange{},
	}
	for _, s := range cfg.SuperUsers {
		id, err := protocol.ParseEntityID(s)
		if err != nil {
			return nil, fmt.Errorf("super user: %w", err)
		}
		a.superUsers[id] = true
	}
	for _, p := range cfg.Permissions {
		fn, ok := protocol.FunctionalityByName(p.Functionality)
		if !ok || !fn.IsValid() {
			return nil, fmt.Errorf("permission: unknown functionality %q", p.Functionality)
		}
		from, to, err := config.ParseAccountRange(p.Accounts)
		if err != nil {
			return nil, fmt.Errorf("permission %v: %w", fn, err)
		}
		a.permissions[fn] = accountRange{from, to}
	}
	return a, nil
}

// IsSuperUser returns true if the account is exempt from payment checks.
func (a *Authorizer) IsSuperUser(id protocol.AccountID) bool {
	return a.superUsers[id]
}

// IsAuthorized returns true if the account may use the functionality.
func (a *Authorizer) IsAuthorized(id protocol.AccountID, fn protocol.Functionality) bool {
	if !id.IsValid() {
		return false
	}
	r, ok := a.permissions[fn]
	if !ok {
		return true
	}
	return r.contains(id.Num)
}
