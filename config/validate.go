// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package config

import (
	stderrs "errors"
	"fmt"
	"strconv"
	"strings"

	"gitlab.com/hashledger/querynode/internal/logging"
	"gitlab.com/hashledger/querynode/pkg/errors"
	"gitlab.com/hashledger/querynode/pkg/protocol"
)

// Validate checks that every value parses.
func (c *Config) Validate() error {
	var errs []error
	check := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	_, err := c.NodeAccount()
	check(err)
	_, err = logging.ParseRules(c.Logging.Level)
	check(err)
	_, err = c.MissingPaymentStatus()
	check(err)
	_, err = c.SuperUsers()
	check(err)

	switch c.Storage.Type {
	case MemoryStorage:
	case BadgerStorage:
		if c.Storage.Path == "" {
			check(fmt.Errorf("storage: badger requires a path"))
		}
	default:
		check(fmt.Errorf("storage: unknown type %q", c.Storage.Type))
	}

	for _, p := range c.Accounts.Permissions {
		_, err = parseFunctionality(p.Functionality)
		check(err)
		_, _, err = ParseAccountRange(p.Accounts)
		check(err)
	}

	if c.Throttle.CapacitySplit < 1 {
		check(fmt.Errorf("throttle: capacity split must be at least 1"))
	}
	for _, b := range c.Throttle.Buckets {
		if b.OpsPerSec <= 0 || b.BurstPeriod <= 0 {
			check(fmt.Errorf("throttle: bucket %q has no capacity", b.Name))
		}
		for _, f := range b.Functionalities {
			_, err = parseFunctionality(f)
			check(err)
		}
	}

	if c.Ingest.MinValidDuration > c.Ingest.MaxValidDuration {
		check(fmt.Errorf("ingest: min valid duration exceeds max"))
	}
	if c.Fees.HbarEquiv <= 0 || c.Fees.CentEquiv <= 0 {
		check(fmt.Errorf("fees: exchange rate must be positive"))
	}
	if c.Node.MaxConnections < 0 {
		check(fmt.Errorf("node: max connections must not be negative"))
	}
	if c.Query.MaxConcurrent < 1 {
		check(fmt.Errorf("query: max concurrent must be at least 1"))
	}

	return stderrs.Join(errs...)
}

// NodeAccount returns the account that receives query payments.
func (c *Config) NodeAccount() (protocol.AccountID, error) {
	return protocol.ParseEntityID(c.Node.AccountID)
}

// MissingPaymentStatus returns the precheck code for a paid query with no
// payment.
func (c *Config) MissingPaymentStatus() (errors.Status, error) {
	s, ok := errors.StatusByName(c.Query.MissingPaymentCode)
	if !ok || !s.IsKnownError() {
		return 0, fmt.Errorf("query: invalid missing payment code %q", c.Query.MissingPaymentCode)
	}
	return s, nil
}

// SuperUsers returns the superuser accounts.
func (c *Config) SuperUsers() ([]protocol.AccountID, error) {
	ids := make([]protocol.AccountID, 0, len(c.Accounts.SuperUsers))
	for _, s := range c.Accounts.SuperUsers {
		id, err := protocol.ParseEntityID(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ParseAccountRange parses an account number range such as "2-50", "0-*",
// or "55". An upper bound of * is unbounded and returned as -1.
func ParseAccountRange(s string) (from, to int64, err error) {
	lo, hi, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		hi = lo
	}
	from, err = strconv.ParseInt(strings.TrimSpace(lo), 10, 64)
	if err != nil || from < 0 {
		return 0, 0, fmt.Errorf("invalid account range %q", s)
	}
	if strings.TrimSpace(hi) == "*" {
		return from, -1, nil
	}
	to, err = strconv.ParseInt(strings.TrimSpace(hi), 10, 64)
	if err != nil || to < from {
		return 0, 0, fmt.Errorf("invalid account range %q", s)
	}
	return from, to, nil
}

func parseFunctionality(s string) (protocol.Functionality, error) {
	f, ok := protocol.FunctionalityByName(s)
	if !ok || !f.IsValid() {
		return 0, fmt.Errorf("unknown functionality %q", s)
	}
	return f, nil
}
