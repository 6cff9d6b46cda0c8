// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package fees

import (
	"gitlab.com/hashledger/querynode/config"
	"gitlab.com/hashledger/querynode/pkg/protocol"
)

// Calculator prices operations in tinybars.
type Calculator struct {
	schedule *Schedule
	rate     ExchangeRate
}

func NewCalculator(schedule *Schedule, rate ExchangeRate) *Calculator {
	return &Calculator{schedule: schedule, rate: rate}
}

// NewCalculatorFromConfig loads the configured schedule, or the built-in one.
func NewCalculatorFromConfig(cfg *config.Config) (*Calculator, error) {
	schedule := DefaultSchedule()
	if cfg.Fees.Schedule != "" {
		var err error
		schedule, err = LoadSchedule(cfg.MakeAbsolute(cfg.Fees.Schedule))
		if err != nil {
			return nil, err
		}
	}
	rate := ExchangeRate{HbarEquiv: cfg.Fees.HbarEquiv, CentEquiv: cfg.Fees.CentEquiv}
	return NewCalculator(schedule, rate), nil
}

func (c *Calculator) ExchangeRate() ExchangeRate { return c.rate }

// Compute returns the fees of a functionality with the given usage.
func (c *Calculator) Compute(fn protocol.Functionality, u Usage) Fees {
	d, ok := c.schedule.For(fn)
	if !ok {
		return Free
	}
	return Fees{
		NodeFee:    c.rate.ToTinybars(d.Node.tinycents(u)),
		NetworkFee: c.rate.ToTinybars(d.Network.tinycents(u)),
		ServiceFee: c.rate.ToTinybars(d.Service.tinycents(u)),
	}
}
