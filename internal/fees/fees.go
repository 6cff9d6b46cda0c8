// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package fees

import "fmt"

// Fees is the price of an operation in tinybars, split by recipient.
type Fees struct {
	NodeFee    uint64
	NetworkFee uint64
	ServiceFee uint64
}

// Free costs nothing.
var Free = Fees{}

func (f Fees) TotalFee() uint64 {
	return f.NodeFee + f.NetworkFee + f.ServiceFee
}

func (f Fees) Plus(g Fees) Fees {
	return Fees{
		NodeFee:    f.NodeFee + g.NodeFee,
		NetworkFee: f.NetworkFee + g.NetworkFee,
		ServiceFee: f.ServiceFee + g.ServiceFee,
	}
}

func (f Fees) String() string {
	return fmt.Sprintf("node=%d network=%d service=%d", f.NodeFee, f.NetworkFee, f.ServiceFee)
}

// ExchangeRate converts cents to hbars: HbarEquiv hbars are worth CentEquiv
// cents.
type ExchangeRate struct {
	HbarEquiv int32
	CentEquiv int32
}

// ToTinybars converts tinycents to tinybars, rounding down.
func (r ExchangeRate) ToTinybars(tinycents uint64) uint64 {
	if r.CentEquiv <= 0 {
		return 0
	}
	return tinycents * uint64(r.HbarEquiv) / uint64(r.CentEquiv)
}
