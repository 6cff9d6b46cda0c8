// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package fees

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/hashledger/querynode/pkg/protocol"
)

func TestTotalFee(t *testing.T) {
	f := Fees{NodeFee: 100, NetworkFee: 0, ServiceFee: 100}
	require.Equal(t, uint64(200), f.TotalFee())
	require.Equal(t, uint64(400), f.Plus(f).TotalFee())
	require.Zero(t, Free.TotalFee())
}

func TestExchangeRate(t *testing.T) {
	r := ExchangeRate{HbarEquiv: 1, CentEquiv: 12}
	require.Equal(t, uint64(100), r.ToTinybars(1200))
	require.Equal(t, uint64(0), r.ToTinybars(11))
	require.Zero(t, ExchangeRate{}.ToTinybars(1000))
}

func TestDefaultScheduleCoversPaidQueries(t *testing.T) {
	s := DefaultSchedule()
	for _, kind := range protocol.QueryKinds() {
		fn := kind.Functionality()
		_, ok := s.For(fn)
		switch fn {
		case protocol.FunctionalityCryptoGetAccountBalance,
			protocol.FunctionalityTransactionGetReceipt:
			require.False(t, ok, "%v should be free", fn)
		default:
			require.True(t, ok, "%v is not priced", fn)
		}
	}
	_, ok := s.For(protocol.FunctionalityCryptoTransfer)
	require.True(t, ok)
}

func TestCompute(t *testing.T) {
	s, err := ReadSchedule(strings.NewReader(`
functionalities:
  CryptoTransfer:
    node: {base: 1200, per-byte: 12}
    network: {base: 0}
    service: {base: 120, per-transfer: 12, per-signature: 24}
`))
	require.NoError(t, err)

	c := NewCalculator(s, ExchangeRate{HbarEquiv: 1, CentEquiv: 12})
	f := c.Compute(protocol.FunctionalityCryptoTransfer, Usage{Bytes: 10, Signatures: 1, Transfers: 2})
	require.Equal(t, Fees{NodeFee: 110, NetworkFee: 0, ServiceFee: 14}, f)
	require.Equal(t, Free, c.Compute(protocol.FunctionalityFileGetInfo, Usage{}))

	_, err = ReadSchedule(strings.NewReader("functionalities:\n  Teleport: {}\n"))
	require.Error(t, err)
}
