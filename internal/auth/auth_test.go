// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/hashledger/querynode/config"
	"gitlab.com/hashledger/querynode/pkg/protocol"
)

func TestDefaults(t *testing.T) {
	a, err := New(config.Default().Accounts)
	require.NoError(t, err)

	require.True(t, a.IsSuperUser(protocol.AccountNum(2)))
	require.True(t, a.IsSuperUser(protocol.AccountNum(50)))
	require.False(t, a.IsSuperUser(protocol.AccountNum(1001)))

	require.True(t, a.IsAuthorized(protocol.AccountNum(1001), protocol.FunctionalityCryptoGetInfo))
	require.True(t, a.IsAuthorized(protocol.AccountNum(2), protocol.FunctionalityGetAccountDetails))
	require.True(t, a.IsAuthorized(protocol.AccountNum(50), protocol.FunctionalityNetworkGetExecutionTime))
	require.False(t, a.IsAuthorized(protocol.AccountNum(51), protocol.FunctionalityGetAccountDetails))
	require.False(t, a.IsAuthorized(protocol.EntityID{}, protocol.FunctionalityCryptoGetInfo))
}

func TestOpenRange(t *testing.T) {
	a, err := New(config.Accounts{Permissions: []config.Permission{{Functionality: "FileGetInfo", Accounts: "100-*"}}})
	require.NoError(t, err)
	require.False(t, a.IsAuthorized(protocol.AccountNum(99), protocol.FunctionalityFileGetInfo))
	require.True(t, a.IsAuthorized(protocol.AccountNum(1<<40), protocol.FunctionalityFileGetInfo))
}

func TestInvalidConfig(t *testing.T) {
	_, err := New(config.Accounts{SuperUsers: []string{"x"}})
	require.Error(t, err)
	_, err = New(config.Accounts{Permissions: []config.Permission{{Functionality: "Teleport", Accounts: "0-*"}}})
	require.Error(t, err)
	_, err = New(config.Accounts{Permissions: []config.Permission{{Functionality: "FileGetInfo", Accounts: "5-1"}}})
	require.Error(t, err)
}
