// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"encoding/hex"
	"os"

	"github.com/spf13/cobra"
	"gitlab.com/hashledger/querynode/internal/state"
	"gitlab.com/hashledger/querynode/pkg/protocol"
)

var cmdGenesis = &cobra.Command{
	Use:   "genesis",
	Short: "Inspect or edit the genesis document",
}

var cmdGenesisShow = &cobra.Command{
	Use:   "show",
	Short: "Print the genesis document",
	Args:  cobra.NoArgs,
	Run:   showGenesis,
}

var cmdGenesisAddAccount = &cobra.Command{
	Use:   "add-account <id> <balance>",
	Short: "Add an account to the genesis document",
	Args:  cobra.ExactArgs(2),
	Run:   addGenesisAccount,
}

var flagGenesis struct {
	Ed25519   string
	Secp256k1 string
	Memo      string
}

func init() {
	cmdMain.AddCommand(cmdGenesis)
	cmdGenesis.AddCommand(cmdGenesisShow, cmdGenesisAddAccount)

	cmdGenesisAddAccount.Flags().StringVar(&flagGenesis.Ed25519, "ed25519", "", "Hex encoded ed25519 public key")
	cmdGenesisAddAccount.Flags().StringVar(&flagGenesis.Secp256k1, "secp256k1", "", "Hex encoded compressed secp256k1 public key")
	cmdGenesisAddAccount.Flags().StringVar(&flagGenesis.Memo, "memo", "", "Account memo")
	cmdGenesisAddAccount.MarkFlagsMutuallyExclusive("ed25519", "secp256k1")
}

func showGenesis(*cobra.Command, []string) {
	g, err := readGenesis()
	checkf(err, "read genesis")
	check(state.WriteGenesis(os.Stdout, g))
}

func addGenesisAccount(_ *cobra.Command, args []string) {
	g, err := readGenesis()
	checkf(err, "read genesis")

	id, err := protocol.ParseEntityID(args[0])
	checkf(err, "account")
	balance := parseAmount(args[1])

	for _, key := range []string{flagGenesis.Ed25519, flagGenesis.Secp256k1} {
		if key == "" {
			continue
		}
		_, err := hex.DecodeString(key)
		checkf(err, "invalid key")
	}

	for _, a := range g.Accounts {
		other, err := protocol.ParseEntityID(a.ID)
		if err == nil && other == id {
			fatalf("%v is already in the genesis document", id)
		}
	}

	g.Accounts = append(g.Accounts, state.GenesisAccount{
		ID:        id.String(),
		Balance:   balance,
		Memo:      flagGenesis.Memo,
		Ed25519:   flagGenesis.Ed25519,
		Secp256k1: flagGenesis.Secp256k1,
	})
	check(writeGenesis(g))
}
