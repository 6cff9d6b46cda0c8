// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gitlab.com/hashledger/querynode/config"
	"gitlab.com/hashledger/querynode/internal/state"
	"gitlab.com/hashledger/querynode/pkg/protocol"
)

var cmdInit = &cobra.Command{
	Use:   "init",
	Short: "Initialize a node's configuration and genesis document",
	Run:   initNode,
	Args:  cobra.NoArgs,
}

var flagInit struct {
	Reset           bool
	NodeAccount     string
	Listen          string
	Consensus       string
	Storage         string
	LogLevels       string
	TreasuryKey     string
	TreasuryBalance uint64
}

func init() {
	cmdMain.AddCommand(cmdInit)

	def := config.Default()
	cmdInit.Flags().BoolVar(&flagInit.Reset, "reset", false, "Overwrite an existing configuration")
	cmdInit.Flags().StringVar(&flagInit.NodeAccount, "node-account", def.Node.AccountID, "Account that receives query payments")
	cmdInit.Flags().StringVarP(&flagInit.Listen, "listen", "l", def.Node.ListenAddress, "Address to serve queries on")
	cmdInit.Flags().StringVar(&flagInit.Consensus, "consensus", "", "CometBFT RPC address; if empty the node runs standalone")
	cmdInit.Flags().StringVar(&flagInit.Storage, "storage", string(def.Storage.Type), "Storage type (badger or memory)")
	cmdInit.Flags().StringVar(&flagInit.LogLevels, "log-levels", def.Logging.Level, "Log levels")
	cmdInit.Flags().StringVar(&flagInit.TreasuryKey, "treasury-key", "", "Hex encoded ed25519 public key of the treasury account 0.0.2")
	cmdInit.Flags().Uint64Var(&flagInit.TreasuryBalance, "treasury-balance", 50_000_000_000*100_000_000, "Initial balance of the treasury in tinybars")
}

func initNode(*cobra.Command, []string) {
	cfg := config.Default()
	cfg.SetRoot(flagMain.WorkDir)
	cfg.Node.AccountID = flagInit.NodeAccount
	cfg.Node.ListenAddress = flagInit.Listen
	cfg.Consensus.RPCAddress = flagInit.Consensus
	cfg.Storage.Type = config.StorageType(flagInit.Storage)
	cfg.Logging.Level = flagInit.LogLevels
	checkf(cfg.Validate(), "invalid configuration")

	if !flagInit.Reset {
		_, err := os.Stat(genesisFile())
		if err == nil {
			fatalf("%s is already initialized, use --reset to overwrite", flagMain.WorkDir)
		}
	}

	node, err := cfg.NodeAccount()
	check(err)

	treasury := state.GenesisAccount{
		ID:      protocol.AccountNum(2).String(),
		Balance: flagInit.TreasuryBalance,
		Memo:    "treasury",
	}
	if flagInit.TreasuryKey != "" {
		b, err := hex.DecodeString(flagInit.TreasuryKey)
		checkf(err, "invalid treasury key")
		if len(b) != 32 {
			fatalf("invalid treasury key: want 32 bytes, got %d", len(b))
		}
		treasury.Ed25519 = flagInit.TreasuryKey
	}

	genesis := &state.Genesis{
		Accounts: []state.GenesisAccount{
			treasury,
			{ID: node.String(), Memo: "node"},
		},
	}

	check(config.Store(cfg))
	check(writeGenesis(genesis))
	fmt.Printf("Initialized %s\n", flagMain.WorkDir)
}

func writeGenesis(g *state.Genesis) error {
	f, err := os.Create(genesisFile())
	if err != nil {
		return err
	}
	defer f.Close()
	return state.WriteGenesis(f, g)
}

func readGenesis() (*state.Genesis, error) {
	f, err := os.Open(genesisFile())
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return state.ReadGenesis(f)
}
