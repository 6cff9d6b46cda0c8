// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gitlab.com/hashledger/querynode/config"
	"gitlab.com/hashledger/querynode/internal/node"
	"gitlab.com/hashledger/querynode/internal/state"
)

var cmdRun = &cobra.Command{
	Use:   "run",
	Short: "Run node",
	Run:   runNode,
	Args:  cobra.NoArgs,
}

var flagRun struct {
	CiStopAfter time.Duration
}

func init() {
	cmdMain.AddCommand(cmdRun)

	cmdRun.Flags().DurationVar(&flagRun.CiStopAfter, "ci-stop-after", 0, "FOR CI ONLY - stop the node after some time")
	cmdRun.Flag("ci-stop-after").Hidden = true
}

func runNode(*cobra.Command, []string) {
	cfg, err := config.Load(flagMain.WorkDir)
	checkf(err, "load configuration")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	n, err := node.New(ctx, cfg, node.Options{})
	checkf(err, "create node")

	err = applyGenesis(cfg, n.Store())
	if err != nil {
		_ = n.Stop()
		fatalf("apply genesis: %v", err)
	}

	err = n.Start()
	if err != nil {
		_ = n.Stop()
		fatalf("start node: %v", err)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)

	var stopAfter <-chan time.Time
	if flagRun.CiStopAfter > 0 {
		stopAfter = time.After(flagRun.CiStopAfter)
	}

	select {
	case <-sigs:
	case <-stopAfter:
	case <-n.Done():
	}

	checkf(n.Stop(), "stop node")
}

// applyGenesis writes the genesis document to the store if the node account
// does not exist yet. A memory store is always empty at startup.
func applyGenesis(cfg *config.Config, store *state.Store) error {
	id, err := cfg.NodeAccount()
	if err != nil {
		return err
	}

	err = store.View(func(v *state.View) error {
		_, err := v.Account(id)
		return err
	})
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, state.ErrNotFound):
		return err
	}

	g, err := readGenesis()
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("No genesis document, starting with an empty state", "path", genesisFile())
		return nil
	}
	if err != nil {
		return err
	}
	return g.Apply(store, time.Now())
}
