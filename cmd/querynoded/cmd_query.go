// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package main

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gitlab.com/hashledger/querynode/config"
	"gitlab.com/hashledger/querynode/pkg/client"
	"gitlab.com/hashledger/querynode/pkg/protocol"
)

var cmdQuery = &cobra.Command{
	Use:   "query",
	Short: "Query a running node",
}

var cmdQueryBalance = &cobra.Command{
	Use:   "balance <account>",
	Short: "Get the balance of an account",
	Args:  cobra.ExactArgs(1),
	Run:   queryBalance,
}

var cmdQueryReceipt = &cobra.Command{
	Use:   "receipt <transaction id>",
	Short: "Get the receipt of a transaction",
	Args:  cobra.ExactArgs(1),
	Run:   queryReceipt,
}

var cmdQueryAccount = &cobra.Command{
	Use:   "account <account>",
	Short: "Get the details of an account, paying for the query",
	Args:  cobra.ExactArgs(1),
	Run:   queryAccount,
}

var cmdQueryCost = &cobra.Command{
	Use:   "cost <account>",
	Short: "Get the cost of an account info query",
	Args:  cobra.ExactArgs(1),
	Run:   queryCost,
}

var flagQuery struct {
	Server      string
	Timeout     time.Duration
	NodeAccount string
	Payer       string
	Key         string
	MaxFee      string
}

func init() {
	cmdMain.AddCommand(cmdQuery)
	cmdQuery.AddCommand(cmdQueryBalance, cmdQueryReceipt, cmdQueryAccount, cmdQueryCost)

	def := config.Default()
	cmdQuery.PersistentFlags().StringVarP(&flagQuery.Server, "server", "s", def.Node.ListenAddress, "Address of the node")
	cmdQuery.PersistentFlags().DurationVar(&flagQuery.Timeout, "timeout", 10*time.Second, "Request timeout")
	cmdQuery.PersistentFlags().StringVar(&flagQuery.NodeAccount, "node-account", def.Node.AccountID, "Account of the node, which receives payments")
	cmdQueryAccount.Flags().StringVar(&flagQuery.Payer, "payer", "", "Account that pays for the query")
	cmdQueryAccount.Flags().StringVar(&flagQuery.Key, "key", "", "Hex encoded ed25519 seed or private key of the payer")
	cmdQueryAccount.Flags().StringVar(&flagQuery.MaxFee, "max-fee", "100000000", "Maximum fee for the payment transfer, in tinybars")
	_ = cmdQueryAccount.MarkFlagRequired("payer")
	_ = cmdQueryAccount.MarkFlagRequired("key")
}

func queryContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), flagQuery.Timeout)
}

func queryBalance(_ *cobra.Command, args []string) {
	id, err := protocol.ParseEntityID(args[0])
	check(err)

	ctx, cancel := queryContext()
	defer cancel()
	bal, err := client.New(flagQuery.Server).Balance(ctx, id)
	check(err)
	fmt.Printf("%v\t%s\n", bal.AccountID, formatAmount(bal.Balance))
}

func queryReceipt(_ *cobra.Command, args []string) {
	id, err := protocol.ParseTransactionID(args[0])
	check(err)

	ctx, cancel := queryContext()
	defer cancel()
	receipt, err := client.New(flagQuery.Server).Receipt(ctx, id)
	check(err)
	printJSON(receipt)
}

func accountInfoQuery(arg string) *protocol.Query {
	id, err := protocol.ParseEntityID(arg)
	check(err)
	return &protocol.Query{CryptoGetInfo: &protocol.AccountQuery{AccountID: id}}
}

func queryCost(_ *cobra.Command, args []string) {
	q := accountInfoQuery(args[0])

	ctx, cancel := queryContext()
	defer cancel()
	cost, err := client.New(flagQuery.Server).Cost(ctx, q)
	check(err)
	fmt.Println(formatAmount(cost))
}

func queryAccount(_ *cobra.Command, args []string) {
	q := accountInfoQuery(args[0])
	payer, err := protocol.ParseEntityID(flagQuery.Payer)
	checkf(err, "payer")
	node, err := protocol.ParseEntityID(flagQuery.NodeAccount)
	checkf(err, "node account")
	key := parseKey(flagQuery.Key)

	ctx, cancel := queryContext()
	defer cancel()
	c := client.New(flagQuery.Server)
	cost, err := c.Cost(ctx, q)
	checkf(err, "get cost")

	pay := &client.Payment{Payer: payer, Node: node, Amount: cost, MaxFee: parseAmount(flagQuery.MaxFee)}
	q.CryptoGetInfo.Header.Payment, err = pay.Build(client.Ed25519Signer(key))
	check(err)

	answer, err := c.Answer(ctx, q)
	check(err)
	account := new(protocol.Account)
	check(answer.UnmarshalPayload(account))
	printJSON(account)
	fmt.Printf("Paid %s\n", formatAmount(cost))
}

func parseKey(s string) ed25519.PrivateKey {
	b, err := hex.DecodeString(s)
	checkf(err, "invalid key")
	switch len(b) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(b)
	case ed25519.PrivateKeySize:
		return b
	}
	fatalf("invalid key: want %d or %d bytes, got %d", ed25519.SeedSize, ed25519.PrivateKeySize, len(b))
	panic("unreachable")
}
