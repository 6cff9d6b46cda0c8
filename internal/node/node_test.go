// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package node

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gitlab.com/hashledger/querynode/config"
	"gitlab.com/hashledger/querynode/internal/logging"
	"gitlab.com/hashledger/querynode/internal/state"
	"gitlab.com/hashledger/querynode/pkg/client"
	"gitlab.com/hashledger/querynode/pkg/errors"
	"gitlab.com/hashledger/querynode/pkg/protocol"
	"go.uber.org/goleak"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Storage.Type = config.MemoryStorage
	cfg.Node.ListenAddress = "127.0.0.1:0"
	cfg.Instrumentation.PrometheusListen = "127.0.0.1:0"
	cfg.Query.ChargeQueries = false
	return cfg
}

// verifyNoLeaks checks for leaked goroutines once every other cleanup has
// run. The submission cache's expiry loop cannot be stopped and lives as long
// as the process.
func verifyNoLeaks(t *testing.T) {
	opts := []goleak.Option{
		goleak.IgnoreCurrent(),
		goleak.IgnoreAnyFunction("github.com/hashicorp/golang-lru/v2/expirable.NewLRU[...].func1"),
	}
	t.Cleanup(func() { goleak.VerifyNone(t, opts...) })
}

func startNode(t *testing.T, cfg *config.Config) (*Node, *client.Client, client.Signer) {
	t.Helper()
	n, err := New(context.Background(), cfg, Options{Logger: logging.TestLogger(t)})
	require.NoError(t, err)

	seed := sha256.Sum256([]byte("payer"))
	signer := client.Ed25519Signer(ed25519.NewKeyFromSeed(seed[:]))
	genesis := &state.Genesis{Accounts: []state.GenesisAccount{
		{ID: "0.0.3"},
		{ID: "0.0.1001", Balance: 1e12, Ed25519: hex.EncodeToString(signer.PublicKey().Ed25519)},
	}}
	require.NoError(t, genesis.Apply(n.Store(), time.Now()))
	require.NoError(t, n.Start())

	transport := &http.Transport{}
	t.Cleanup(transport.CloseIdleConnections)
	c := client.New(n.QueryAddr().String()).WithHTTPClient(&http.Client{Transport: transport})
	return n, c, signer
}

func TestNodeServesQueries(t *testing.T) {
	verifyNoLeaks(t)

	n, c, signer := startNode(t, testConfig())
	ctx := context.Background()
	payer := protocol.AccountNum(1001)

	balance, err := c.Balance(ctx, payer)
	require.NoError(t, err)
	require.Equal(t, uint64(1e12), balance.Balance)

	q := &protocol.Query{CryptoGetInfo: &protocol.AccountQuery{AccountID: payer}}
	cost, err := c.Cost(ctx, q)
	require.NoError(t, err)
	require.NotZero(t, cost)

	// Unpaid
	_, err = c.Answer(ctx, q)
	require.Equal(t, errors.InsufficientTxFee, errors.Code(err))

	// Paid
	body := (&client.Payment{Payer: payer, Node: protocol.AccountNum(3), Amount: cost, MaxFee: 1e9}).Body()
	payment, err := client.Sign(body, signer)
	require.NoError(t, err)
	q.CryptoGetInfo.Header.Payment = payment
	answer, err := c.Answer(ctx, q)
	require.NoError(t, err)
	var account protocol.Account
	require.NoError(t, answer.UnmarshalPayload(&account))
	require.Equal(t, payer, account.ID)

	// The payment was submitted and has not reached consensus
	receipt, err := c.Receipt(ctx, body.TransactionID)
	require.NoError(t, err)
	require.Equal(t, errors.Unknown, receipt.Status)

	// Replaying the payment fails
	_, err = c.Answer(ctx, q)
	require.Equal(t, errors.DuplicateTransaction, errors.Code(err))

	require.NoError(t, n.Stop())
}

func TestNodeRejectsBadRequests(t *testing.T) {
	verifyNoLeaks(t)

	cfg := testConfig()
	cfg.Query.MaxRequestBytes = 64
	n, c, _ := startNode(t, cfg)
	ctx := context.Background()

	_, err := c.Send(ctx, []byte{0xff})
	require.ErrorContains(t, err, "400")

	_, err = c.Send(ctx, bytes.Repeat([]byte{0x01}, 65))
	require.ErrorContains(t, err, "413")

	require.NoError(t, n.Stop())
}

func TestNodeExportsMetrics(t *testing.T) {
	verifyNoLeaks(t)

	n, c, _ := startNode(t, testConfig())
	_, err := c.Balance(context.Background(), protocol.AccountNum(1001))
	require.NoError(t, err)

	transport := &http.Transport{}
	t.Cleanup(transport.CloseIdleConnections)
	resp, err := (&http.Client{Transport: transport}).Get("http://" + n.MetricsAddr().String() + "/metrics")
	require.NoError(t, err)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(b), `querynode_query_received_total{functionality="CryptoGetAccountBalance"} 1`)
	require.Contains(t, string(b), "querynode_throttle_utilization")

	require.NoError(t, n.Stop())
}

func TestInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Query.MissingPaymentCode = "OK"
	_, err := New(context.Background(), cfg, Options{Logger: logging.TestLogger(t)})
	require.Error(t, err)
}
