// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package client

import (
	"context"
	"crypto/ed25519"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/hashledger/querynode/pkg/errors"
	"gitlab.com/hashledger/querynode/pkg/protocol"
	"gitlab.com/hashledger/querynode/pkg/types/encoding"
)

// fakeNode answers every query with the result of answer and records the
// queries it receives.
type fakeNode struct {
	answer  func(*protocol.Query) *protocol.Answer
	queries []*protocol.Query
}

func (f *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != "/query" || r.Header.Get("Content-Type") != ContentType {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	b, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	q := new(protocol.Query)
	if err := encoding.Unmarshal(b, q); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.queries = append(f.queries, q)

	kind, _ := q.Kind()
	b, err = encoding.Marshal(protocol.NewResponse(kind, f.answer(q)))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_, _ = w.Write(b)
}

func newFake(t *testing.T, answer func(*protocol.Query) *protocol.Answer) (*fakeNode, *Client) {
	f := &fakeNode{answer: answer}
	s := httptest.NewServer(f)
	t.Cleanup(s.Close)
	return f, New(s.URL)
}

func payload(t *testing.T, v any) encoding.RawMessage {
	b, err := encoding.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestBalance(t *testing.T) {
	id := protocol.AccountNum(1001)
	_, c := newFake(t, func(*protocol.Query) *protocol.Answer {
		return &protocol.Answer{Payload: payload(t, &protocol.AccountBalance{AccountID: id, Balance: 42})}
	})

	bal, err := c.Balance(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, uint64(42), bal.Balance)
}

func TestAnswerFailure(t *testing.T) {
	_, c := newFake(t, func(*protocol.Query) *protocol.Answer {
		return &protocol.Answer{Header: protocol.ResponseHeader{PrecheckCode: errors.InsufficientPayerBalance, Cost: 12345}}
	})

	_, err := c.Balance(context.Background(), protocol.AccountNum(1001))
	require.Error(t, err)
	require.Equal(t, errors.InsufficientPayerBalance, errors.Code(err))
	require.Equal(t, uint64(12345), errors.Fee(err))
}

func TestCostRestoresHeader(t *testing.T) {
	f, c := newFake(t, func(*protocol.Query) *protocol.Answer {
		return &protocol.Answer{Header: protocol.ResponseHeader{ResponseType: protocol.CostAnswer, Cost: 77}}
	})

	key := ed25519.NewKeyFromSeed(make([]byte, ed25519.SeedSize))
	pay := &Payment{Payer: protocol.AccountNum(1001), Node: protocol.AccountNum(3), Amount: 1}
	tx, err := pay.Build(Ed25519Signer(key))
	require.NoError(t, err)

	q := &protocol.Query{CryptoGetInfo: &protocol.AccountQuery{
		Header:    protocol.QueryHeader{Payment: tx},
		AccountID: protocol.AccountNum(1001),
	}}
	cost, err := c.Cost(context.Background(), q)
	require.NoError(t, err)
	require.Equal(t, uint64(77), cost)

	// The node saw a cost query without a payment
	require.Len(t, f.queries, 1)
	sent := f.queries[0].CryptoGetInfo.Header
	require.Equal(t, protocol.CostAnswer, sent.ResponseType)
	require.Nil(t, sent.Payment)

	// The caller's query is unchanged
	require.Equal(t, protocol.AnswerOnly, q.CryptoGetInfo.Header.ResponseType)
	require.Same(t, tx, q.CryptoGetInfo.Header.Payment)
}

func TestHTTPError(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid argument", http.StatusBadRequest)
	}))
	defer s.Close()

	_, err := New(s.URL).Query(context.Background(), &protocol.Query{NetworkGetVersionInfo: &protocol.NetworkQuery{}})
	require.ErrorContains(t, err, "invalid argument")
}
