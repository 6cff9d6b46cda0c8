// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package client sends queries to a query node over HTTP.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"gitlab.com/hashledger/querynode/pkg/errors"
	"gitlab.com/hashledger/querynode/pkg/protocol"
	"gitlab.com/hashledger/querynode/pkg/types/encoding"
)

// ContentType is the media type of queries and responses.
const ContentType = "application/cbor"

const maxResponseBytes = 16 << 20

type Client struct {
	server string
	http   *http.Client
}

// New returns a client for the node at the given address. An address with
// no scheme is assumed to be http.
func New(server string) *Client {
	if !strings.Contains(server, "://") {
		server = "http://" + server
	}
	return &Client{server: strings.TrimSuffix(server, "/"), http: http.DefaultClient}
}

// WithHTTPClient returns a copy of the client that uses the given HTTP
// client.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	d := *c
	d.http = h
	return &d
}

// Query sends a query and returns the node's response. A response with a
// non-OK precheck code is not an error.
func (c *Client) Query(ctx context.Context, query *protocol.Query) (*protocol.Response, error) {
	data, err := encoding.Marshal(query)
	if err != nil {
		return nil, errors.BadEncoding.WithFormat("encode query: %w", err)
	}

	b, err := c.Send(ctx, data)
	if err != nil {
		return nil, err
	}

	res := new(protocol.Response)
	err = encoding.Unmarshal(b, res)
	if err != nil {
		return nil, errors.BadEncoding.WithFormat("decode response: %w", err)
	}
	return res, nil
}

// Send posts raw query bytes and returns the raw response bytes.
func (c *Client) Send(ctx context.Context, data []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.server+"/query", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", ContentType)

	httpRes, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpRes.Body.Close()

	b, err := io.ReadAll(io.LimitReader(httpRes.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if httpRes.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %s", httpRes.Status, bytes.TrimSpace(b))
	}
	return b, nil
}

// Answer sends a query and returns its answer. An answer with a non-OK
// precheck code is returned as an error with that code; the error carries
// the cost reported by the node, if any.
func (c *Client) Answer(ctx context.Context, query *protocol.Query) (*protocol.Answer, error) {
	res, err := c.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	_, answer, err := res.Answer()
	if err != nil {
		return nil, err
	}
	if code := answer.Header.PrecheckCode; !code.IsOK() {
		return answer, errors.InsufficientBalance(code, answer.Header.Cost, "query failed with %v", code)
	}
	return answer, nil
}

// Balance returns the balance of an account. Balance queries are free.
func (c *Client) Balance(ctx context.Context, id protocol.AccountID) (*protocol.AccountBalance, error) {
	q := &protocol.Query{CryptoGetAccountBalance: &protocol.BalanceQuery{AccountID: id}}
	answer, err := c.Answer(ctx, q)
	if err != nil {
		return nil, err
	}
	v := new(protocol.AccountBalance)
	return v, answer.UnmarshalPayload(v)
}

// Receipt returns the receipt of a transaction. Receipt queries are free.
func (c *Client) Receipt(ctx context.Context, id protocol.TransactionID) (*protocol.TransactionReceipt, error) {
	q := &protocol.Query{TransactionGetReceipt: &protocol.TransactionQuery{TransactionID: id}}
	answer, err := c.Answer(ctx, q)
	if err != nil {
		return nil, err
	}
	v := new(protocol.TransactionReceipt)
	return v, answer.UnmarshalPayload(v)
}

// Cost returns the cost of answering the query. The query's response type
// is replaced with COST_ANSWER and its payment is dropped.
func (c *Client) Cost(ctx context.Context, query *protocol.Query) (uint64, error) {
	kind, err := query.Kind()
	if err != nil {
		return 0, err
	}
	header := query.Body(kind).GetHeader()
	saved := *header
	header.ResponseType, header.Payment = protocol.CostAnswer, nil
	defer func() { *header = saved }()

	answer, err := c.Answer(ctx, query)
	if err != nil {
		return 0, err
	}
	return answer.Header.Cost, nil
}
