// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package client

import (
	"time"

	"gitlab.com/hashledger/querynode/pkg/protocol"
	"gitlab.com/hashledger/querynode/pkg/types/encoding"
)

// Payment describes a crypto transfer from the payer to the node that pays
// for a query.
type Payment struct {
	Payer  protocol.AccountID
	Node   protocol.AccountID
	Amount uint64

	// MaxFee is the most the payer will pay for the transfer itself.
	MaxFee        uint64
	ValidStart    time.Time
	ValidDuration time.Duration
	Memo          string
}

// Body returns the transaction body of the payment.
func (p *Payment) Body() *protocol.TransactionBody {
	start := p.ValidStart
	if start.IsZero() {
		start = time.Now().Add(-time.Second)
	}
	duration := p.ValidDuration
	if duration == 0 {
		duration = 120 * time.Second
	}

	return &protocol.TransactionBody{
		TransactionID: protocol.TransactionID{
			AccountID:  p.Payer,
			ValidStart: protocol.TimestampOf(start),
		},
		NodeAccountID:  p.Node,
		TransactionFee: p.MaxFee,
		ValidDuration:  int64(duration / time.Second),
		Memo:           p.Memo,
		CryptoTransfer: &protocol.CryptoTransferBody{
			Transfers: []protocol.AccountAmount{
				{AccountID: p.Payer, Amount: -int64(p.Amount)},
				{AccountID: p.Node, Amount: int64(p.Amount)},
			},
		},
	}
}

// Build encodes and signs the payment.
func (p *Payment) Build(signers ...Signer) (*protocol.Transaction, error) {
	return Sign(p.Body(), signers...)
}

// Sign encodes the body and signs it with every signer.
func Sign(body *protocol.TransactionBody, signers ...Signer) (*protocol.Transaction, error) {
	b, err := encoding.Marshal(body)
	if err != nil {
		return nil, err
	}

	var sigs protocol.SignatureMap
	for _, s := range signers {
		sigs.SigPairs = append(sigs.SigPairs, s.Sign(b))
	}
	return protocol.NewTransaction(b, sigs)
}
