// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package submission hands payment transactions to consensus.
package submission

import (
	"context"
	"log/slog"
	"time"

	core "github.com/cometbft/cometbft/rpc/core/types"
	tm "github.com/cometbft/cometbft/types"
	"gitlab.com/hashledger/querynode/internal/ingest"
	"gitlab.com/hashledger/querynode/internal/state"
	"gitlab.com/hashledger/querynode/pkg/errors"
)

// Broadcaster is the subset of the CometBFT RPC client used to submit
// transactions.
type Broadcaster interface {
	BroadcastTxAsync(context.Context, tm.Tx) (*core.ResultBroadcastTx, error)
}

// Submitter submits each transaction at most once.
type Submitter struct {
	broadcast Broadcaster
	store     *state.Store
	seen      *cache
	logger    *slog.Logger
	now       func() time.Time
}

type Options struct {
	// Broadcaster sends transactions to consensus. If it is nil the
	// transaction is only recorded as pending.
	Broadcaster Broadcaster

	// Store records submitted transactions as pending so later payments
	// with the same ID fail ingest.
	Store *state.Store

	// MaxValidDuration is the longest a payment can remain valid. Submitted
	// IDs are forgotten after this long. Defaults to five minutes.
	MaxValidDuration time.Duration

	// CacheSize caps the number of remembered IDs.
	CacheSize int

	Logger *slog.Logger
	Now    func() time.Time
}

func New(opts Options) *Submitter {
	ttl := opts.MaxValidDuration
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	s := &Submitter{
		broadcast: opts.Broadcaster,
		store:     opts.Store,
		seen:      newCache(opts.CacheSize, ttl),
		logger:    opts.Logger,
		now:       opts.Now,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("module", "submission")
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Submit sends the transaction to consensus. It does not wait for the
// transaction to execute.
func (s *Submitter) Submit(ctx context.Context, info *ingest.TransactionInfo) error {
	id := info.Body.TransactionID
	expires := id.ValidStart.Time().Add(time.Duration(info.ValidDuration()) * time.Second)
	if !s.seen.add(id.String(), expires, s.now()) {
		return errors.DuplicateTransaction.WithFormat("transaction %v has already been submitted", id)
	}

	if s.broadcast != nil {
		res, err := s.broadcast.BroadcastTxAsync(ctx, info.SignedBytes())
		if err != nil {
			s.seen.remove(id.String())
			return errors.PlatformTransactionNotCreated.WithFormat("broadcast %v: %w", id, err)
		}
		if res.Code != 0 {
			s.seen.remove(id.String())
			return errors.PlatformTransactionNotCreated.WithFormat("broadcast %v: check failed with code %d: %s", id, res.Code, res.Log)
		}
		s.logger.DebugContext(ctx, "Submitted transaction", "id", id, "hash", res.Hash)
	}

	if s.store == nil {
		return nil
	}
	err := s.store.Update(func(b *state.Batch) error {
		return b.PutPending(id, info.SignedBytes())
	})
	if err != nil {
		// The transaction is already in flight
		s.logger.ErrorContext(ctx, "Failed to record pending transaction", "id", id, "error", err)
		if s.broadcast == nil {
			return errors.PlatformTransactionNotCreated.Wrap(err)
		}
	}
	return nil
}
