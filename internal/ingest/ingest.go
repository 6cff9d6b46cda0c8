// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package ingest

import (
	"context"
	"log/slog"
	"time"

	"gitlab.com/hashledger/querynode/config"
	"gitlab.com/hashledger/querynode/internal/state"
	"gitlab.com/hashledger/querynode/pkg/errors"
	"gitlab.com/hashledger/querynode/pkg/protocol"
	"gitlab.com/hashledger/querynode/pkg/types/encoding"
)

// Checker runs the checks a transaction must pass before the node accepts
// it.
type Checker struct {
	node   protocol.AccountID
	limits config.Ingest
	status StatusClient
	logger *slog.Logger
	now    func() time.Time
}

type Options struct {
	Config *config.Config
	Logger *slog.Logger

	// Status reports the consensus node's sync status. If it is nil the
	// node is always active.
	Status StatusClient

	// Now overrides the clock. Used by tests.
	Now func() time.Time
}

func New(opts Options) (*Checker, error) {
	node, err := opts.Config.NodeAccount()
	if err != nil {
		return nil, err
	}
	c := &Checker{
		node:   node,
		limits: opts.Config.Ingest,
		status: opts.Status,
		logger: opts.Logger,
		now:    opts.Now,
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.logger = c.logger.With("module", "ingest")
	return c, nil
}

// RunAllChecks decodes the transaction and checks it against the snapshot.
// The returned error is coded with the precheck status of the first check
// that failed.
func (c *Checker) RunAllChecks(ctx context.Context, view *state.View, tx *protocol.Transaction) (*TransactionInfo, error) {
	info, err := decode(tx)
	if err != nil {
		return nil, err
	}

	err = c.checkBody(info.Body)
	if err != nil {
		return nil, err
	}

	payer, err := view.Account(info.Payer())
	switch {
	case err == nil:
	case errors.Is(err, state.ErrNotFound):
		return nil, errors.PayerAccountNotFound.WithFormat("payer %v does not exist", info.Payer())
	default:
		return nil, errors.Unknown.WithFormat("load payer: %w", err)
	}
	if payer.Deleted {
		return nil, errors.AccountDeleted.WithFormat("payer %v has been deleted", info.Payer())
	}
	info.PayerKey = payer.Key

	err = checkDuplicate(view, info.Body.TransactionID)
	if err != nil {
		return nil, err
	}

	err = verify(payer.Key, info.Signed)
	if err != nil {
		return nil, err
	}

	c.logger.DebugContext(ctx, "Transaction passed ingest",
		"id", info.Body.TransactionID, "functionality", info.Functionality)
	return info, nil
}

func decode(tx *protocol.Transaction) (*TransactionInfo, error) {
	if tx == nil || len(tx.SignedTransactionBytes) == 0 {
		return nil, errors.InvalidTransactionBody.With("transaction is empty")
	}

	signed := new(protocol.SignedTransaction)
	err := encoding.Unmarshal(tx.SignedTransactionBytes, signed)
	if err != nil {
		return nil, errors.InvalidTransactionBody.WithFormat("decode signed transaction: %w", err)
	}

	body := new(protocol.TransactionBody)
	err = encoding.Unmarshal(signed.BodyBytes, body)
	if err != nil {
		return nil, errors.InvalidTransactionBody.WithFormat("decode body: %w", err)
	}

	fn := body.Functionality()
	if fn == protocol.FunctionalityNone {
		return nil, errors.InvalidTransactionBody.With("body must contain exactly one operation")
	}

	return &TransactionInfo{
		Transaction:   tx,
		Signed:        signed,
		Body:          body,
		Functionality: fn,
	}, nil
}

func (c *Checker) checkBody(body *protocol.TransactionBody) error {
	if !body.TransactionID.IsValid() {
		return errors.InvalidTransactionID.WithFormat("invalid transaction ID %v", body.TransactionID)
	}
	if body.NodeAccountID != c.node {
		return errors.InvalidNodeAccount.WithFormat("transaction is for node %v, this is %v", body.NodeAccountID, c.node)
	}

	// Compare seconds so a huge duration cannot wrap when converted
	seconds := body.ValidDuration
	if seconds < int64(c.limits.MinValidDuration/time.Second) || seconds > int64(c.limits.MaxValidDuration/time.Second) {
		return errors.InvalidTransactionDuration.WithFormat("valid duration %ds is outside [%v, %v]",
			seconds, c.limits.MinValidDuration, c.limits.MaxValidDuration)
	}
	duration := time.Duration(seconds) * time.Second

	now := c.now()
	start := body.TransactionID.ValidStart.Time()
	if start.After(now.Add(c.limits.ClockSkew)) {
		return errors.InvalidTransactionStart.WithFormat("transaction starts at %v which is in the future", start)
	}
	if !start.Add(duration).After(now) {
		return errors.TransactionExpired.WithFormat("transaction expired at %v", start.Add(duration))
	}

	if len(body.Memo) > c.limits.MaxMemoBytes {
		return errors.MemoTooLong.WithFormat("memo is %d bytes, the limit is %d", len(body.Memo), c.limits.MaxMemoBytes)
	}
	return nil
}

func checkDuplicate(view *state.View, id protocol.TransactionID) error {
	pending, err := view.IsPending(id)
	if err != nil {
		return errors.Unknown.WithFormat("check pending: %w", err)
	}
	if pending {
		return errors.DuplicateTransaction.WithFormat("transaction %v is pending", id)
	}

	_, err = view.Record(id)
	switch {
	case err == nil:
		return errors.DuplicateTransaction.WithFormat("transaction %v has already been executed", id)
	case errors.Is(err, state.ErrNotFound):
		return nil
	default:
		return errors.Unknown.WithFormat("load record: %w", err)
	}
}
