// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package query

import (
	"math"

	"gitlab.com/hashledger/querynode/config"
	"gitlab.com/hashledger/querynode/internal/fees"
	"gitlab.com/hashledger/querynode/internal/ingest"
	"gitlab.com/hashledger/querynode/internal/state"
	"gitlab.com/hashledger/querynode/pkg/errors"
	"gitlab.com/hashledger/querynode/pkg/protocol"
)

// Checker checks that the payment of a query is a well formed transfer that
// covers the cost of the query.
type Checker struct {
	auth         Authorizer
	calc         *fees.Calculator
	maxTransfers int
}

func NewChecker(cfg *config.Config, auth Authorizer, calc *fees.Calculator) *Checker {
	return &Checker{auth: auth, calc: calc, maxTransfers: cfg.Ingest.MaxTransfers}
}

// ValidateCryptoTransfer checks that the payment is a crypto transfer and
// that the transfer is valid on its own.
func (c *Checker) ValidateCryptoTransfer(info *ingest.TransactionInfo) error {
	if info.Functionality != protocol.FunctionalityCryptoTransfer {
		return errors.InsufficientTxFee.WithFormat("payment must be a crypto transfer, got %v", info.Functionality)
	}

	transfers := info.Body.CryptoTransfer.Transfers
	if len(transfers) == 0 {
		return errors.InvalidAccountAmounts.With("transfer list is empty")
	}
	if c.maxTransfers > 0 && len(transfers) > c.maxTransfers {
		return errors.TransferListSizeLimitExceeded.WithFormat("transfer list has %d entries, the limit is %d", len(transfers), c.maxTransfers)
	}

	var net int64
	seen := make(map[protocol.AccountID]bool, len(transfers))
	for _, t := range transfers {
		if !t.AccountID.IsValid() {
			return errors.InvalidAccountID.WithFormat("invalid account %v", t.AccountID)
		}
		if seen[t.AccountID] {
			return errors.AccountRepeatedInAccountAmounts.WithFormat("account %v is repeated", t.AccountID)
		}
		seen[t.AccountID] = true
		if t.Amount == math.MinInt64 ||
			t.Amount > 0 && net > math.MaxInt64-t.Amount ||
			t.Amount < 0 && net < math.MinInt64-t.Amount {
			return errors.InvalidAccountAmounts.WithFormat("transfer of %d to %v overflows the net amount", t.Amount, t.AccountID)
		}
		net += t.Amount
	}
	if net != 0 {
		return errors.InvalidAccountAmounts.WithFormat("transfers do not net to zero (%d)", net)
	}
	return nil
}

// CheckPermissions checks that the payer may use the functionality.
func (c *Checker) CheckPermissions(payer protocol.AccountID, fn protocol.Functionality) error {
	if !c.auth.IsAuthorized(payer, fn) {
		return errors.NotSupported.WithFormat("%v is not authorized to use %v", payer, fn)
	}
	return nil
}

// EstimateTxFees returns the fee of the payment transaction itself.
func (c *Checker) EstimateTxFees(info *ingest.TransactionInfo) uint64 {
	sigs := uint64(info.PayerKey.CountSimpleKeys())
	if n := uint64(len(info.SignatureMap().SigPairs)); n > sigs {
		sigs = n
	}
	usage := fees.Usage{
		Bytes:      uint64(len(info.SignedBytes())),
		Signatures: sigs,
		Transfers:  uint64(len(info.Body.CryptoTransfer.Transfers)),
	}
	return c.calc.Compute(protocol.FunctionalityCryptoTransfer, usage).TotalFee()
}

// ValidateAccountBalances checks that the payer can afford the query and
// the transfer, that the transfer pays the node at least the query cost,
// and that every other debited account can cover its debit. Failures carry
// the total fee that would have been required.
func (c *Checker) ValidateAccountBalances(view *state.View, info *ingest.TransactionInfo, payer *protocol.Account, queryCost, txFee uint64) error {
	total := queryCost + txFee
	if info.Body.TransactionFee < txFee {
		return errors.InsufficientBalance(errors.InsufficientTxFee, total,
			"transaction fee %d is less than the required %d", info.Body.TransactionFee, txFee)
	}
	if payer.Balance < total {
		return errors.InsufficientBalance(errors.InsufficientPayerBalance, total,
			"payer balance %d is less than the required %d", payer.Balance, total)
	}

	node := info.Body.NodeAccountID
	var nodeCredit int64
	for _, t := range info.Body.CryptoTransfer.Transfers {
		switch {
		case t.AccountID == node:
			nodeCredit += t.Amount

		case t.Amount >= 0:
			// Credits to other accounts do not matter

		case t.AccountID == payer.ID:
			if payer.Balance < txFee || payer.Balance-txFee < uint64(-t.Amount) {
				return errors.InsufficientBalance(errors.InsufficientPayerBalance, total,
					"payer balance %d cannot cover the transfer of %d and the fee of %d", payer.Balance, -t.Amount, txFee)
			}

		default:
			account, err := view.Account(t.AccountID)
			switch {
			case err == nil:
			case errors.Is(err, state.ErrNotFound):
				return errors.AccountIDDoesNotExist.WithFormat("account %v does not exist", t.AccountID)
			default:
				return errors.Unknown.WithFormat("load %v: %w", t.AccountID, err)
			}
			if account.Balance < uint64(-t.Amount) {
				return errors.InsufficientBalance(errors.InsufficientAccountBalance, total,
					"account %v balance %d cannot cover the transfer of %d", t.AccountID, account.Balance, -t.Amount)
			}
		}
	}

	if nodeCredit < 0 || uint64(nodeCredit) < queryCost {
		return errors.InsufficientBalance(errors.InsufficientTxFee, total,
			"node payment %d is less than the query cost %d", nodeCredit, queryCost)
	}
	return nil
}
