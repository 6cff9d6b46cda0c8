// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package ingest

import (
	"context"

	core "github.com/cometbft/cometbft/rpc/core/types"
	"gitlab.com/hashledger/querynode/pkg/errors"
)

// StatusClient is the subset of the CometBFT RPC client used to determine
// whether the node is live.
type StatusClient interface {
	Status(context.Context) (*core.ResultStatus, error)
}

// CheckNodeState returns PlatformNotActive unless the consensus node is
// reachable and caught up.
func (c *Checker) CheckNodeState(ctx context.Context) error {
	if c.status == nil {
		return nil
	}

	status, err := c.status.Status(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "Consensus node status unavailable", "error", err)
		return errors.PlatformNotActive.WithFormat("query consensus status: %w", err)
	}
	if status.SyncInfo.CatchingUp {
		return errors.PlatformNotActive.WithFormat("consensus is catching up (height %d)", status.SyncInfo.LatestBlockHeight)
	}
	return nil
}
