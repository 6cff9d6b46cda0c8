// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package handlers

import (
	"gitlab.com/hashledger/querynode/internal/fees"
	"gitlab.com/hashledger/querynode/internal/query"
	"gitlab.com/hashledger/querynode/internal/state"
	"gitlab.com/hashledger/querynode/pkg/errors"
	"gitlab.com/hashledger/querynode/pkg/protocol"
)

// maxNftRange is the most NFTs a single query may return.
const maxNftRange = 100

type tokenGetInfo struct{ paid }

func (tokenGetInfo) ComputeFees(ctx query.Context) (fees.Fees, error) {
	return price(ctx, fees.Usage{}), nil
}

func (tokenGetInfo) Validate(ctx query.Context) error {
	_, err := loadToken(ctx.View(), bodyOf[*protocol.TokenQuery](ctx).TokenID)
	return err
}

func (h tokenGetInfo) FindResponse(ctx query.Context, header protocol.ResponseHeader) (*protocol.Response, error) {
	t, err := loadToken(ctx.View(), bodyOf[*protocol.TokenQuery](ctx).TokenID)
	if err != nil {
		return nil, err
	}
	return respond(h.kind, header, t)
}

type tokenGetNftInfo struct{ paid }

func (tokenGetNftInfo) ComputeFees(ctx query.Context) (fees.Fees, error) {
	var u fees.Usage
	if n, err := ctx.View().Nft(bodyOf[*protocol.NftQuery](ctx).NftID); err == nil {
		u.Bytes = uint64(len(n.Metadata))
	}
	return price(ctx, u), nil
}

func (tokenGetNftInfo) Validate(ctx query.Context) error {
	_, err := loadNft(ctx)
	return err
}

func (h tokenGetNftInfo) FindResponse(ctx query.Context, header protocol.ResponseHeader) (*protocol.Response, error) {
	n, err := loadNft(ctx)
	if err != nil {
		return nil, err
	}
	return respond(h.kind, header, n)
}

func loadNft(ctx query.Context) (*protocol.Nft, error) {
	id := bodyOf[*protocol.NftQuery](ctx).NftID
	if !id.IsValid() {
		return nil, errors.InvalidNftID.WithFormat("invalid NFT %v", id)
	}
	_, err := loadToken(ctx.View(), id.TokenID)
	if err != nil {
		return nil, err
	}
	n, err := ctx.View().Nft(id)
	if err != nil {
		if errors.Is(err, state.ErrNotFound) {
			return nil, errors.InvalidNftID.WithFormat("NFT %v does not exist", id)
		}
		return nil, err
	}
	return n, nil
}

// checkRange validates the range of an NFT range query.
func checkRange(q *protocol.NftRangeQuery) error {
	if q.Start < 0 || q.End <= q.Start {
		return errors.InvalidNftID.WithFormat("invalid range [%d, %d)", q.Start, q.End)
	}
	if q.End-q.Start > maxNftRange {
		return errors.InvalidNftID.WithFormat("range [%d, %d) exceeds %d NFTs", q.Start, q.End, maxNftRange)
	}
	return nil
}

func rangeFees(ctx query.Context) (fees.Fees, error) {
	q := bodyOf[*protocol.NftRangeQuery](ctx)
	var n uint64
	if q.End > q.Start {
		n = uint64(q.End - q.Start)
	}
	return price(ctx, fees.Usage{Results: n}), nil
}

// tokenGetNftInfos returns a range of the NFTs of a token, by serial.
type tokenGetNftInfos struct{ paid }

func (tokenGetNftInfos) ComputeFees(ctx query.Context) (fees.Fees, error) {
	return rangeFees(ctx)
}

func (tokenGetNftInfos) Validate(ctx query.Context) error {
	q := bodyOf[*protocol.NftRangeQuery](ctx)
	_, err := loadToken(ctx.View(), q.ID)
	if err != nil {
		return err
	}
	return checkRange(q)
}

func (h tokenGetNftInfos) FindResponse(ctx query.Context, header protocol.ResponseHeader) (*protocol.Response, error) {
	q := bodyOf[*protocol.NftRangeQuery](ctx)
	nfts, err := ctx.View().NftsOfToken(q.ID, q.Start, q.End)
	if err != nil {
		return nil, err
	}
	return respond(h.kind, header, &protocol.Nfts{Nfts: nfts})
}

// tokenGetAccountNftInfos returns a range of the NFTs owned by an account.
type tokenGetAccountNftInfos struct{ paid }

func (tokenGetAccountNftInfos) ComputeFees(ctx query.Context) (fees.Fees, error) {
	return rangeFees(ctx)
}

func (tokenGetAccountNftInfos) Validate(ctx query.Context) error {
	q := bodyOf[*protocol.NftRangeQuery](ctx)
	_, err := loadAccount(ctx.View(), q.ID)
	if err != nil {
		return err
	}
	return checkRange(q)
}

func (h tokenGetAccountNftInfos) FindResponse(ctx query.Context, header protocol.ResponseHeader) (*protocol.Response, error) {
	q := bodyOf[*protocol.NftRangeQuery](ctx)
	nfts, err := ctx.View().NftsOwnedBy(q.ID, q.Start, q.End)
	if err != nil {
		return nil, err
	}
	return respond(h.kind, header, &protocol.Nfts{Nfts: nfts})
}
