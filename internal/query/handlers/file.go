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

func loadFile(v *state.View, id protocol.FileID) (*protocol.File, error) {
	f, err := load(v.File, id, errors.InvalidFileID, "file")
	if err != nil {
		return nil, err
	}
	if f.Deleted {
		return nil, errors.FileDeleted.WithFormat("file %v has been deleted", id)
	}
	return f, nil
}

type fileGetContents struct{ paid }

func (fileGetContents) ComputeFees(ctx query.Context) (fees.Fees, error) {
	var u fees.Usage
	if f, err := ctx.View().File(bodyOf[*protocol.FileQuery](ctx).FileID); err == nil {
		u.Bytes = uint64(len(f.Contents))
	}
	return price(ctx, u), nil
}

func (fileGetContents) Validate(ctx query.Context) error {
	_, err := loadFile(ctx.View(), bodyOf[*protocol.FileQuery](ctx).FileID)
	return err
}

func (h fileGetContents) FindResponse(ctx query.Context, header protocol.ResponseHeader) (*protocol.Response, error) {
	f, err := loadFile(ctx.View(), bodyOf[*protocol.FileQuery](ctx).FileID)
	if err != nil {
		return nil, err
	}
	return respond(h.kind, header, &protocol.FileContents{FileID: f.ID, Contents: f.Contents})
}

type fileGetInfo struct{ paid }

func (fileGetInfo) ComputeFees(ctx query.Context) (fees.Fees, error) {
	var u fees.Usage
	if f, err := ctx.View().File(bodyOf[*protocol.FileQuery](ctx).FileID); err == nil {
		u.Bytes = uint64(len(f.Memo))
	}
	return price(ctx, u), nil
}

// Validate does not reject deleted files; their info is still available.
func (fileGetInfo) Validate(ctx query.Context) error {
	_, err := load(ctx.View().File, bodyOf[*protocol.FileQuery](ctx).FileID, errors.InvalidFileID, "file")
	return err
}

func (h fileGetInfo) FindResponse(ctx query.Context, header protocol.ResponseHeader) (*protocol.Response, error) {
	f, err := load(ctx.View().File, bodyOf[*protocol.FileQuery](ctx).FileID, errors.InvalidFileID, "file")
	if err != nil {
		return nil, err
	}
	info := *f
	info.Contents = nil
	return respond(h.kind, header, &info)
}
