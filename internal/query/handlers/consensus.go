// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package handlers

import (
	"gitlab.com/hashledger/querynode/internal/fees"
	"gitlab.com/hashledger/querynode/internal/query"
	"gitlab.com/hashledger/querynode/pkg/errors"
	"gitlab.com/hashledger/querynode/pkg/protocol"
)

type consensusGetTopicInfo struct{ paid }

func (consensusGetTopicInfo) ComputeFees(ctx query.Context) (fees.Fees, error) {
	var u fees.Usage
	if t, err := ctx.View().Topic(bodyOf[*protocol.TopicQuery](ctx).TopicID); err == nil {
		u.Bytes = uint64(len(t.Memo))
	}
	return price(ctx, u), nil
}

func (consensusGetTopicInfo) Validate(ctx query.Context) error {
	_, err := loadTopic(ctx)
	return err
}

func (h consensusGetTopicInfo) FindResponse(ctx query.Context, header protocol.ResponseHeader) (*protocol.Response, error) {
	t, err := loadTopic(ctx)
	if err != nil {
		return nil, err
	}
	return respond(h.kind, header, t)
}

func loadTopic(ctx query.Context) (*protocol.Topic, error) {
	id := bodyOf[*protocol.TopicQuery](ctx).TopicID
	t, err := load(ctx.View().Topic, id, errors.InvalidTopicID, "topic")
	if err != nil {
		return nil, err
	}
	if t.Deleted {
		return nil, errors.InvalidTopicID.WithFormat("topic %v has been deleted", id)
	}
	return t, nil
}

type scheduleGetInfo struct{ paid }

func (scheduleGetInfo) ComputeFees(ctx query.Context) (fees.Fees, error) {
	var u fees.Usage
	if s, err := ctx.View().Schedule(bodyOf[*protocol.ScheduleQuery](ctx).ScheduleID); err == nil {
		u.Bytes = uint64(len(s.Memo) + len(s.ScheduledTransactionBody))
	}
	return price(ctx, u), nil
}

func (scheduleGetInfo) Validate(ctx query.Context) error {
	_, err := loadSchedule(ctx)
	return err
}

func (h scheduleGetInfo) FindResponse(ctx query.Context, header protocol.ResponseHeader) (*protocol.Response, error) {
	s, err := loadSchedule(ctx)
	if err != nil {
		return nil, err
	}
	return respond(h.kind, header, s)
}

func loadSchedule(ctx query.Context) (*protocol.Schedule, error) {
	id := bodyOf[*protocol.ScheduleQuery](ctx).ScheduleID
	s, err := load(ctx.View().Schedule, id, errors.InvalidScheduleID, "schedule")
	if err != nil {
		return nil, err
	}
	if s.Deleted {
		return nil, errors.ScheduleDeleted.WithFormat("schedule %v has been deleted", id)
	}
	return s, nil
}
