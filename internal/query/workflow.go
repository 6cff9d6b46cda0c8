// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package query answers queries from the state.
package query

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"gitlab.com/hashledger/querynode/config"
	"gitlab.com/hashledger/querynode/internal/fees"
	"gitlab.com/hashledger/querynode/internal/ingest"
	"gitlab.com/hashledger/querynode/internal/logging"
	"gitlab.com/hashledger/querynode/internal/state"
	"gitlab.com/hashledger/querynode/pkg/errors"
	"gitlab.com/hashledger/querynode/pkg/protocol"
	"gitlab.com/hashledger/querynode/pkg/types/encoding"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrInvalidArgument is returned for requests that cannot be answered with
// a response because the kind of query cannot be determined.
var ErrInvalidArgument = errors.New("invalid argument")

// Workflow processes encoded queries.
type Workflow struct {
	state      StateAccessor
	ingest     IngestChecker
	checker    PaymentChecker
	auth       Authorizer
	throttle   Throttle
	submitter  Submitter
	dispatcher *Dispatcher
	metrics    Metrics
	fees       *fees.Calculator
	config     *config.Config
	missing    errors.Status
	logger     *slog.Logger
	tracer     trace.Tracer
}

type Options struct {
	Config     *config.Config
	Logger     *slog.Logger
	State      StateAccessor
	Ingest     IngestChecker
	Checker    PaymentChecker
	Authorizer Authorizer
	Throttle   Throttle
	Submitter  Submitter
	Dispatcher *Dispatcher
	Metrics    Metrics
	Fees       *fees.Calculator
}

func NewWorkflow(opts Options) (*Workflow, error) {
	missing, err := opts.Config.MissingPaymentStatus()
	if err != nil {
		return nil, err
	}

	w := &Workflow{
		state:      opts.State,
		ingest:     opts.Ingest,
		checker:    opts.Checker,
		auth:       opts.Authorizer,
		throttle:   opts.Throttle,
		submitter:  opts.Submitter,
		dispatcher: opts.Dispatcher,
		metrics:    opts.Metrics,
		fees:       opts.Fees,
		config:     opts.Config,
		missing:    missing,
		logger:     opts.Logger,
		tracer:     otel.Tracer("gitlab.com/hashledger/querynode/internal/query"),
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	w.logger = w.logger.With("module", "query")
	return w, nil
}

// HandleQuery decodes the query, answers it, and returns the encoded
// response. An error is returned only if the request is not a query
// ([ErrInvalidArgument]) or the response cannot be encoded; every other
// failure is reported in the response header.
func (w *Workflow) HandleQuery(ctx context.Context, request []byte) ([]byte, error) {
	query := new(protocol.Query)
	err := encoding.Unmarshal(request, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	handler, kind, err := w.dispatcher.HandlerFor(query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	fn := kind.Functionality()
	start := time.Now()
	w.metrics.CountReceived(fn)

	ctx = logging.With(ctx, "query", kind)
	ctx, span := w.tracer.Start(ctx, "query."+kind.String(), trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()
	span.SetAttributes(attribute.String("query.functionality", fn.String()))

	response := w.handle(ctx, handler, kind, query)
	w.metrics.UpdateDuration(fn, time.Since(start))

	_, answer, err := response.Answer()
	if err != nil {
		span.SetStatus(codes.Error, "invalid_response")
		return nil, errors.FailInvalid.WithFormat("%v handler returned an invalid response: %w", kind, err)
	}
	span.SetAttributes(
		attribute.String("query.precheck", answer.Header.PrecheckCode.String()),
		attribute.Int64("query.cost", int64(answer.Header.Cost)),
	)
	if answer.Header.PrecheckCode.IsOK() {
		span.SetStatus(codes.Ok, "")
	} else {
		span.SetStatus(codes.Error, answer.Header.PrecheckCode.String())
	}

	b, err := encoding.Marshal(response)
	if err != nil {
		return nil, errors.BadEncoding.WithFormat("encode response: %w", err)
	}
	return b, nil
}

func (w *Workflow) handle(ctx context.Context, h Handler, kind protocol.QueryKind, query *protocol.Query) (response *protocol.Response) {
	// Until the header is known the response is an answer
	responseType := protocol.AnswerOnly
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		w.logger.ErrorContext(ctx, "Panicked while handling query", "error", r, "stack", string(debug.Stack()))
		response = h.CreateEmptyResponse(protocol.ResponseHeader{PrecheckCode: errors.FailInvalid, ResponseType: responseType})
	}()

	header, err := h.ExtractHeader(query)
	if err != nil {
		return w.fail(ctx, h, responseType, err)
	}
	responseType = header.ResponseType

	view := w.state.Acquire(responseType)
	defer view.Release()

	err = w.ingest.CheckNodeState(ctx)
	if err != nil {
		return w.fail(ctx, h, responseType, errors.PlatformNotActive.Wrap(err))
	}

	if responseType.IsStateProof() || responseType > protocol.AnswerOnlyStateProof {
		return w.fail(ctx, h, responseType, errors.NotSupported.WithFormat("response type %v is not supported", responseType))
	}

	fn := kind.Functionality()
	if w.config.Query.ChargeQueries && w.throttle.ShouldThrottle(fn, query) {
		w.metrics.IncrementThrottled(fn)
		return w.fail(ctx, h, responseType, errors.Busy.WithFormat("%v is throttled", fn))
	}

	qctx := NewContext(ctx, query, kind, view, w.config, w.fees)
	if responseType == protocol.CostAnswer && h.NeedsAnswerOnlyCost(responseType) {
		cost, err := h.ComputeFees(qctx)
		if err != nil {
			return w.fail(ctx, h, responseType, err)
		}
		return h.CreateEmptyResponse(protocol.ResponseHeader{
			PrecheckCode: errors.OK,
			ResponseType: responseType,
			Cost:         cost.TotalFee(),
		})
	}

	if h.RequiresNodePayment(responseType) {
		qctx, err = w.checkPayment(ctx, h, qctx, header)
	} else if fn.IsRestricted() {
		err = errors.NotSupported.WithFormat("%v requires a payment", fn)
	} else {
		err = h.Validate(qctx)
	}
	if err != nil {
		return w.fail(ctx, h, responseType, err)
	}

	response, err = h.FindResponse(qctx, protocol.ResponseHeader{PrecheckCode: errors.OK, ResponseType: responseType})
	if err != nil {
		return w.fail(ctx, h, responseType, err)
	}
	w.metrics.CountAnswered(fn)
	return response
}

// checkPayment runs the paid query checks and submits the payment. It
// returns the context with the payer set.
func (w *Workflow) checkPayment(ctx context.Context, h Handler, qctx Context, header *protocol.QueryHeader) (Context, error) {
	if header.Payment == nil {
		return qctx, w.missing.With("query requires a payment")
	}

	view := qctx.View()
	info, err := w.ingest.RunAllChecks(ctx, view, header.Payment)
	if err != nil {
		return qctx, err
	}

	err = w.checker.ValidateCryptoTransfer(info)
	if err != nil {
		return qctx, err
	}

	payer := info.Payer()
	fn := qctx.Kind().Functionality()
	err = w.checker.CheckPermissions(payer, fn)
	if err != nil {
		return qctx, err
	}

	qctx = qctx.WithPayer(payer)
	cost, err := h.ComputeFees(qctx)
	if err != nil {
		return qctx, err
	}

	superUser := w.auth.IsSuperUser(payer)
	if !superUser {
		err = w.checkBalances(view, info, cost.TotalFee())
		if err != nil {
			return qctx, err
		}
	}

	err = h.Validate(qctx)
	if err != nil {
		return qctx, err
	}

	if superUser {
		return qctx, nil
	}
	err = w.submitter.Submit(ctx, info)
	if err != nil {
		if !errors.Code(err).IsKnownError() {
			err = errors.PlatformTransactionNotCreated.Wrap(err)
		}
		return qctx, err
	}
	return qctx, nil
}

func (w *Workflow) checkBalances(view *state.View, info *ingest.TransactionInfo, queryCost uint64) error {
	account, err := view.Account(info.Payer())
	switch {
	case err == nil:
	case errors.Is(err, state.ErrNotFound):
		return errors.PayerAccountNotFound.WithFormat("payer %v does not exist", info.Payer())
	default:
		return errors.Unknown.WithFormat("load payer: %w", err)
	}

	txFee := w.checker.EstimateTxFees(info)
	return w.checker.ValidateAccountBalances(view, info, account, queryCost, txFee)
}

// fail returns an empty response coded with the status of the error. The
// cost is the fee the error carries, if any.
func (w *Workflow) fail(ctx context.Context, h Handler, responseType protocol.ResponseType, err error) *protocol.Response {
	code := errors.Code(err)
	if !code.IsKnownError() {
		w.logger.ErrorContext(ctx, "Failed to handle query", "error", err)
		code = errors.FailInvalid
	} else {
		w.logger.DebugContext(ctx, "Query failed", "code", code, "error", err)
	}
	return h.CreateEmptyResponse(protocol.ResponseHeader{
		PrecheckCode: code,
		ResponseType: responseType,
		Cost:         errors.Fee(err),
	})
}
