// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package query

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gitlab.com/hashledger/querynode/config"
	"gitlab.com/hashledger/querynode/internal/auth"
	"gitlab.com/hashledger/querynode/internal/fees"
	"gitlab.com/hashledger/querynode/internal/ingest"
	"gitlab.com/hashledger/querynode/internal/logging"
	"gitlab.com/hashledger/querynode/internal/state"
	"gitlab.com/hashledger/querynode/pkg/errors"
	"gitlab.com/hashledger/querynode/pkg/protocol"
	"gitlab.com/hashledger/querynode/pkg/types/encoding"
)

var (
	node      = protocol.AccountNum(3)
	payer     = protocol.AccountNum(1001)
	poor      = protocol.AccountNum(1004)
	superUser = protocol.AccountNum(2)
)

var queryFee = fees.Fees{NodeFee: 10, NetworkFee: 20, ServiceFee: 30}

type fakeHandler struct {
	kind     protocol.QueryKind
	free     bool
	cost     fees.Fees
	valErr   error
	headerFn func()
	findFn   func()

	validated []Context
	found     int
}

func (h *fakeHandler) Kind() protocol.QueryKind { return h.kind }

func (h *fakeHandler) ExtractHeader(q *protocol.Query) (*protocol.QueryHeader, error) {
	if h.headerFn != nil {
		h.headerFn()
	}
	return q.Body(h.kind).GetHeader(), nil
}

func (h *fakeHandler) NeedsAnswerOnlyCost(t protocol.ResponseType) bool {
	return !h.free && t == protocol.CostAnswer
}

func (h *fakeHandler) RequiresNodePayment(t protocol.ResponseType) bool {
	return !h.free && (t == protocol.AnswerOnly || t == protocol.AnswerStateProof)
}

func (h *fakeHandler) ComputeFees(Context) (fees.Fees, error) { return h.cost, nil }

func (h *fakeHandler) Validate(ctx Context) error {
	h.validated = append(h.validated, ctx)
	return h.valErr
}

func (h *fakeHandler) FindResponse(_ Context, header protocol.ResponseHeader) (*protocol.Response, error) {
	h.found++
	if h.findFn != nil {
		h.findFn()
	}
	payload, err := encoding.Marshal("answer")
	if err != nil {
		return nil, err
	}
	return protocol.NewResponse(h.kind, &protocol.Answer{Header: header, Payload: payload}), nil
}

func (h *fakeHandler) CreateEmptyResponse(header protocol.ResponseHeader) *protocol.Response {
	return EmptyResponse(h.kind, header)
}

type fakeIngest struct {
	nodeErr error
	runErr  error
	info    *ingest.TransactionInfo
	runs    int
}

func (f *fakeIngest) CheckNodeState(context.Context) error { return f.nodeErr }

func (f *fakeIngest) RunAllChecks(context.Context, *state.View, *protocol.Transaction) (*ingest.TransactionInfo, error) {
	f.runs++
	return f.info, f.runErr
}

type fakeThrottle struct {
	throttle bool
	calls    int
}

func (f *fakeThrottle) ShouldThrottle(protocol.Functionality, *protocol.Query) bool {
	f.calls++
	return f.throttle
}

type fakeSubmitter struct {
	err       error
	submitted []*ingest.TransactionInfo
}

func (f *fakeSubmitter) Submit(_ context.Context, info *ingest.TransactionInfo) error {
	if f.err != nil {
		return f.err
	}
	f.submitted = append(f.submitted, info)
	return nil
}

// countingState counts the views it hands out and the views released.
type countingState struct {
	store              *state.Store
	acquired, released int
}

func (c *countingState) Acquire(rt protocol.ResponseType) *state.View {
	c.acquired++
	v := c.store.Acquire(rt)
	v.OnRelease(func() { c.released++ })
	return v
}

// fixedBalanceError fails the balance check with a fixed error.
type fixedBalanceError struct {
	*Checker
	err error
}

func (f fixedBalanceError) ValidateAccountBalances(*state.View, *ingest.TransactionInfo, *protocol.Account, uint64, uint64) error {
	return f.err
}

type fakeMetrics struct {
	mu                                     sync.Mutex
	received, answered, throttled, timings map[protocol.Functionality]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{
		received:  map[protocol.Functionality]int{},
		answered:  map[protocol.Functionality]int{},
		throttled: map[protocol.Functionality]int{},
		timings:   map[protocol.Functionality]int{},
	}
}

func (m *fakeMetrics) inc(c map[protocol.Functionality]int, fn protocol.Functionality) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c[fn]++
}

func (m *fakeMetrics) UpdateDuration(fn protocol.Functionality, _ time.Duration) { m.inc(m.timings, fn) }
func (m *fakeMetrics) IncrementThrottled(fn protocol.Functionality)              { m.inc(m.throttled, fn) }
func (m *fakeMetrics) CountReceived(fn protocol.Functionality)                   { m.inc(m.received, fn) }
func (m *fakeMetrics) CountAnswered(fn protocol.Functionality)                   { m.inc(m.answered, fn) }

type harness struct {
	cfg       *config.Config
	state     *countingState
	checker   func(*Checker) PaymentChecker
	handler   *fakeHandler
	ingest    *fakeIngest
	throttle  *fakeThrottle
	submitter *fakeSubmitter
	metrics   *fakeMetrics
}

func setup(t *testing.T, kind protocol.QueryKind) *harness {
	t.Helper()
	logger := logging.TestLogger(t)

	store, err := state.OpenInMemory(logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Update(func(b *state.Batch) error {
		for _, a := range []*protocol.Account{
			{ID: node},
			{ID: payer, Balance: 1e12},
			{ID: poor, Balance: 10},
			{ID: superUser},
		} {
			if err := b.PutAccount(a); err != nil {
				return err
			}
		}
		return nil
	}))

	return &harness{
		cfg:       config.Default(),
		state:     &countingState{store: store},
		handler:   &fakeHandler{kind: kind, cost: queryFee},
		ingest:    &fakeIngest{info: payment(payer, 1000)},
		throttle:  new(fakeThrottle),
		submitter: new(fakeSubmitter),
		metrics:   newFakeMetrics(),
	}
}

func (h *harness) workflow(t *testing.T) *Workflow {
	t.Helper()
	handlers := []Handler{h.handler}
	for _, kind := range protocol.QueryKinds() {
		if kind != h.handler.kind {
			handlers = append(handlers, &fakeHandler{kind: kind})
		}
	}
	dispatcher, err := NewDispatcher(handlers...)
	require.NoError(t, err)

	authorizer, err := auth.New(h.cfg.Accounts)
	require.NoError(t, err)
	calc, err := fees.NewCalculatorFromConfig(h.cfg)
	require.NoError(t, err)

	var checker PaymentChecker = NewChecker(h.cfg, authorizer, calc)
	if h.checker != nil {
		checker = h.checker(NewChecker(h.cfg, authorizer, calc))
	}

	w, err := NewWorkflow(Options{
		Config:     h.cfg,
		Logger:     logging.TestLogger(t),
		State:      h.state,
		Ingest:     h.ingest,
		Checker:    checker,
		Authorizer: authorizer,
		Throttle:   h.throttle,
		Submitter:  h.submitter,
		Dispatcher: dispatcher,
		Metrics:    h.metrics,
		Fees:       calc,
	})
	require.NoError(t, err)
	return w
}

// do runs the query and returns the answer. Every view the query acquired
// must have been released.
func (h *harness) do(t *testing.T, q *protocol.Query) *protocol.Answer {
	t.Helper()
	b, err := encoding.Marshal(q)
	require.NoError(t, err)
	b, err = h.workflow(t).HandleQuery(context.Background(), b)
	require.NoError(t, err)
	require.Equal(t, h.state.acquired, h.state.released, "unreleased views")

	resp := new(protocol.Response)
	require.NoError(t, encoding.Unmarshal(b, resp))
	kind, answer, err := resp.Answer()
	require.NoError(t, err)
	require.Equal(t, h.handler.kind, kind)
	return answer
}

// payment returns a transfer of amount from the account to the node.
func payment(from protocol.AccountID, amount int64) *ingest.TransactionInfo {
	body := &protocol.TransactionBody{
		TransactionID:  protocol.TransactionID{AccountID: from, ValidStart: protocol.Timestamp{Seconds: 1700000000}},
		NodeAccountID:  node,
		TransactionFee: 1e10,
		ValidDuration:  120,
		CryptoTransfer: &protocol.CryptoTransferBody{Transfers: []protocol.AccountAmount{
			{AccountID: from, Amount: -amount},
			{AccountID: node, Amount: amount},
		}},
	}
	return &ingest.TransactionInfo{
		Transaction:   &protocol.Transaction{SignedTransactionBytes: make([]byte, 100)},
		Signed:        new(protocol.SignedTransaction),
		Body:          body,
		Functionality: protocol.FunctionalityCryptoTransfer,
		PayerKey:      &protocol.Key{Ed25519: make([]byte, 32)},
	}
}

func infoQuery(rt protocol.ResponseType, paid bool) *protocol.Query {
	q := &protocol.Query{FileGetInfo: &protocol.FileQuery{Header: protocol.QueryHeader{ResponseType: rt}}}
	if paid {
		q.FileGetInfo.Header.Payment = &protocol.Transaction{SignedTransactionBytes: []byte{1}}
	}
	return q
}

func TestFreeQuery(t *testing.T) {
	h := setup(t, protocol.QueryKindCryptoGetAccountBalance)
	h.handler.free = true
	h.handler.cost = fees.Free

	answer := h.do(t, &protocol.Query{CryptoGetAccountBalance: &protocol.BalanceQuery{AccountID: payer}})
	require.Equal(t, errors.OK, answer.Header.PrecheckCode)
	require.Zero(t, answer.Header.Cost)
	require.NotEmpty(t, answer.Payload)

	require.Len(t, h.handler.validated, 1)
	_, ok := h.handler.validated[0].Payer()
	require.False(t, ok, "free queries have no payer")
	require.Zero(t, h.ingest.runs)
	require.Empty(t, h.submitter.submitted)

	fn := protocol.FunctionalityCryptoGetAccountBalance
	require.Equal(t, 1, h.metrics.received[fn])
	require.Equal(t, 1, h.metrics.answered[fn])
	require.Equal(t, 1, h.metrics.timings[fn])
}

func TestCostOnly(t *testing.T) {
	h := setup(t, protocol.QueryKindFileGetInfo)

	answer := h.do(t, infoQuery(protocol.CostAnswer, false))
	require.Equal(t, errors.OK, answer.Header.PrecheckCode)
	require.Equal(t, protocol.CostAnswer, answer.Header.ResponseType)
	require.Equal(t, queryFee.TotalFee(), answer.Header.Cost)
	require.Empty(t, answer.Payload)

	// A cost query neither checks a payment nor touches the state
	require.Zero(t, h.ingest.runs)
	require.Empty(t, h.handler.validated)
	require.Zero(t, h.handler.found)
	require.Empty(t, h.submitter.submitted)
	require.Zero(t, h.metrics.answered[protocol.FunctionalityFileGetInfo])
}

func TestPaidQuery(t *testing.T) {
	h := setup(t, protocol.QueryKindFileGetInfo)

	answer := h.do(t, infoQuery(protocol.AnswerOnly, true))
	require.Equal(t, errors.OK, answer.Header.PrecheckCode)
	require.NotEmpty(t, answer.Payload)

	require.Equal(t, 1, h.ingest.runs)
	require.Len(t, h.submitter.submitted, 1)
	require.Equal(t, payer, h.submitter.submitted[0].Payer())

	require.Len(t, h.handler.validated, 1)
	id, ok := h.handler.validated[0].Payer()
	require.True(t, ok)
	require.Equal(t, payer, id)
	require.Equal(t, 1, h.metrics.answered[protocol.FunctionalityFileGetInfo])
}

func TestMissingPayment(t *testing.T) {
	h := setup(t, protocol.QueryKindFileGetInfo)

	answer := h.do(t, infoQuery(protocol.AnswerOnly, false))
	require.Equal(t, errors.InsufficientTxFee, answer.Header.PrecheckCode)
	require.Zero(t, answer.Header.Cost)
	require.Empty(t, answer.Payload)
	require.Zero(t, h.ingest.runs)

	h.cfg.Query.MissingPaymentCode = "INVALID_TRANSACTION"
	answer = h.do(t, infoQuery(protocol.AnswerOnly, false))
	require.Equal(t, errors.InvalidTransaction, answer.Header.PrecheckCode)
}

func TestThrottle(t *testing.T) {
	h := setup(t, protocol.QueryKindFileGetInfo)
	h.throttle.throttle = true

	answer := h.do(t, infoQuery(protocol.AnswerOnly, true))
	require.Equal(t, errors.Busy, answer.Header.PrecheckCode)
	require.Equal(t, 1, h.metrics.throttled[protocol.FunctionalityFileGetInfo])
	require.Equal(t, 1, h.metrics.timings[protocol.FunctionalityFileGetInfo])
	require.Zero(t, h.metrics.answered[protocol.FunctionalityFileGetInfo])
	require.Zero(t, h.ingest.runs)

	// The throttle is only consulted when queries are charged
	h.cfg.Query.ChargeQueries = false
	h.throttle.calls = 0
	answer = h.do(t, infoQuery(protocol.AnswerOnly, true))
	require.Equal(t, errors.OK, answer.Header.PrecheckCode)
	require.Zero(t, h.throttle.calls)
}

func TestNodeNotActive(t *testing.T) {
	h := setup(t, protocol.QueryKindFileGetInfo)
	h.ingest.nodeErr = errors.New("catching up")
	h.throttle.throttle = true

	answer := h.do(t, infoQuery(protocol.CostAnswer, false))
	require.Equal(t, errors.PlatformNotActive, answer.Header.PrecheckCode)
	require.Zero(t, answer.Header.Cost)
	require.Zero(t, h.throttle.calls)
}

func TestStateProofNotSupported(t *testing.T) {
	for _, rt := range []protocol.ResponseType{protocol.AnswerStateProof, protocol.AnswerOnlyStateProof} {
		h := setup(t, protocol.QueryKindFileGetInfo)
		answer := h.do(t, infoQuery(rt, true))
		require.Equal(t, errors.NotSupported, answer.Header.PrecheckCode, rt)
		require.Equal(t, rt, answer.Header.ResponseType)
		require.Zero(t, h.ingest.runs)
	}
}

func TestPaymentFailures(t *testing.T) {
	cases := []struct {
		name  string
		setup func(*harness)
		code  errors.Status
	}{
		{"Ingest", func(h *harness) { h.ingest.runErr = errors.InvalidSignature.With("bad") }, errors.InvalidSignature},
		{"NotATransfer", func(h *harness) {
			h.ingest.info.Body.CryptoTransfer = nil
			h.ingest.info.Body.ConsensusSubmitMessage = new(protocol.ConsensusSubmitMessageBody)
			h.ingest.info.Functionality = protocol.FunctionalityConsensusSubmitMessage
		}, errors.InsufficientTxFee},
		{"Unbalanced", func(h *harness) { h.ingest.info.Body.CryptoTransfer.Transfers[1].Amount++ }, errors.InvalidAccountAmounts},
		{"PayerMissing", func(h *harness) { h.ingest.info = payment(protocol.AccountNum(9999), 1000) }, errors.PayerAccountNotFound},
		{"Validate", func(h *harness) { h.handler.valErr = errors.FileDeleted.With("deleted") }, errors.FileDeleted},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := setup(t, protocol.QueryKindFileGetInfo)
			c.setup(h)
			answer := h.do(t, infoQuery(protocol.AnswerOnly, true))
			require.Equal(t, c.code, answer.Header.PrecheckCode)
			require.Empty(t, answer.Payload)
			require.Empty(t, h.submitter.submitted)
			require.Zero(t, h.handler.found)
		})
	}
}

func TestInsufficientBalanceReportsCost(t *testing.T) {
	h := setup(t, protocol.QueryKindFileGetInfo)
	h.ingest.info = payment(poor, 5)

	txFee := newChecker(t).EstimateTxFees(h.ingest.info)
	require.NotZero(t, txFee)
	answer := h.do(t, infoQuery(protocol.AnswerOnly, true))
	require.Equal(t, errors.InsufficientPayerBalance, answer.Header.PrecheckCode)
	require.Equal(t, queryFee.TotalFee()+txFee, answer.Header.Cost)
	require.Empty(t, h.submitter.submitted)

	// The node must be paid at least the query cost
	h = setup(t, protocol.QueryKindFileGetInfo)
	h.ingest.info = payment(payer, int64(queryFee.TotalFee())-1)
	txFee = newChecker(t).EstimateTxFees(h.ingest.info)
	answer = h.do(t, infoQuery(protocol.AnswerOnly, true))
	require.Equal(t, errors.InsufficientTxFee, answer.Header.PrecheckCode)
	require.Equal(t, queryFee.TotalFee()+txFee, answer.Header.Cost)
}

func TestBalanceFailureCostComesFromError(t *testing.T) {
	h := setup(t, protocol.QueryKindFileGetInfo)
	h.checker = func(c *Checker) PaymentChecker {
		return fixedBalanceError{c, errors.InsufficientBalance(errors.InsufficientTxFee, 12345, "short")}
	}

	answer := h.do(t, infoQuery(protocol.AnswerOnly, true))
	require.Equal(t, errors.InsufficientTxFee, answer.Header.PrecheckCode)
	require.Equal(t, uint64(12345), answer.Header.Cost)
	require.Empty(t, answer.Payload)
	require.Empty(t, h.submitter.submitted)
	require.Empty(t, h.handler.validated)
}

func TestOverflowingPaymentIsNotSubmitted(t *testing.T) {
	h := setup(t, protocol.QueryKindFileGetInfo)
	h.ingest.info.Body.CryptoTransfer.Transfers = []protocol.AccountAmount{
		{AccountID: node, Amount: math.MaxInt64},
		{AccountID: protocol.AccountNum(1002), Amount: math.MaxInt64},
		{AccountID: protocol.AccountNum(1003), Amount: 2},
	}

	answer := h.do(t, infoQuery(protocol.AnswerOnly, true))
	require.Equal(t, errors.InvalidAccountAmounts, answer.Header.PrecheckCode)
	require.Empty(t, h.submitter.submitted)
	require.Zero(t, h.handler.found)
}

func TestSuperUserIsExempt(t *testing.T) {
	h := setup(t, protocol.QueryKindFileGetInfo)
	h.ingest.info = payment(superUser, 1000)

	answer := h.do(t, infoQuery(protocol.AnswerOnly, true))
	require.Equal(t, errors.OK, answer.Header.PrecheckCode)
	require.Empty(t, h.submitter.submitted)
	require.Len(t, h.handler.validated, 1)
}

func TestRestrictedQuery(t *testing.T) {
	// Unpaid
	h := setup(t, protocol.QueryKindAccountDetails)
	h.handler.free = true
	answer := h.do(t, &protocol.Query{AccountDetails: &protocol.AccountQuery{AccountID: payer}})
	require.Equal(t, errors.NotSupported, answer.Header.PrecheckCode)
	require.Empty(t, h.handler.validated)

	// Paid by an account that is not permitted
	h = setup(t, protocol.QueryKindAccountDetails)
	q := &protocol.Query{AccountDetails: &protocol.AccountQuery{AccountID: payer}}
	q.AccountDetails.Header.Payment = &protocol.Transaction{SignedTransactionBytes: []byte{1}}
	answer = h.do(t, q)
	require.Equal(t, errors.NotSupported, answer.Header.PrecheckCode)
	require.Empty(t, h.submitter.submitted)

	// Paid by a permitted account
	h = setup(t, protocol.QueryKindAccountDetails)
	h.ingest.info = payment(superUser, 1000)
	answer = h.do(t, q)
	require.Equal(t, errors.OK, answer.Header.PrecheckCode)
}

func TestSubmitFailure(t *testing.T) {
	h := setup(t, protocol.QueryKindFileGetInfo)
	h.submitter.err = errors.New("connection refused")
	answer := h.do(t, infoQuery(protocol.AnswerOnly, true))
	require.Equal(t, errors.PlatformTransactionNotCreated, answer.Header.PrecheckCode)
	require.Zero(t, h.handler.found)

	h = setup(t, protocol.QueryKindFileGetInfo)
	h.submitter.err = errors.DuplicateTransaction.With("already submitted")
	answer = h.do(t, infoQuery(protocol.AnswerOnly, true))
	require.Equal(t, errors.DuplicateTransaction, answer.Header.PrecheckCode)
}

func TestHandlerFailures(t *testing.T) {
	h := setup(t, protocol.QueryKindFileGetInfo)
	h.handler.findFn = func() { panic("boom") }
	answer := h.do(t, infoQuery(protocol.AnswerOnly, true))
	require.Equal(t, errors.FailInvalid, answer.Header.PrecheckCode)
	require.Empty(t, answer.Payload)
	require.Zero(t, h.metrics.answered[protocol.FunctionalityFileGetInfo])

	// Errors without a status are internal failures
	h = setup(t, protocol.QueryKindCryptoGetAccountBalance)
	h.handler.free = true
	h.handler.valErr = errors.New("disk on fire")
	answer = h.do(t, &protocol.Query{CryptoGetAccountBalance: new(protocol.BalanceQuery)})
	require.Equal(t, errors.FailInvalid, answer.Header.PrecheckCode)
}

func TestPanicWhileExtractingHeader(t *testing.T) {
	h := setup(t, protocol.QueryKindFileGetInfo)
	h.handler.headerFn = func() { panic("boom") }

	answer := h.do(t, infoQuery(protocol.CostAnswer, true))
	require.Equal(t, errors.FailInvalid, answer.Header.PrecheckCode)
	require.Equal(t, protocol.AnswerOnly, answer.Header.ResponseType)
	require.Zero(t, h.state.acquired)
	require.Equal(t, 1, h.metrics.timings[protocol.FunctionalityFileGetInfo])
}

func TestViewIsReleasedOnEveryPath(t *testing.T) {
	cases := []struct {
		name  string
		query *protocol.Query
		setup func(*harness)
		code  errors.Status
	}{
		{"Answered", infoQuery(protocol.AnswerOnly, true), func(*harness) {}, errors.OK},
		{"Throttled", infoQuery(protocol.AnswerOnly, true), func(h *harness) { h.throttle.throttle = true }, errors.Busy},
		{"CostOnly", infoQuery(protocol.CostAnswer, false), func(*harness) {}, errors.OK},
		{"PaymentFailure", infoQuery(protocol.AnswerOnly, true), func(h *harness) { h.ingest.info = payment(poor, 5) }, errors.InsufficientPayerBalance},
		{"SubmitFailure", infoQuery(protocol.AnswerOnly, true), func(h *harness) { h.submitter.err = errors.New("connection refused") }, errors.PlatformTransactionNotCreated},
		{"Panic", infoQuery(protocol.AnswerOnly, true), func(h *harness) { h.handler.findFn = func() { panic("boom") } }, errors.FailInvalid},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := setup(t, protocol.QueryKindFileGetInfo)
			c.setup(h)
			answer := h.do(t, c.query)
			require.Equal(t, c.code, answer.Header.PrecheckCode)
			require.Equal(t, 1, h.state.acquired)
			require.Equal(t, 1, h.state.released)
		})
	}
}

func TestInvalidRequests(t *testing.T) {
	h := setup(t, protocol.QueryKindFileGetInfo)
	w := h.workflow(t)

	_, err := w.HandleQuery(context.Background(), []byte{0xff, 0x00})
	require.ErrorIs(t, err, ErrInvalidArgument)

	b, err := encoding.Marshal(new(protocol.Query))
	require.NoError(t, err)
	_, err = w.HandleQuery(context.Background(), b)
	require.ErrorIs(t, err, ErrInvalidArgument)

	require.Empty(t, h.metrics.received)
}
