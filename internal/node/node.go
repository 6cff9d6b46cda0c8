// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

// Package node wires the query pipeline together and serves it over HTTP.
package node

import (
	"context"
	"io"
	"log/slog"
	"net"
	"os"
	"strings"
	"time"

	rpchttp "github.com/cometbft/cometbft/rpc/client/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gitlab.com/hashledger/querynode/config"
	"gitlab.com/hashledger/querynode/internal/auth"
	"gitlab.com/hashledger/querynode/internal/fees"
	"gitlab.com/hashledger/querynode/internal/ingest"
	"gitlab.com/hashledger/querynode/internal/logging"
	"gitlab.com/hashledger/querynode/internal/metrics"
	"gitlab.com/hashledger/querynode/internal/query"
	"gitlab.com/hashledger/querynode/internal/query/handlers"
	"gitlab.com/hashledger/querynode/internal/state"
	"gitlab.com/hashledger/querynode/internal/submission"
	"gitlab.com/hashledger/querynode/internal/throttle"
	"gitlab.com/hashledger/querynode/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Node is a running query node.
type Node struct {
	config   *config.Config
	logger   *slog.Logger
	closers  []io.Closer
	store    *state.Store
	workflow *query.Workflow
	registry *prometheus.Registry
	limit    *semaphore.Weighted

	context  context.Context
	shutdown context.CancelFunc
	group    *errgroup.Group

	queryAddr   net.Addr
	metricsAddr net.Addr
}

type Options struct {
	// Logger overrides the logger built from the configuration.
	Logger *slog.Logger

	// Store overrides the store opened from the configuration. The node
	// does not close a store it is given.
	Store *state.Store
}

// New builds a node from the configuration. It does not start listening.
func New(ctx context.Context, cfg *config.Config, opts Options) (_ *Node, err error) {
	err = cfg.Validate()
	if err != nil {
		return nil, errors.FailInvalid.WithFormat("invalid configuration: %w", err)
	}

	n := new(Node)
	n.config = cfg
	n.context, n.shutdown = context.WithCancel(ctx)
	n.group, n.context = errgroup.WithContext(n.context)
	n.registry = prometheus.NewRegistry()

	// Cleanup if boot fails
	defer func() {
		if err != nil {
			n.shutdown()
			n.close()
		}
	}()

	n.logger = opts.Logger
	if n.logger == nil {
		n.logger, err = n.startLogging()
		if err != nil {
			return nil, err
		}
	}
	logger := n.logger.With("module", "node")

	err = n.startTracing()
	if err != nil {
		return nil, err
	}

	n.store = opts.Store
	if n.store == nil {
		n.store, err = state.Open(cfg, n.logger)
		if err != nil {
			return nil, errors.Unknown.WithFormat("open state: %w", err)
		}
		n.closers = append(n.closers, n.store)
	}

	var status ingest.StatusClient
	var broadcast submission.Broadcaster
	if cfg.Consensus.RPCAddress != "" {
		rpc, err := rpchttp.NewWithTimeout(cfg.Consensus.RPCAddress, "/websocket", uint(cfg.Consensus.Timeout/time.Second))
		if err != nil {
			return nil, errors.Unknown.WithFormat("connect to consensus: %w", err)
		}
		rpc.SetLogger((*logging.Slogger)(n.logger.With("module", "consensus")))
		status, broadcast = rpc, rpc
		logger.Info("Submitting payments to consensus", "address", cfg.Consensus.RPCAddress)
	} else {
		logger.Warn("No consensus RPC address, running standalone")
	}

	authorizer, err := auth.New(cfg.Accounts)
	if err != nil {
		return nil, err
	}
	calc, err := fees.NewCalculatorFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	checker, err := ingest.New(ingest.Options{Config: cfg, Logger: n.logger, Status: status})
	if err != nil {
		return nil, err
	}
	accumulator, err := throttle.New(cfg.Throttle)
	if err != nil {
		return nil, err
	}
	dispatcher, err := handlers.NewDispatcher()
	if err != nil {
		return nil, err
	}

	m := metrics.New(n.registry)
	err = m.TrackUtilization(accumulator.Utilization)
	if err != nil {
		return nil, err
	}
	n.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	n.workflow, err = query.NewWorkflow(query.Options{
		Config:     cfg,
		Logger:     n.logger,
		State:      n.store,
		Ingest:     checker,
		Checker:    query.NewChecker(cfg, authorizer, calc),
		Authorizer: authorizer,
		Throttle:   accumulator,
		Submitter:  submission.New(submission.Options{
			Broadcaster:      broadcast,
			Store:            n.store,
			MaxValidDuration: cfg.Ingest.MaxValidDuration + cfg.Ingest.ClockSkew,
			Logger:           n.logger,
		}),
		Dispatcher: dispatcher,
		Metrics:    m,
		Fees:       calc,
	})
	if err != nil {
		return nil, err
	}

	limit := cfg.Query.MaxConcurrent
	if limit <= 0 {
		limit = 1
	}
	n.limit = semaphore.NewWeighted(int64(limit))
	return n, nil
}

func (n *Node) startLogging() (*slog.Logger, error) {
	rules, err := logging.ParseRules(n.config.Logging.Level)
	if err != nil {
		return nil, err
	}

	output := n.config.Logging.Output
	switch strings.ToLower(output) {
	case "", "stderr", "stdout":
	default:
		output = n.config.MakeAbsolute(output)
	}

	logger, closer, err := logging.New(logging.Options{
		Format:     n.config.Logging.Format,
		Rules:      rules,
		Output:     output,
		MaxSizeMB:  n.config.Logging.MaxSizeMB,
		MaxBackups: n.config.Logging.MaxBackups,
		MaxAgeDays: n.config.Logging.MaxAgeDays,
		Compress:   n.config.Logging.Compress,
	})
	if err != nil {
		return nil, errors.Unknown.WithFormat("start logging: %w", err)
	}
	n.closers = append(n.closers, closer)
	return logger, nil
}

// startTracing installs a tracer provider that writes spans to stdout.
func (n *Node) startTracing() error {
	if !n.config.Instrumentation.Tracing {
		return nil
	}

	exp, err := stdouttrace.New(stdouttrace.WithWriter(os.Stdout))
	if err != nil {
		return errors.Unknown.WithFormat("create trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
	otel.SetTracerProvider(tp)
	n.closers = append(n.closers, closerFunc(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return tp.Shutdown(ctx)
	}))
	return nil
}

// Workflow returns the node's query workflow.
func (n *Node) Workflow() *query.Workflow { return n.workflow }

// Store returns the node's state store.
func (n *Node) Store() *state.Store { return n.store }

// QueryAddr returns the address the query server is listening on, once
// started.
func (n *Node) QueryAddr() net.Addr { return n.queryAddr }

// MetricsAddr returns the address the metrics server is listening on, if
// there is one.
func (n *Node) MetricsAddr() net.Addr { return n.metricsAddr }

// Done is closed when the node shuts down.
func (n *Node) Done() <-chan struct{} { return n.context.Done() }

// Start starts listening for queries and, if enabled, metrics scrapes.
func (n *Node) Start() (err error) {
	defer func() {
		if err != nil {
			n.shutdown()
		}
	}()

	l, err := net.Listen("tcp", n.config.Node.ListenAddress)
	if err != nil {
		return errors.Unknown.WithFormat("listen on %s: %w", n.config.Node.ListenAddress, err)
	}
	n.queryAddr = l.Addr()
	if limit := n.config.Node.MaxConnections; limit > 0 {
		l = newLimitedListener(l, limit)
	}
	n.serve("query", n.queryServer(), l)

	if !n.config.Instrumentation.Prometheus || n.config.Instrumentation.PrometheusListen == "" {
		return nil
	}
	l, err = net.Listen("tcp", n.config.Instrumentation.PrometheusListen)
	if err != nil {
		return errors.Unknown.WithFormat("listen on %s: %w", n.config.Instrumentation.PrometheusListen, err)
	}
	n.metricsAddr = l.Addr()
	n.serve("metrics", n.metricsServer(), l)
	return nil
}

// Stop shuts the node down and waits for its servers to stop.
func (n *Node) Stop() error {
	n.shutdown()
	err := n.group.Wait()
	n.close()
	return err
}

func (n *Node) close() {
	for i := len(n.closers) - 1; i >= 0; i-- {
		err := n.closers[i].Close()
		if err != nil && n.logger != nil {
			n.logger.Error("Error during shutdown", "module", "node", "error", err)
		}
	}
	n.closers = nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
