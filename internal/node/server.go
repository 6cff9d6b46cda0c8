// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package node

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gitlab.com/hashledger/querynode/internal/logging"
	"gitlab.com/hashledger/querynode/internal/query"
)

// ContentType is the media type of encoded queries and responses.
const ContentType = "application/cbor"

func (n *Node) queryServer() *http.Server {
	router := httprouter.New()
	router.POST("/query", n.handleQuery)

	// Default HTTP server plus slow-loris prevention
	return &http.Server{
		Handler:           router,
		ReadHeaderTimeout: time.Minute,
		BaseContext:       func(net.Listener) context.Context { return n.context },
	}
}

func (n *Node) metricsServer() *http.Server {
	router := httprouter.New()
	router.Handler(http.MethodGet, "/metrics", promhttp.InstrumentMetricHandler(
		n.registry, promhttp.HandlerFor(n.registry, promhttp.HandlerOpts{}),
	))
	return &http.Server{Handler: router, ReadHeaderTimeout: time.Minute}
}

func (n *Node) handleQuery(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := logging.With(r.Context(), "request", uuid.NewString())
	logger := n.logger.With("module", "http")

	err := n.limit.Acquire(ctx, 1)
	if err != nil {
		// The client went away or the node is shutting down
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}
	defer n.limit.Release(1)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, n.config.Query.MaxRequestBytes))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			http.Error(w, "request too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "invalid argument", http.StatusBadRequest)
		return
	}

	resp, err := n.workflow.HandleQuery(ctx, body)
	switch {
	case err == nil:
	case errors.Is(err, query.ErrInvalidArgument):
		logger.DebugContext(ctx, "Rejected request", "error", err)
		http.Error(w, "invalid argument", http.StatusBadRequest)
		return
	default:
		logger.ErrorContext(ctx, "Failed to handle query", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", ContentType)
	_, err = w.Write(resp)
	if err != nil {
		logger.DebugContext(ctx, "Failed to write response", "error", err)
	}
}

// serve serves until the node shuts down.
func (n *Node) serve(name string, server *http.Server, l net.Listener) {
	logger := n.logger.With("module", "node")
	logger.Info("Listening", "server", name, "address", l.Addr())

	n.group.Go(func() error {
		err := server.Serve(l)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("Server stopped", "server", name, "error", err)
		return err
	})

	n.group.Go(func() error {
		<-n.context.Done()
		ctx, cancel := context.WithTimeout(context.Background(), n.config.Node.ShutdownTimeout)
		defer cancel()
		err := server.Shutdown(ctx)
		if err != nil {
			logger.Error("Error during shutdown", "server", name, "error", err)
		}
		return nil
	})
}
