// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package state

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"gitlab.com/hashledger/querynode/config"
	"gitlab.com/hashledger/querynode/pkg/errors"
	"gitlab.com/hashledger/querynode/pkg/protocol"
)

// ErrNotFound is returned when an entity does not exist.
var ErrNotFound = errors.New("not found")

// Store holds the node's view of the ledger state.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
	done   chan struct{}
	closed sync.Once
}

// Open opens the store described by the configuration.
func Open(cfg *config.Config, logger *slog.Logger) (*Store, error) {
	switch cfg.Storage.Type {
	case config.MemoryStorage:
		return OpenInMemory(logger)
	case config.BadgerStorage:
		return OpenBadger(cfg.MakeAbsolute(cfg.Storage.Path), logger)
	default:
		return nil, errors.NotSupported.WithFormat("storage type %q", cfg.Storage.Type)
	}
}

// OpenBadger opens or creates a store in the given directory.
func OpenBadger(dir string, logger *slog.Logger) (*Store, error) {
	// Make sure all directories exist
	err := os.MkdirAll(dir, 0700)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	s, err := open(badger.DefaultOptions(dir), logger)
	if err != nil {
		return nil, err
	}

	// Run GC every hour
	go s.gc(time.Hour)
	return s, nil
}

// OpenInMemory opens an empty store that lives in memory.
func OpenInMemory(logger *slog.Logger) (*Store, error) {
	return open(badger.DefaultOptions("").WithInMemory(true), logger)
}

func open(opts badger.Options, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(discard{})
	}
	logger = logger.With("module", "state")
	opts = opts.WithLogger(badgerLogger{logger})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	mDbOpen.Inc()
	return &Store{db: db, logger: logger, done: make(chan struct{})}, nil
}

func (s *Store) Close() error {
	var err error
	s.closed.Do(func() {
		close(s.done)
		mDbOpen.Dec()
		err = s.db.Close()
	})
	return err
}

func (s *Store) gc(interval time.Duration) {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-tick.C:
		}

		// Run GC if 50% space could be reclaimed
		mGcRun.Inc()
		err := s.db.RunValueLogGC(0.5)
		if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
			s.logger.Error("Badger GC failed", "error", err)
		}
	}
}

// Acquire returns a read-only snapshot of the current state for answering a
// query of the given response type. The caller must release it.
func (s *Store) Acquire(protocol.ResponseType) *View {
	mViewsOpen.Inc()
	return &View{txn: s.db.NewTransaction(false), release: mViewsOpen.Dec}
}

// Update runs fn in a read-write transaction and commits it if fn succeeds.
func (s *Store) Update(fn func(*Batch) error) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return fn(&Batch{txn: txn})
	})
}

// View runs fn against a snapshot.
func (s *Store) View(fn func(*View) error) error {
	v := s.Acquire(protocol.AnswerOnly)
	defer v.Release()
	return fn(v)
}
