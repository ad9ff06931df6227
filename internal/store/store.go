// Package store persists the book collection and the cover cache as two
// JSON records in a key-value backend.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// BadgerKV is the default KV backend, an embedded Badger database.
type BadgerKV struct {
	db     *badger.DB
	logger *slog.Logger
}

// OpenBadger opens (or creates) a Badger database in dir.
func OpenBadger(dir string, logger *slog.Logger) (*BadgerKV, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil            // badger's own logger is noisy at info
	opts.SyncWrites = true       // a write that returned nil survives a crash
	opts.CompactL0OnClose = true // faster next startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger != nil {
		logger.Info("badger database opened", "path", dir)
	}
	return &BadgerKV{db: db, logger: logger}, nil
}

// Get returns the value stored under key.
func (s *BadgerKV) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("badger get %s: %w", key, err)
	}
	return value, nil
}

// Put stores value under key, replacing any previous value.
func (s *BadgerKV) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	}); err != nil {
		return fmt.Errorf("badger put %s: %w", key, err)
	}
	return nil
}

// Close gracefully closes the database.
func (s *BadgerKV) Close() error {
	if s.logger != nil {
		s.logger.Info("closing badger database")
	}
	return s.db.Close()
}
