// Package redis provides a Redis-backed KV store so several processes can
// share one collection.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pagetrail/pagetrail-server/internal/store"
)

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	// Prefix namespaces every key, e.g. "pagetrail:".
	Prefix string
}

// Store is a store.KV over plain Redis strings.
type Store struct {
	client *goredis.Client
	prefix string
	logger *slog.Logger
}

var _ store.KV = (*Store)(nil)

// Open connects to Redis and verifies the connection with PING.
func Open(ctx context.Context, opts Options, logger *slog.Logger) (*Store, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		PoolSize:     4,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	if logger != nil {
		logger.Info("redis connected", "addr", opts.Addr, "db", opts.DB)
	}
	return New(client, opts.Prefix, logger), nil
}

// New wraps an existing client.
func New(client *goredis.Client, prefix string, logger *slog.Logger) *Store {
	return &Store{client: client, prefix: prefix, logger: logger}
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, store.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

// Put stores value under key without expiry.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Close closes the client connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}
