package store

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by KV.Get when the key has never been written.
var ErrKeyNotFound = errors.New("key not found")

// KV is the byte-oriented key-value storage every backend implements.
// Values are opaque; the Repository owns their encoding.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}
