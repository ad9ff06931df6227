package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/pagetrail/pagetrail-server/internal/domain"
	domainerrors "github.com/pagetrail/pagetrail-server/internal/errors"
)

// Record keys. Both records are whole-document JSON values.
const (
	KeyBooks      = "books"
	KeyCoverCache = "coverCache"
)

// CoverCache maps a "title|||author" key to a cover URL. A nil value is a
// remembered miss and must not be looked up again.
type CoverCache map[string]*string

// Repository reads and writes the collection and the cover cache.
//
// Reads never fail: a missing, unreadable, or malformed record loads as empty
// and is logged. Writes report failures as STORAGE domain errors.
type Repository struct {
	kv     KV
	logger *slog.Logger
}

// NewRepository wraps a KV backend.
func NewRepository(kv KV, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Repository{kv: kv, logger: logger}
}

// LoadBooks returns the stored collection, or an empty one.
func (r *Repository) LoadBooks(ctx context.Context) []domain.Book {
	var books []domain.Book
	if !r.load(ctx, KeyBooks, &books) || books == nil {
		return []domain.Book{}
	}
	for i := range books {
		if books[i].Tags == nil {
			books[i].Tags = []string{}
		}
	}
	return books
}

// SaveBooks replaces the stored collection.
func (r *Repository) SaveBooks(ctx context.Context, books []domain.Book) error {
	if books == nil {
		books = []domain.Book{}
	}
	return r.save(ctx, KeyBooks, books)
}

// LoadCoverCache returns the stored cover cache, or an empty one.
func (r *Repository) LoadCoverCache(ctx context.Context) CoverCache {
	var cache CoverCache
	if !r.load(ctx, KeyCoverCache, &cache) || cache == nil {
		return CoverCache{}
	}
	return cache
}

// SaveCoverCache replaces the stored cover cache.
func (r *Repository) SaveCoverCache(ctx context.Context, cache CoverCache) error {
	if cache == nil {
		cache = CoverCache{}
	}
	return r.save(ctx, KeyCoverCache, cache)
}

// Close closes the underlying backend.
func (r *Repository) Close() error {
	return r.kv.Close()
}

func (r *Repository) load(ctx context.Context, key string, dest any) bool {
	data, err := r.kv.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return false
	}
	if err != nil {
		r.logger.Warn("failed to read record, starting empty", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		r.logger.Warn("malformed record, starting empty", "key", key, "error", err)
		return false
	}
	return true
}

func (r *Repository) save(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return domainerrors.Wrapf(err, domainerrors.CodeInternal, "failed to encode %s", key)
	}
	if err := r.kv.Put(ctx, key, data); err != nil {
		return domainerrors.Storage(err, "failed to save "+key)
	}
	return nil
}
