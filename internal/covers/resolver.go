// Package covers resolves a cover image URL for a title and author.
//
// Answers, including "no cover exists", are cached forever under
// "title|||author" and persisted, so each pair costs at most one remote
// strategy chain over the lifetime of the store.
package covers

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/pagetrail/pagetrail-server/internal/metrics"
	"github.com/pagetrail/pagetrail-server/internal/ratelimit"
	"github.com/pagetrail/pagetrail-server/internal/store"
)

const (
	keySeparator = "|||"

	// chainTimeout bounds one remote chain. The chain runs detached from
	// the caller so a disconnecting client cannot cancel a shared lookup.
	chainTimeout = 30 * time.Second

	persistTimeout = 5 * time.Second

	batchConcurrency = 4
)

// ErrNoCover is what a strategy returns when the provider answered but had
// no image. Provider errors are treated the same way but logged louder.
// Local failures (a throttled wait or an ended chain context) leave the
// pair uncached.
var ErrNoCover = errors.New("no cover")

// LookupFunc asks one provider for a cover URL.
type LookupFunc func(ctx context.Context, title, author string) (string, error)

// Strategy is one named step of the remote chain.
type Strategy struct {
	Name   string
	Lookup LookupFunc
}

// CacheStore loads and saves the persistent cover cache.
type CacheStore interface {
	LoadCoverCache(ctx context.Context) store.CoverCache
	SaveCoverCache(ctx context.Context, cache store.CoverCache) error
}

// Request names one pair to resolve in a batch.
type Request struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

// Result is the outcome of resolving one pair.
type Result struct {
	URL   string `json:"url,omitempty"`
	Found bool   `json:"found"`
}

// Resolver is safe for concurrent use.
type Resolver struct {
	cacheStore CacheStore
	strategies []Strategy
	logger     *slog.Logger
	metrics    *metrics.Metrics

	mu    sync.RWMutex
	cache store.CoverCache

	persistMu sync.Mutex
	flights   singleflight.Group
}

// NewResolver loads the persisted cache and returns a resolver that tries
// strategies in order. With no strategies, misses are reported as not found
// and are not cached.
func NewResolver(ctx context.Context, cacheStore CacheStore, strategies []Strategy, logger *slog.Logger, m *metrics.Metrics) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &Resolver{
		cacheStore: cacheStore,
		strategies: strategies,
		logger:     logger,
		metrics:    m,
		cache:      cacheStore.LoadCoverCache(ctx),
	}
	logger.Debug("cover cache loaded", "entries", len(r.cache))
	return r
}

// Key builds the cache key for a pair.
func Key(title, author string) string {
	return title + keySeparator + author
}

// Resolve returns the cover URL for a pair. A cache hit, positive or
// negative, never touches the network.
func (r *Resolver) Resolve(ctx context.Context, title, author string) (string, bool) {
	key := Key(title, author)
	if url, found, ok := r.cached(key); ok {
		r.metrics.IncCoverLookup("hit")
		return url, found
	}

	v, _, shared := r.flights.Do(key, func() (any, error) {
		// A flight that finished between our cache check and Do already
		// stored the answer.
		if url, found, ok := r.cached(key); ok {
			return Result{URL: url, Found: found}, nil
		}
		if len(r.strategies) == 0 {
			return Result{}, nil
		}

		r.metrics.IncCoverLookup("miss")
		chainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), chainTimeout)
		defer cancel()

		res, settled := r.runChain(chainCtx, title, author)
		if !settled {
			r.metrics.IncCoverLookup("unsettled")
			return res, nil
		}
		r.remember(ctx, key, res)
		return res, nil
	})
	if shared {
		r.metrics.IncCoverLookup("coalesced")
	}

	res := v.(Result)
	return res.URL, res.Found
}

// ResolveMany resolves pairs concurrently. Results keep the input order.
func (r *Resolver) ResolveMany(ctx context.Context, reqs []Request) []Result {
	results := make([]Result, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)
	for i, req := range reqs {
		g.Go(func() error {
			url, found := r.Resolve(gctx, req.Title, req.Author)
			results[i] = Result{URL: url, Found: found}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Cached reports a cached answer without resolving. ok is false on a miss.
func (r *Resolver) Cached(title, author string) (url string, found, ok bool) {
	return r.cached(Key(title, author))
}

// Len returns the number of cached pairs, including negative entries.
func (r *Resolver) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}

func (r *Resolver) cached(key string) (url string, found, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.cache[key]
	if !ok {
		return "", false, false
	}
	if v == nil {
		return "", false, true
	}
	return *v, true, true
}

// runChain tries strategies in order. settled is false when a strategy
// failed without reaching its provider, so a miss is not a real answer.
func (r *Resolver) runChain(ctx context.Context, title, author string) (res Result, settled bool) {
	start := time.Now()
	defer func() { r.metrics.ObserveCoverChain(time.Since(start)) }()

	settled = true
	for _, s := range r.strategies {
		url, err := s.Lookup(ctx, title, author)
		switch {
		case err == nil && url != "":
			r.metrics.IncCoverStrategy(s.Name, "found")
			r.logger.Debug("cover found", "strategy", s.Name, "title", title, "author", author)
			return Result{URL: url, Found: true}, true
		case err == nil || errors.Is(err, ErrNoCover):
			r.metrics.IncCoverStrategy(s.Name, "none")
			r.logger.Debug("cover strategy had no result", "strategy", s.Name, "title", title)
		case isLocalFailure(ctx, err):
			settled = false
			r.metrics.IncCoverStrategy(s.Name, "skipped")
			r.logger.Warn("cover strategy skipped",
				"strategy", s.Name,
				"title", title,
				"author", author,
				"error", err,
			)
		default:
			r.metrics.IncCoverStrategy(s.Name, "error")
			r.logger.Warn("cover strategy failed",
				"strategy", s.Name,
				"title", title,
				"author", author,
				"error", err,
			)
		}
	}
	return Result{}, settled
}

func isLocalFailure(ctx context.Context, err error) bool {
	return errors.Is(err, ratelimit.ErrLimited) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		ctx.Err() != nil
}

// remember stores the answer in memory, then persists a snapshot.
// The in-memory answer stands even if persisting fails. The save gets its
// own deadline so a chain that used up its budget still persists.
func (r *Resolver) remember(ctx context.Context, key string, res Result) {
	var value *string
	if res.Found {
		url := res.URL
		value = &url
	}

	r.mu.Lock()
	r.cache[key] = value
	r.mu.Unlock()

	// Snapshot under persistMu so saves land in the order entries were added.
	r.persistMu.Lock()
	defer r.persistMu.Unlock()

	r.mu.RLock()
	snapshot := maps.Clone(r.cache)
	r.mu.RUnlock()

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if err := r.cacheStore.SaveCoverCache(saveCtx, snapshot); err != nil {
		r.metrics.IncPersistFailure(store.KeyCoverCache)
		r.logger.Error("failed to persist cover cache", "key", key, "error", err)
	}
}
