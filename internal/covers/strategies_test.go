package covers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagetrail/pagetrail-server/internal/metadata/googlebooks"
	"github.com/pagetrail/pagetrail-server/internal/metadata/openlibrary"
	"github.com/pagetrail/pagetrail-server/internal/ratelimit"
	"github.com/pagetrail/pagetrail-server/internal/store"
)

func TestDefaultStrategies_FallsBackToTitleOnly(t *testing.T) {
	olServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("author") {
			_, _ = w.Write([]byte(`{"docs":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"docs":[{"cover_i":42}]}`))
	}))
	defer olServer.Close()

	var googleCalls atomic.Int32
	gbServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		googleCalls.Add(1)
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer gbServer.Close()

	limiter := ratelimit.New(1000, 1000)
	defer limiter.Stop()

	ol := openlibrary.New(openlibrary.Options{BaseURL: olServer.URL, CoversURL: "https://covers.test", Limiter: limiter})
	gb := googlebooks.New(googlebooks.Options{BaseURL: gbServer.URL, Limiter: limiter})

	strategies := DefaultStrategies(ol, gb)
	require.Len(t, strategies, 3)
	assert.Equal(t, StrategyOpenLibraryTitleAuthor, strategies[0].Name)
	assert.Equal(t, StrategyOpenLibraryTitle, strategies[1].Name)
	assert.Equal(t, StrategyGoogleBooks, strategies[2].Name)

	ctx := context.Background()
	r := NewResolver(ctx, newRepo(), strategies, nil, nil)
	got, found := r.Resolve(ctx, "Dune", "Frank Herbert")

	assert.True(t, found)
	assert.Equal(t, "https://covers.test/b/id/42-M.jpg", got)
	assert.Zero(t, googleCalls.Load())
}

func TestDefaultStrategies_GoogleBooksLast(t *testing.T) {
	olServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer olServer.Close()

	gbServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"items":[{"volumeInfo":{"imageLinks":{"thumbnail":"http://books.test/t.jpg"}}}]}`))
	}))
	defer gbServer.Close()

	limiter := ratelimit.New(1000, 1000)
	defer limiter.Stop()

	strategies := DefaultStrategies(
		openlibrary.New(openlibrary.Options{BaseURL: olServer.URL, Limiter: limiter}),
		googlebooks.New(googlebooks.Options{BaseURL: gbServer.URL, Limiter: limiter}),
	)

	ctx := context.Background()
	got, found := NewResolver(ctx, newRepo(), strategies, nil, nil).Resolve(ctx, "Dune", "Frank Herbert")

	assert.True(t, found)
	assert.Equal(t, "https://books.test/t.jpg", got)
}

func TestDefaultStrategies_ThrottledLookupIsNotCached(t *testing.T) {
	var hits atomic.Int32
	olServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"docs":[{"cover_i":7}]}`))
	}))
	defer olServer.Close()
	gbServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"items":[{"volumeInfo":{"imageLinks":{"thumbnail":"https://books.test/t.jpg"}}}]}`))
	}))
	defer gbServer.Close()

	// The next token is further away than the chain deadline, so every
	// wait fails before a request is sent.
	exhausted := ratelimit.New(0.001, 1)
	defer exhausted.Stop()
	exhausted.Allow("openlibrary")
	exhausted.Allow("googlebooks")

	ctx := context.Background()
	kv := store.NewMemoryKV()
	r := NewResolver(ctx, store.NewRepository(kv, nil), DefaultStrategies(
		openlibrary.New(openlibrary.Options{BaseURL: olServer.URL, CoversURL: "https://covers.test", Limiter: exhausted}),
		googlebooks.New(googlebooks.Options{BaseURL: gbServer.URL, Limiter: exhausted}),
	), nil, nil)

	_, found := r.Resolve(ctx, "Dune", "Frank Herbert")
	assert.False(t, found)
	assert.Zero(t, hits.Load())
	assert.Zero(t, r.Len())
	_, err := kv.Get(ctx, store.KeyCoverCache)
	assert.ErrorIs(t, err, store.ErrKeyNotFound)

	// Once the providers are reachable the same pair resolves.
	fresh := ratelimit.New(1000, 1000)
	defer fresh.Stop()
	retry := NewResolver(ctx, store.NewRepository(kv, nil), DefaultStrategies(
		openlibrary.New(openlibrary.Options{BaseURL: olServer.URL, CoversURL: "https://covers.test", Limiter: fresh}),
		googlebooks.New(googlebooks.Options{BaseURL: gbServer.URL, Limiter: fresh}),
	), nil, nil)

	got, found := retry.Resolve(ctx, "Dune", "Frank Herbert")
	assert.True(t, found)
	assert.Equal(t, "https://covers.test/b/id/7-M.jpg", got)
	assert.EqualValues(t, 1, hits.Load())
}

func TestDefaultStrategies_NilClients(t *testing.T) {
	assert.Empty(t, DefaultStrategies(nil, nil))
}
