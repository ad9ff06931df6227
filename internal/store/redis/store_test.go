package redis

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagetrail/pagetrail-server/internal/id"
	"github.com/pagetrail/pagetrail-server/internal/store"
)

// newTestStore connects to PAGETRAIL_TEST_REDIS_ADDR and namespaces keys per
// test run. Tests are skipped when no server is configured.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	addr := os.Getenv("PAGETRAIL_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("PAGETRAIL_TEST_REDIS_ADDR not set")
	}

	s, err := Open(context.Background(), Options{Addr: addr, Prefix: id.MustGenerate("test") + ":"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx := context.Background()
		s.client.Del(ctx, s.prefix+store.KeyBooks, s.prefix+store.KeyCoverCache)
		s.Close()
	})
	return s
}

func TestGet_Missing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), store.KeyBooks)
	assert.ErrorIs(t, err, store.ErrKeyNotFound)
}

func TestPutGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, store.KeyBooks, []byte(`[{"id":"b1"}]`)))

	got, err := s.Get(ctx, store.KeyBooks)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"b1"}]`, string(got))
}

func TestOpen_Unreachable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Open(ctx, Options{Addr: "127.0.0.1:1"}, nil)
	assert.Error(t, err)
}
