package sqlite

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagetrail/pagetrail-server/internal/store"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(dbPath, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, dbPath
}

func TestOpen_WALMode(t *testing.T) {
	s, _ := newTestStore(t)

	var journalMode string
	require.NoError(t, s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)
}

func TestGet_Missing(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Get(context.Background(), "books")
	assert.ErrorIs(t, err, store.ErrKeyNotFound)
}

func TestPut_Upsert(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "books", []byte(`[]`)))
	require.NoError(t, s.Put(ctx, "books", []byte(`[{"id":"b1"}]`)))

	got, err := s.Get(ctx, "books")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"b1"}]`, string(got))

	var rows int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM kv").Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestReopen_KeepsData(t *testing.T) {
	s, path := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "coverCache", []byte(`{"a|||b":null}`)))
	require.NoError(t, s.Close())

	reopened, err := Open(path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "coverCache")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a|||b":null}`, string(got))
}

func TestRepository_OverSQLite(t *testing.T) {
	s, _ := newTestStore(t)
	repo := store.NewRepository(s, nil)
	ctx := context.Background()

	url := "https://covers.example/1.jpg"
	require.NoError(t, repo.SaveCoverCache(ctx, store.CoverCache{"Dune|||Herbert": &url, "X|||Y": nil}))

	cache := repo.LoadCoverCache(ctx)
	require.Len(t, cache, 2)
	assert.Equal(t, url, *cache["Dune|||Herbert"])
	assert.Nil(t, cache["X|||Y"])
}
