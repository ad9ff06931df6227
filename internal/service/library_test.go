package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagetrail/pagetrail-server/internal/domain"
	domainerrors "github.com/pagetrail/pagetrail-server/internal/errors"
	"github.com/pagetrail/pagetrail-server/internal/search"
	"github.com/pagetrail/pagetrail-server/internal/sse"
	"github.com/pagetrail/pagetrail-server/internal/store"
)

type recordingEmitter struct {
	mu     sync.Mutex
	events []sse.Event
}

func (r *recordingEmitter) Emit(event any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event.(sse.Event))
}

func (r *recordingEmitter) types() []sse.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sse.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

// flakyStore wraps a repository and fails saves while broken is set.
type flakyStore struct {
	*store.Repository
	broken bool
}

func (f *flakyStore) SaveBooks(ctx context.Context, books []domain.Book) error {
	if f.broken {
		return domainerrors.Storage(errors.New("quota exceeded"), "failed to save books")
	}
	return f.Repository.SaveBooks(ctx, books)
}

type fixture struct {
	svc     *LibraryService
	repo    *store.Repository
	store   *flakyStore
	emitter *recordingEmitter
}

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newFixture(t *testing.T, seed ...domain.Book) *fixture {
	t.Helper()
	ctx := context.Background()

	repo := store.NewRepository(store.NewMemoryKV(), nil)
	if seed != nil {
		require.NoError(t, repo.SaveBooks(ctx, seed))
	}

	idx, err := search.NewIndex(nil)
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	fs := &flakyStore{Repository: repo}
	emitter := &recordingEmitter{}
	svc := NewLibraryService(ctx, fs, emitter, idx, nil, nil, nil)
	svc.now = func() time.Time { return fixedNow }

	return &fixture{svc: svc, repo: repo, store: fs, emitter: emitter}
}

func duneInput() BookInput {
	return BookInput{
		Title:  "Dune",
		Author: "Frank Herbert",
		Genre:  "Sci-Fi",
		Status: domain.StatusWishlist,
		Tags:   []string{" desert ", "classic", "desert"},
	}
}

func TestAdd_AssignsIDAndDateAndPersists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.svc.Add(ctx, duneInput())
	require.NoError(t, err)

	assert.Regexp(t, `^book-`, b.ID)
	assert.Equal(t, "2026-03-14T09:30:00Z", b.DateAdded)
	assert.Equal(t, "science-fiction", b.Genre)
	assert.Equal(t, []string{"desert", "classic"}, b.Tags)

	stored := f.repo.LoadBooks(ctx)
	require.Len(t, stored, 1)
	assert.Equal(t, b.ID, stored[0].ID)

	assert.Equal(t, []sse.EventType{sse.EventBookCreated, sse.EventLibraryChanged}, f.emitter.types())
}

func TestAdd_ValidationFailureChangesNothing(t *testing.T) {
	f := newFixture(t)

	in := duneInput()
	in.Title = "  "
	in.Status = "lost"
	_, err := f.svc.Add(context.Background(), in)

	require.ErrorIs(t, err, domainerrors.ErrValidation)
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Contains(t, domainErr.Details, "title")
	assert.Contains(t, domainErr.Details, "status")
	assert.Zero(t, f.svc.Count())
	assert.Empty(t, f.emitter.types())
}

func TestEdit_PreservesIDAndDateAdded(t *testing.T) {
	f := newFixture(t, domain.Book{
		ID:        "b1",
		Title:     "Dune",
		Author:    "Frank Herbert",
		Status:    domain.StatusReading,
		DateAdded: "2024-01-01T00:00:00Z",
		Tags:      []string{},
	})
	ctx := context.Background()

	in := duneInput()
	in.Title = "Dune Messiah"
	in.Status = domain.StatusFinished
	in.Rating = domain.IntPtr(4)

	b, err := f.svc.Edit(ctx, "b1", in)
	require.NoError(t, err)

	assert.Equal(t, "b1", b.ID)
	assert.Equal(t, "2024-01-01T00:00:00Z", b.DateAdded)
	assert.Equal(t, "Dune Messiah", b.Title)
	assert.Equal(t, 4, *b.Rating)

	got, err := f.svc.Get(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, b, got)
}

func TestEdit_UnknownID(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Edit(context.Background(), "missing", duneInput())
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestChangeStatus_OnlyStatusChanges(t *testing.T) {
	seed := domain.Book{ID: "b1", Title: "Dune", Author: "Frank Herbert", Status: domain.StatusReading, Rating: domain.IntPtr(3), Tags: []string{"x"}}
	f := newFixture(t, seed)

	b, err := f.svc.ChangeStatus(context.Background(), "b1", domain.StatusFinished)
	require.NoError(t, err)

	want := seed.Clone()
	want.Status = domain.StatusFinished
	assert.Equal(t, want, *b)
}

func TestChangeStatus_RejectsUnknownStatus(t *testing.T) {
	f := newFixture(t, domain.Book{ID: "b1", Title: "Dune", Author: "Frank Herbert", Status: domain.StatusReading})
	_, err := f.svc.ChangeStatus(context.Background(), "b1", "abandoned")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestToggleFavorite(t *testing.T) {
	f := newFixture(t, domain.Book{ID: "b1", Title: "Dune", Author: "Frank Herbert", Status: domain.StatusFinished})
	ctx := context.Background()

	b, err := f.svc.ToggleFavorite(ctx, "b1")
	require.NoError(t, err)
	assert.True(t, b.Favorite)
	assert.True(t, b.IsTopPick())

	b, err = f.svc.ToggleFavorite(ctx, "b1")
	require.NoError(t, err)
	assert.False(t, b.Favorite)
}

func TestDelete(t *testing.T) {
	f := newFixture(t,
		domain.Book{ID: "b1", Title: "Dune", Author: "Frank Herbert", Status: domain.StatusReading},
		domain.Book{ID: "b2", Title: "Emma", Author: "Jane Austen", Status: domain.StatusWishlist},
	)
	ctx := context.Background()

	require.NoError(t, f.svc.Delete(ctx, "b1"))
	assert.ErrorIs(t, f.svc.Delete(ctx, "b1"), domainerrors.ErrNotFound)

	stored := f.repo.LoadBooks(ctx)
	require.Len(t, stored, 1)
	assert.Equal(t, "b2", stored[0].ID)
	assert.Equal(t, []sse.EventType{sse.EventBookDeleted, sse.EventLibraryChanged}, f.emitter.types())
}

func TestMutation_StorageFailureStillAdvancesMemoryAndNotifies(t *testing.T) {
	f := newFixture(t)
	f.store.broken = true
	ctx := context.Background()

	b, err := f.svc.Add(ctx, duneInput())

	require.ErrorIs(t, err, domainerrors.ErrStorage)
	require.NotNil(t, b)
	assert.Equal(t, 1, f.svc.Count())
	assert.Equal(t, []sse.EventType{sse.EventBookCreated, sse.EventLibraryChanged}, f.emitter.types())
	assert.Empty(t, f.repo.LoadBooks(ctx))

	// The next successful write carries everything.
	f.store.broken = false
	_, err = f.svc.ToggleFavorite(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, f.repo.LoadBooks(ctx), 1)
}

func TestList_ReturnsCopies(t *testing.T) {
	f := newFixture(t, domain.Book{ID: "b1", Title: "Dune", Author: "Frank Herbert", Status: domain.StatusReading, Tags: []string{"a"}})
	ctx := context.Background()

	books := f.svc.List(ctx)
	books[0].Title = "changed"
	books[0].Tags[0] = "changed"

	got, err := f.svc.Get(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)
	assert.Equal(t, []string{"a"}, got.Tags)
}

func TestNewLibraryService_LoadsAndIndexes(t *testing.T) {
	f := newFixture(t,
		domain.Book{ID: "b1", Title: "Dune", Author: "Frank Herbert", Status: domain.StatusReading},
		domain.Book{ID: "b2", Title: "Emma", Author: "Jane Austen", Status: domain.StatusWishlist},
	)

	matches, err := f.svc.Search(context.Background(), "austen", 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "b2", matches[0].Book.ID)
}

func TestSearch_FollowsMutations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.svc.Add(ctx, duneInput())
	require.NoError(t, err)

	matches, err := f.svc.Search(ctx, "herbert", 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	require.NoError(t, f.svc.Delete(ctx, b.ID))
	matches, err = f.svc.Search(ctx, "herbert", 10)
	require.NoError(t, err)
	assert.Empty(t, matches)

	_, err = f.svc.Search(ctx, " ", 10)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestSearch_WithoutIndex(t *testing.T) {
	svc := NewLibraryService(context.Background(), store.NewRepository(store.NewMemoryKV(), nil), nil, nil, nil, nil, nil)
	_, err := svc.Search(context.Background(), "dune", 10)
	assert.ErrorIs(t, err, domainerrors.ErrUnavailable)
}
