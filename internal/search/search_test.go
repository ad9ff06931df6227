package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagetrail/pagetrail-server/internal/domain"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewIndex(nil)
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	books := []domain.Book{
		{ID: "b1", Title: "Dune", Author: "Frank Herbert", Tags: []string{"desert", "classic"}, Status: domain.StatusFinished},
		{ID: "b2", Title: "The Left Hand of Darkness", Author: "Ursula K. Le Guin", Tags: []string{}, Status: domain.StatusReading},
		{ID: "b3", Title: "Children of Dune", Author: "Frank Herbert", Tags: []string{}, Notes: "Leto's arc", Status: domain.StatusWishlist},
	}
	require.NoError(t, idx.Replace(context.Background(), books))
	return idx
}

func hitIDs(r *Result) []string {
	out := make([]string, len(r.Hits))
	for i, h := range r.Hits {
		out[i] = h.ID
	}
	return out
}

func TestSearch_TitleMatch(t *testing.T) {
	idx := newTestIndex(t)

	res, err := idx.Search(context.Background(), Params{Query: "dune"})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"b1", "b3"}, hitIDs(res))
	assert.Equal(t, uint64(2), res.Total)
}

func TestSearch_FuzzyAuthor(t *testing.T) {
	idx := newTestIndex(t)

	res, err := idx.Search(context.Background(), Params{Query: "herbret"})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"b1", "b3"}, hitIDs(res))
}

func TestSearch_Tag(t *testing.T) {
	idx := newTestIndex(t)

	res, err := idx.Search(context.Background(), Params{Query: "desert"})
	require.NoError(t, err)

	assert.Equal(t, []string{"b1"}, hitIDs(res))
}

func TestSearch_StoredFields(t *testing.T) {
	idx := newTestIndex(t)

	res, err := idx.Search(context.Background(), Params{Query: "darkness"})
	require.NoError(t, err)
	require.Len(t, res.Hits, 1)

	assert.Equal(t, "The Left Hand of Darkness", res.Hits[0].Title)
	assert.Equal(t, "Ursula K. Le Guin", res.Hits[0].Author)
}

func TestSearch_EmptyQuery(t *testing.T) {
	idx := newTestIndex(t)

	res, err := idx.Search(context.Background(), Params{Query: "   "})
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
}

func TestIndexAndDeleteBook(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.IndexBook(ctx, &domain.Book{ID: "b4", Title: "Hyperion", Author: "Dan Simmons"}))
	res, err := idx.Search(ctx, Params{Query: "hyperion"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b4"}, hitIDs(res))

	require.NoError(t, idx.DeleteBook(ctx, "b4"))
	res, err = idx.Search(ctx, Params{Query: "hyperion"})
	require.NoError(t, err)
	assert.Empty(t, res.Hits)

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestReplace_DropsRemovedBooks(t *testing.T) {
	idx := newTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Replace(ctx, []domain.Book{{ID: "only", Title: "Solaris", Author: "Stanislaw Lem"}}))

	count, err := idx.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	res, err := idx.Search(ctx, Params{Query: "dune"})
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
}
