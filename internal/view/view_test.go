package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagetrail/pagetrail-server/internal/domain"
)

func ids(books []domain.Book) []string {
	out := make([]string, len(books))
	for i := range books {
		out[i] = books[i].ID
	}
	return out
}

func sampleBooks() []domain.Book {
	return []domain.Book{
		{ID: "b1", Title: "Dune", Author: "Frank Herbert", Genre: "science-fiction", Format: domain.FormatPaperback, Status: domain.StatusFinished, Rating: domain.IntPtr(5), Favorite: true, YearPublished: domain.IntPtr(1965), DateAdded: "2024-01-01T00:00:00Z"},
		{ID: "b2", Title: "emma", Author: "Jane Austen", Genre: "classics", Format: domain.FormatEbook, Status: domain.StatusReading, DateAdded: "2024-03-01T00:00:00Z"},
		{ID: "b3", Title: "Anathem", Author: "Neal Stephenson", Genre: "science-fiction", Status: domain.StatusWishlist, Rating: domain.IntPtr(3), YearPublished: domain.IntPtr(2008), DateAdded: "2024-02-01T00:00:00Z"},
		{ID: "b4", Title: "Beloved", Author: "Toni Morrison", Genre: "fiction", Format: domain.FormatHardcover, Status: domain.StatusFinished, Rating: domain.IntPtr(4), DateAdded: "2023-12-01T00:00:00Z"},
		{ID: "b5", Title: "Circe", Author: "Madeline Miller", Genre: "fantasy", Status: domain.StatusOnHold, Rating: domain.IntPtr(3), YearPublished: domain.IntPtr(2018)},
		{ID: "b6", Title: "Piranesi", Author: "Susanna Clarke", Genre: "fantasy", Status: domain.StatusUpNext, DateAdded: "2024-04-01T00:00:00Z"},
	}
}

func TestClassify_TopPickScenario(t *testing.T) {
	books := []domain.Book{
		{ID: "b1", Title: "A", Author: "X", Status: domain.StatusFinished, Favorite: true},
		{ID: "b2", Title: "B", Author: "Y", Status: domain.StatusFinished, Favorite: false},
	}

	sections := Bucketize(books)

	byBucket := map[Bucket][]string{}
	for _, s := range sections {
		byBucket[s.Bucket] = ids(s.Books)
	}
	assert.Equal(t, []string{"b1"}, byBucket[BucketTopPicks])
	assert.Equal(t, []string{"b2"}, byBucket[BucketFinished])
}

func TestBucketize_Exclusive(t *testing.T) {
	books := sampleBooks()
	sections := Bucketize(books)

	require.Len(t, sections, 6)
	for i, s := range sections {
		assert.Equal(t, BucketOrder[i], s.Bucket)
		assert.NotNil(t, s.Books)
	}

	seen := map[string]int{}
	for _, s := range sections {
		for _, b := range s.Books {
			seen[b.ID]++
		}
	}
	assert.Len(t, seen, len(books))
	for id, n := range seen {
		assert.Equal(t, 1, n, "book %s appears in %d buckets", id, n)
	}
}

func TestBucketize_Empty(t *testing.T) {
	sections := Bucketize(nil)
	require.Len(t, sections, 6)
	for _, s := range sections {
		assert.Empty(t, s.Books)
	}
}

func TestClassify_UnknownStatusFallsToWishlist(t *testing.T) {
	assert.Equal(t, BucketWishlist, Classify(&domain.Book{Status: "abandoned"}))
}

func TestFilter_NonexistentGenreYieldsEmpty(t *testing.T) {
	got := Apply(sampleBooks(), Filter{Genre: "cookbooks"}, DefaultSort)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestFilter_Search(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"dune", []string{"b1"}},
		{"AUSTEN", []string{"b2"}},
		{"an", []string{"b1", "b2", "b3", "b6"}}, // Frank, Jane, Anathem, Piranesi
		{"zzz", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := FilterBooks(sampleBooks(), Filter{Search: tt.query})
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilter_RatingNone(t *testing.T) {
	books := []domain.Book{
		{ID: "r", Rating: domain.IntPtr(4)},
		{ID: "u1"},
		{ID: "u2"},
	}

	assert.Equal(t, []string{"u1", "u2"}, ids(FilterBooks(books, Filter{Rating: RatingNone})))
	assert.Equal(t, []string{"r"}, ids(FilterBooks(books, Filter{Rating: "4"})))
	assert.Empty(t, FilterBooks(books, Filter{Rating: "5"}))
}

func TestFilter_CombinedCriteria(t *testing.T) {
	f := Filter{Genre: "science-fiction", Status: domain.StatusFinished, Format: domain.FormatPaperback, Rating: "5"}
	assert.Equal(t, []string{"b1"}, ids(FilterBooks(sampleBooks(), f)))

	f.Format = domain.FormatEbook
	assert.Empty(t, FilterBooks(sampleBooks(), f))
}

func TestFilter_Validate(t *testing.T) {
	for _, ok := range []string{"", "none", "1", "5"} {
		assert.NoError(t, Filter{Rating: ok}.Validate(), ok)
	}
	for _, bad := range []string{"0", "6", "five", "none "} {
		assert.Error(t, Filter{Rating: bad}.Validate(), bad)
	}
}

func TestSort_RatingDescendingNullsLastStable(t *testing.T) {
	books := []domain.Book{
		{ID: "u1"},
		{ID: "r3a", Rating: domain.IntPtr(3)},
		{ID: "r5", Rating: domain.IntPtr(5)},
		{ID: "u2"},
		{ID: "r3b", Rating: domain.IntPtr(3)},
		{ID: "r1", Rating: domain.IntPtr(1)},
	}

	got := Apply(books, Filter{}, SortRating)

	assert.Equal(t, []string{"r5", "r3a", "r3b", "r1", "u1", "u2"}, ids(got))
	assert.Equal(t, "u1", books[0].ID, "input must not be reordered")
}

func TestSort_TitleCaseInsensitive(t *testing.T) {
	got := Apply(sampleBooks(), Filter{}, SortTitle)
	assert.Equal(t, []string{"b3", "b4", "b5", "b1", "b2", "b6"}, ids(got))
}

func TestSort_Author(t *testing.T) {
	got := Apply(sampleBooks(), Filter{}, SortAuthor)
	assert.Equal(t, []string{"b1", "b2", "b5", "b3", "b6", "b4"}, ids(got))
}

func TestSort_YearDescendingMissingLast(t *testing.T) {
	got := Apply(sampleBooks(), Filter{}, SortYear)
	assert.Equal(t, []string{"b5", "b3", "b1", "b2", "b4", "b6"}, ids(got))
}

func TestSort_DateAddedIsDefault(t *testing.T) {
	got := Apply(sampleBooks(), Filter{}, DefaultSort)
	assert.Equal(t, []string{"b6", "b2", "b3", "b1", "b4", "b5"}, ids(got))
}

func TestParseSortKey(t *testing.T) {
	k, err := ParseSortKey("")
	require.NoError(t, err)
	assert.Equal(t, SortDateAdded, k)

	k, err = ParseSortKey("yearPublished")
	require.NoError(t, err)
	assert.Equal(t, SortYear, k)

	_, err = ParseSortKey("pages")
	assert.Error(t, err)
}

func TestCount(t *testing.T) {
	c := Count(sampleBooks())

	assert.Equal(t, 6, c.Total)
	assert.Equal(t, 2, c.ByStatus[domain.StatusFinished])
	assert.Equal(t, 1, c.ByBucket[BucketTopPicks])
	assert.Equal(t, 1, c.ByBucket[BucketFinished])
	assert.Equal(t, 0, Count(nil).ByBucket[BucketReading])
}
