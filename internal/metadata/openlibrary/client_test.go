package openlibrary

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagetrail/pagetrail-server/internal/ratelimit"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	limiter := ratelimit.New(1000, 1000)
	t.Cleanup(limiter.Stop)

	return New(Options{
		BaseURL:    server.URL,
		CoversURL:  "https://covers.test",
		HTTPClient: server.Client(),
		Limiter:    limiter,
	})
}

func TestSearchCover(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantURL string
		wantErr error
	}{
		{
			name:    "first doc with cover",
			status:  http.StatusOK,
			body:    `{"numFound":2,"docs":[{"title":"Dune","cover_i":12345},{"cover_i":999}]}`,
			wantURL: "https://covers.test/b/id/12345-M.jpg",
		},
		{
			name:    "no docs",
			status:  http.StatusOK,
			body:    `{"numFound":0,"docs":[]}`,
			wantErr: ErrNoCover,
		},
		{
			name:    "first doc without cover",
			status:  http.StatusOK,
			body:    `{"numFound":1,"docs":[{"title":"Dune"}]}`,
			wantErr: ErrNoCover,
		},
		{
			name:    "rate limited",
			status:  http.StatusTooManyRequests,
			wantErr: ErrRateLimited,
		},
		{
			name:    "server error",
			status:  http.StatusBadGateway,
			wantErr: ErrServer,
		},
		{
			name:    "not found status",
			status:  http.StatusNotFound,
			wantErr: ErrBadStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			got, err := client.SearchCover(context.Background(), "Dune", "Frank Herbert")
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				var opErr *Error
				assert.True(t, errors.As(err, &opErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, got)
		})
	}
}

func TestSearch_QueryParameters(t *testing.T) {
	var gotQuery atomic.Value
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.json", r.URL.Path)
		gotQuery.Store(r.URL.Query())
		_, _ = w.Write([]byte(`{"docs":[]}`))
	})

	_, err := client.Search(context.Background(), Query{Title: "The Hobbit", Author: "J.R.R. Tolkien"})
	require.NoError(t, err)

	q := gotQuery.Load().(url.Values)
	assert.Equal(t, []string{"The Hobbit"}, q["title"])
	assert.Equal(t, []string{"J.R.R. Tolkien"}, q["author"])
	assert.Equal(t, []string{"1"}, q["limit"])
}

func TestSearch_TitleOnlyOmitsAuthor(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("author"))
		_, _ = w.Write([]byte(`{"docs":[{"title":"Dune","first_publish_year":1965,"number_of_pages_median":612}]}`))
	})

	docs, err := client.Search(context.Background(), Query{Title: "Dune", Limit: 5})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, 1965, docs[0].FirstPublishYear)
	assert.Equal(t, 612, docs[0].PagesMedian)
}

func TestSearch_MalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	})

	_, err := client.Search(context.Background(), Query{Title: "Dune"})
	assert.ErrorContains(t, err, "parse response")
}

func TestSearch_CanceledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("request should not be sent")
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Search(ctx, Query{Title: "Dune"})
	assert.Error(t, err)
}

func TestNew_Defaults(t *testing.T) {
	c := New(Options{})
	defer c.Close()

	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, "https://covers.openlibrary.org/b/id/7-L.jpg", c.CoverURL(7, "L"))
}
