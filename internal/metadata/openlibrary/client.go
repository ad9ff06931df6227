// Package openlibrary is a small client for the Open Library search API and
// its cover image service.
package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pagetrail/pagetrail-server/internal/ratelimit"
)

const (
	// DefaultBaseURL is the public search host.
	DefaultBaseURL = "https://openlibrary.org"
	// DefaultCoversURL is the public cover image host.
	DefaultCoversURL = "https://covers.openlibrary.org"

	limiterKey     = "openlibrary"
	defaultTimeout = 10 * time.Second
	searchFields   = "key,title,author_name,first_publish_year,number_of_pages_median,cover_i,isbn"
)

// Options configures a Client. Zero values select the public endpoints,
// a private limiter of 1 rps, and a 10s timeout.
type Options struct {
	BaseURL    string
	CoversURL  string
	HTTPClient *http.Client
	Limiter    *ratelimit.KeyedRateLimiter
	Logger     *slog.Logger
}

// Client is a rate-limited Open Library client.
type Client struct {
	http        *http.Client
	baseURL     string
	coversURL   string
	limiter     *ratelimit.KeyedRateLimiter
	ownsLimiter bool
	logger      *slog.Logger
}

// New creates a client.
func New(opts Options) *Client {
	c := &Client{
		http:      opts.HTTPClient,
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		coversURL: strings.TrimRight(opts.CoversURL, "/"),
		limiter:   opts.Limiter,
		logger:    opts.Logger,
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: defaultTimeout}
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.coversURL == "" {
		c.coversURL = DefaultCoversURL
	}
	if c.limiter == nil {
		c.limiter = ratelimit.New(1, 2)
		c.ownsLimiter = true
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// Close releases the limiter when the client created it.
func (c *Client) Close() {
	if c.ownsLimiter {
		c.limiter.Stop()
	}
}

// Search returns matching works, best match first.
func (c *Client) Search(ctx context.Context, q Query) ([]Doc, error) {
	if err := c.limiter.Wait(ctx, limiterKey); err != nil {
		return nil, wrapError("search", q.String(), fmt.Errorf("rate limit wait: %w", err))
	}

	params := url.Values{}
	params.Set("title", q.Title)
	if q.Author != "" {
		params.Set("author", q.Author)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 1
	}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("fields", searchFields)

	searchURL := c.baseURL + "/search.json?" + params.Encode()
	c.logger.Debug("openlibrary search", "title", q.Title, "author", q.Author)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, wrapError("search", q.String(), fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, wrapError("search", q.String(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, wrapError("search", q.String(), statusError(resp.StatusCode))
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, wrapError("search", q.String(), fmt.Errorf("parse response: %w", err))
	}
	return body.Docs, nil
}

// SearchCover returns the medium cover URL of the first search hit.
// It returns ErrNoCover when the first hit has no cover or nothing matched.
func (c *Client) SearchCover(ctx context.Context, title, author string) (string, error) {
	docs, err := c.Search(ctx, Query{Title: title, Author: author, Limit: 1})
	if err != nil {
		return "", err
	}
	if len(docs) == 0 || docs[0].CoverID == 0 {
		return "", wrapError("search", Query{Title: title, Author: author}.String(), ErrNoCover)
	}
	return c.CoverURL(docs[0].CoverID, "M"), nil
}

// CoverURL builds the image URL for a cover id. size is S, M, or L.
func (c *Client) CoverURL(coverID int, size string) string {
	return fmt.Sprintf("%s/b/id/%d-%s.jpg", c.coversURL, coverID, size)
}
