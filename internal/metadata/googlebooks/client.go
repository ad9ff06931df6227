// Package googlebooks is a minimal client for the Google Books volumes API,
// used as the last cover lookup fallback.
package googlebooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pagetrail/pagetrail-server/internal/ratelimit"
)

// DefaultBaseURL is the public volumes API root.
const DefaultBaseURL = "https://www.googleapis.com/books/v1"

const (
	limiterKey     = "googlebooks"
	defaultTimeout = 10 * time.Second
)

// Sentinel errors.
var (
	ErrNoCover     = errors.New("googlebooks: no cover")
	ErrRateLimited = errors.New("googlebooks: rate limited by server")
	ErrBadStatus   = errors.New("googlebooks: unexpected status")
)

type volumesResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []Volume `json:"items"`
}

// Volume is one search hit.
type Volume struct {
	ID         string     `json:"id"`
	VolumeInfo VolumeInfo `json:"volumeInfo"`
}

// VolumeInfo holds the bibliographic fields we read.
type VolumeInfo struct {
	Title         string     `json:"title"`
	Authors       []string   `json:"authors"`
	PublishedDate string     `json:"publishedDate"`
	PageCount     int        `json:"pageCount"`
	ImageLinks    ImageLinks `json:"imageLinks"`
}

// ImageLinks lists cover renditions. Google often serves them over http.
type ImageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Limiter    *ratelimit.KeyedRateLimiter
	Logger     *slog.Logger
}

// Client is a rate-limited Google Books client.
type Client struct {
	http        *http.Client
	baseURL     string
	apiKey      string
	limiter     *ratelimit.KeyedRateLimiter
	ownsLimiter bool
	logger      *slog.Logger
}

// New creates a client. Zero options select the public endpoint.
func New(opts Options) *Client {
	c := &Client{
		http:    opts.HTTPClient,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		limiter: opts.Limiter,
		logger:  opts.Logger,
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: defaultTimeout}
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
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

// SearchVolumes runs an intitle/inauthor query.
func (c *Client) SearchVolumes(ctx context.Context, title, author string, maxResults int) ([]Volume, error) {
	if err := c.limiter.Wait(ctx, limiterKey); err != nil {
		return nil, fmt.Errorf("googlebooks: rate limit wait: %w", err)
	}

	q := "intitle:" + title
	if author != "" {
		q += " inauthor:" + author
	}
	params := url.Values{}
	params.Set("q", q)
	params.Set("maxResults", fmt.Sprint(max(maxResults, 1)))
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	c.logger.Debug("googlebooks search", "title", title, "author", author)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/volumes?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("googlebooks: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("googlebooks: search request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}

	var body volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("googlebooks: parse response: %w", err)
	}
	return body.Items, nil
}

// SearchCover returns the thumbnail of the first hit, upgraded to https.
func (c *Client) SearchCover(ctx context.Context, title, author string) (string, error) {
	items, err := c.SearchVolumes(ctx, title, author, 1)
	if err != nil {
		return "", err
	}
	if len(items) == 0 || items[0].VolumeInfo.ImageLinks.Thumbnail == "" {
		return "", ErrNoCover
	}
	return SecureURL(items[0].VolumeInfo.ImageLinks.Thumbnail), nil
}

// SecureURL rewrites an http:// URL to https://.
func SecureURL(u string) string {
	if rest, ok := strings.CutPrefix(u, "http://"); ok {
		return "https://" + rest
	}
	return u
}
