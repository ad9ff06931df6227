package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Params configures a query.
type Params struct {
	Query  string
	Limit  int
	Offset int
}

// Hit is one ranked match.
type Hit struct {
	ID     string  `json:"id"`
	Score  float64 `json:"score"`
	Title  string  `json:"title"`
	Author string  `json:"author"`
}

// Result is a page of ranked matches.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"tookMs"`
	Hits   []Hit  `json:"hits"`
}

// Search runs a ranked query. Title and author matches outrank tag and note
// matches; one-letter typos still match words of four or more letters.
func (s *Index) Search(ctx context.Context, p Params) (*Result, error) {
	text := strings.TrimSpace(p.Query)
	if text == "" {
		return &Result{Query: p.Query, Hits: []Hit{}}, nil
	}

	limit := p.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	limit = min(limit, maxLimit)

	req := bleve.NewSearchRequestOptions(buildQuery(text), limit, max(p.Offset, 0), false)
	req.Fields = []string{"title", "author"}

	s.mu.RLock()
	res, err := s.index.SearchInContext(ctx, req)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	out := &Result{
		Query:  p.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(res.Hits)),
	}
	for _, h := range res.Hits {
		hit := Hit{ID: h.ID, Score: h.Score}
		if v, ok := h.Fields["title"].(string); ok {
			hit.Title = v
		}
		if v, ok := h.Fields["author"].(string); ok {
			hit.Author = v
		}
		out.Hits = append(out.Hits, hit)
	}
	return out, nil
}

func buildQuery(text string) query.Query {
	boosted := func(field string, boost float64, fuzzy bool) query.Query {
		q := bleve.NewMatchQuery(text)
		q.SetField(field)
		q.SetBoost(boost)
		if fuzzy {
			q.SetFuzziness(1)
		}
		return q
	}

	prefix := bleve.NewPrefixQuery(strings.ToLower(text))
	prefix.SetField("author")

	tag := bleve.NewTermQuery(strings.ToLower(text))
	tag.SetField("tags")

	return bleve.NewDisjunctionQuery(
		boosted("title", 3, false),
		boosted("title", 1.5, true),
		boosted("author", 2, false),
		boosted("author", 1, true),
		boosted("notes", 0.5, false),
		prefix,
		tag,
	)
}
