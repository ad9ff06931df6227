package covers

import (
	"context"
	"errors"

	"github.com/pagetrail/pagetrail-server/internal/metadata/googlebooks"
	"github.com/pagetrail/pagetrail-server/internal/metadata/openlibrary"
)

// Strategy names, also used as metric labels.
const (
	StrategyOpenLibraryTitleAuthor = "openlibrary-title-author"
	StrategyOpenLibraryTitle       = "openlibrary-title"
	StrategyGoogleBooks            = "googlebooks"
)

// DefaultStrategies returns the standard chain: Open Library by title and
// author, Open Library by title alone, then Google Books. Nil clients are
// skipped.
func DefaultStrategies(ol *openlibrary.Client, gb *googlebooks.Client) []Strategy {
	var out []Strategy
	if ol != nil {
		out = append(out,
			Strategy{Name: StrategyOpenLibraryTitleAuthor, Lookup: func(ctx context.Context, title, author string) (string, error) {
				return noCover(ol.SearchCover(ctx, title, author))
			}},
			Strategy{Name: StrategyOpenLibraryTitle, Lookup: func(ctx context.Context, title, _ string) (string, error) {
				return noCover(ol.SearchCover(ctx, title, ""))
			}},
		)
	}
	if gb != nil {
		out = append(out, Strategy{Name: StrategyGoogleBooks, Lookup: func(ctx context.Context, title, author string) (string, error) {
			return noCover(gb.SearchCover(ctx, title, author))
		}})
	}
	return out
}

// noCover maps provider-specific "no image" errors onto ErrNoCover.
func noCover(url string, err error) (string, error) {
	if errors.Is(err, openlibrary.ErrNoCover) || errors.Is(err, googlebooks.ErrNoCover) {
		return "", ErrNoCover
	}
	return url, err
}
