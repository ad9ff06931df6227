package view

import "github.com/pagetrail/pagetrail-server/internal/domain"

// Bucket is one of the six mutually exclusive shelf sections.
type Bucket string

// Buckets in display order.
const (
	BucketTopPicks Bucket = "top-picks"
	BucketReading  Bucket = "reading"
	BucketUpNext   Bucket = "up-next"
	BucketWishlist Bucket = "wishlist"
	BucketOnHold   Bucket = "on-hold"
	BucketFinished Bucket = "finished"
)

// BucketOrder lists buckets in display order.
var BucketOrder = []Bucket{BucketTopPicks, BucketReading, BucketUpNext, BucketWishlist, BucketOnHold, BucketFinished}

// Classify returns the single bucket a book belongs to. Finished favorites
// are top picks and never appear under finished.
func Classify(b *domain.Book) Bucket {
	switch b.Status {
	case domain.StatusFinished:
		if b.Favorite {
			return BucketTopPicks
		}
		return BucketFinished
	case domain.StatusReading:
		return BucketReading
	case domain.StatusUpNext:
		return BucketUpNext
	case domain.StatusOnHold:
		return BucketOnHold
	default:
		// wishlist, and any unknown status from an imported file
		return BucketWishlist
	}
}

// Section is one bucket and its books.
type Section struct {
	Bucket Bucket        `json:"bucket"`
	Books  []domain.Book `json:"books"`
}

// Bucketize splits books into the six sections, always returning all six in
// display order. Books keep their relative input order within a section.
func Bucketize(books []domain.Book) []Section {
	index := make(map[Bucket]int, len(BucketOrder))
	sections := make([]Section, len(BucketOrder))
	for i, b := range BucketOrder {
		index[b] = i
		sections[i] = Section{Bucket: b, Books: []domain.Book{}}
	}
	for i := range books {
		s := &sections[index[Classify(&books[i])]]
		s.Books = append(s.Books, books[i])
	}
	return sections
}

// Counts tallies books per status and per bucket.
type Counts struct {
	Total    int                   `json:"total"`
	ByStatus map[domain.Status]int `json:"byStatus"`
	ByBucket map[Bucket]int        `json:"byBucket"`
}

// Count tallies books.
func Count(books []domain.Book) Counts {
	c := Counts{
		Total:    len(books),
		ByStatus: make(map[domain.Status]int, len(domain.Statuses)),
		ByBucket: make(map[Bucket]int, len(BucketOrder)),
	}
	for _, s := range domain.Statuses {
		c.ByStatus[s] = 0
	}
	for _, b := range BucketOrder {
		c.ByBucket[b] = 0
	}
	for i := range books {
		c.ByStatus[books[i].Status]++
		c.ByBucket[Classify(&books[i])]++
	}
	return c
}
