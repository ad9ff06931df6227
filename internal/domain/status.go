package domain

import "fmt"

// Status is the reading state of a book.
type Status string

// Reading states.
const (
	StatusWishlist Status = "wishlist"
	StatusUpNext   Status = "up-next"
	StatusReading  Status = "reading"
	StatusOnHold   Status = "on-hold"
	StatusFinished Status = "finished"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusWishlist, StatusUpNext, StatusReading, StatusOnHold, StatusFinished}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusWishlist, StatusUpNext, StatusReading, StatusOnHold, StatusFinished:
		return true
	}
	return false
}

// ParseStatus validates a raw status string.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q", raw)
	}
	return s, nil
}

// Format is the physical or digital edition of a book.
type Format string

// Editions.
const (
	FormatHardcover Format = "hardcover"
	FormatPaperback Format = "paperback"
	FormatEbook     Format = "ebook"
	FormatAudiobook Format = "audiobook"
)

// Formats lists every format.
var Formats = []Format{FormatHardcover, FormatPaperback, FormatEbook, FormatAudiobook}

// Valid reports whether f is empty or a known format.
func (f Format) Valid() bool {
	switch f {
	case "", FormatHardcover, FormatPaperback, FormatEbook, FormatAudiobook:
		return true
	}
	return false
}
