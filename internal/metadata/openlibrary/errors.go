package openlibrary

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for Open Library operations.
var (
	ErrNoCover     = errors.New("openlibrary: no cover")
	ErrRateLimited = errors.New("openlibrary: rate limited by server")
	ErrServer      = errors.New("openlibrary: server error")
	ErrBadStatus   = errors.New("openlibrary: unexpected status")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op    string // "search"
	Query string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("openlibrary %s [%s]: %v", e.Op, e.Query, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapError(op, query string, err error) error {
	return &Error{Op: op, Query: query, Err: err}
}

func statusError(code int) error {
	switch {
	case code == http.StatusTooManyRequests:
		return ErrRateLimited
	case code >= 500:
		return fmt.Errorf("%w: %d", ErrServer, code)
	default:
		return fmt.Errorf("%w: %d", ErrBadStatus, code)
	}
}
