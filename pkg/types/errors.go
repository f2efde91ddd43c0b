package types

import (
	"errors"
	"fmt"
	"net/http"
)

// Remote collection errors.
var (
	ErrNotFound         = errors.New("contact not found")
	ErrInvalidID        = errors.New("invalid contact ID")
	ErrInvalidSortOrder = errors.New("invalid sort order")
	ErrInvalidContact   = errors.New("invalid contact")
)

// TransportError reports a request that never produced a usable response:
// network failure, timeout, or a body that could not be decoded.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport failure: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServerError is a non-2xx response. Message carries the server's "message"
// field when the body had one.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server responded %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("server responded %d: %s", e.StatusCode, e.Message)
}

// Is lets errors.Is(err, ErrNotFound) match a 404 response.
func (e *ServerError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// MessageFor returns the user-facing message for err: the server's message
// when there is one, fallback otherwise.
func MessageFor(err error, fallback string) string {
	var se *ServerError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return fallback
}
