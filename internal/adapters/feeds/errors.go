package feeds

import (
	"errors"
	"fmt"
)

// Sentinel kinds for feed errors.
var (
	ErrUpstreamStatus = errors.New("upstream returned a non-200 status")
	ErrDecode         = errors.New("upstream body is not valid JSON")
	ErrNoAPIKey       = errors.New("odds api key is not configured")
)

// StatusError carries the HTTP status of a rejected upstream request.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v: %s returned %d", ErrUpstreamStatus, e.URL, e.Code)
}

// Unwrap makes errors.Is(err, ErrUpstreamStatus) hold.
func (e *StatusError) Unwrap() error { return ErrUpstreamStatus }
