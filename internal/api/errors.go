package api

import (
	"fmt"
)

// HTTPError is any failed exchange with the API: a transport failure
// (no status) or a non-2xx response (status and raw body).
type HTTPError struct {
	StatusCode int    // 0 when no response arrived
	Body       []byte // raw response body, nil when absent
	Err        error  // transport error, nil for non-2xx responses
}

func (e *HTTPError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("api returned status %d: %s", e.StatusCode, truncate(e.Body, 200))
	case e.Err != nil:
		return fmt.Sprintf("api request failed: %v", e.Err)
	default:
		return "api request failed"
	}
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// HasResponse reports whether the server answered at all
func (e *HTTPError) HasResponse() bool {
	return e.StatusCode != 0
}

// RequestBuildError means the request could not be serialized
type RequestBuildError struct {
	Err error
}

func (e *RequestBuildError) Error() string {
	return fmt.Sprintf("failed to build request: %v", e.Err)
}

func (e *RequestBuildError) Unwrap() error {
	return e.Err
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
