package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrAuthentication marks a rejected login. It always wraps the
// underlying *StatusError.
var ErrAuthentication = errors.New("authentication failed")

// NetworkError is a transport-level failure: the request never produced
// an HTTP response.
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// StatusError is a non-2xx response, carrying the status code and the
// raw body so callers can surface the server's message unchanged.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: http %d: %s", e.Endpoint, e.StatusCode, e.Message())
}

// Message extracts the human-readable message: the body's "message"
// field when the body is the backend's JSON error shape, the raw body
// otherwise.
func (e *StatusError) Message() string {
	var resp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(e.Body), &resp); err == nil && resp.Message != "" {
		return resp.Message
	}
	return strings.TrimSpace(e.Body)
}
