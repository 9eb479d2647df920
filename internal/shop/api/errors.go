package api

import (
	"encoding/json"
	"fmt"
)

// NetworkError means no response arrived at all: DNS, refused connection,
// timeout. Distinct from HTTPError so callers can decide retry vs surface.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "network error: " + e.Err.Error() }
func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx response; Body keeps the raw payload for callers
// that want the server's message.
type HTTPError struct {
	Status int
	Body   []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http error: status=%d", e.Status)
}

// Message extracts the server's error envelope message, falling back to
// the status line when the body is not the expected JSON shape.
func (e *HTTPError) Message() string {
	var env struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(e.Body, &env); err == nil && env.Error != "" {
		return env.Error
	}
	return e.Error()
}
