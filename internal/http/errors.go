package http

import (
	"errors"
	"fmt"
)

// TransportError is returned when a call never produced a response:
// timeouts, refused connections, DNS failures and broken bodies.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error calling %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UnexpectedStatusError is returned when the target answered outside 2xx.
type UnexpectedStatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d calling %s", e.StatusCode, e.URL)
}

// IsTransportError reports whether err wraps a *TransportError
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// StatusCode returns the status carried by an *UnexpectedStatusError in
// err's chain, or 0.
func StatusCode(err error) int {
	var se *UnexpectedStatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}
