package integrations

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned for a 404 response.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for transport failures (timeouts, refused
	// connections, truncated bodies).
	ErrNetwork = errors.New("network error")

	// ErrStatus matches every non-2xx response, 404 included.
	ErrStatus = errors.New("unexpected status")

	// ErrDecode is returned when a response body is not the expected JSON.
	ErrDecode = errors.New("decode response")
)

// StatusError is a non-2xx response.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d %s", e.URL, e.Code, http.StatusText(e.Code))
}

// Is matches ErrStatus, and ErrNotFound for 404s.
func (e *StatusError) Is(target error) bool {
	return target == ErrStatus || (target == ErrNotFound && e.Code == http.StatusNotFound)
}

func checkStatus(url string, code int) error {
	if code >= 200 && code < 300 {
		return nil
	}
	return &StatusError{Code: code, URL: url}
}
