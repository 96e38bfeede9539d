package chroma

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrQuotaExceeded is returned when the store rejects a write because
	// the account has no remaining capacity. Callers treat it as a soft
	// failure rather than a hard error.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrNotFound is returned when a requested collection does not exist.
	ErrNotFound = errors.New("collection not found")
)

// APIError is a non-2xx response from the Chroma API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("chroma api error (status %d): %s", e.StatusCode, e.Message)
}

// IsQuotaExceeded reports whether err represents a quota-exceeded response.
// The structured sentinel is preferred; the "Quota exceeded" substring match
// is kept for compatibility with older server error bodies that carry no
// distinguishing status code.
func IsQuotaExceeded(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrQuotaExceeded) {
		return true
	}
	return strings.Contains(err.Error(), "Quota exceeded")
}
