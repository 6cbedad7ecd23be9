package logiops

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"
)

// excerptRunes bounds how much of a non-JSON error body is surfaced.
const excerptRunes = 200

// APIError is returned for non-success HTTP statuses.
type APIError struct {
	Op     string
	Status int
	// Message is the server's "message" field when the body was JSON.
	Message string
	// Excerpt is the head of the raw body when it was not JSON.
	Excerpt string
	// Structured reports whether the body parsed as JSON (or was empty).
	Structured bool
}

// Error surfaces the server message verbatim, or the status and an excerpt
// of the raw body for non-JSON error pages.
func (e *APIError) Error() string {
	if e.Structured {
		if e.Message != "" {
			return e.Message
		}
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	return fmt.Sprintf("HTTP %d • %s…", e.Status, e.Excerpt)
}

func excerpt(s string) string {
	if utf8.RuneCountInString(s) <= excerptRunes {
		return s
	}
	n := 0
	for i := range s {
		if n == excerptRunes {
			return s[:i]
		}
		n++
	}
	return s
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// UserMessage returns the text shown to a dashboard user for err. Server
// errors are surfaced verbatim; transport failures get a generic message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	if errors.Is(err, context.Canceled) {
		return "request canceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	return "network error: the API could not be reached"
}
