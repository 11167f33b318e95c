package faults

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
)

// Category is the normalized failure class surfaced to users. Remote
// provider and store errors are always reduced to one of these at the
// point of call; nothing above the service layer sees a raw error.
type Category string

const (
	NetworkUnavailable Category = "network_unavailable"
	InvalidCredential  Category = "invalid_credential"
	RateLimited        Category = "rate_limited"
	PermissionDenied   Category = "permission_denied"
	NotFound           Category = "not_found"
	Unknown            Category = "unknown"
)

// Sentinels for the categories that originate inside this codebase.
var (
	ErrUnavailable       = errors.New("service unavailable")
	ErrInvalidCredential = errors.New("invalid credentials")
	ErrRateLimited       = errors.New("too many attempts")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrNotFound          = errors.New("not found")
)

// Classify reduces an arbitrary error to a Category. Sentinels win;
// otherwise the chain is unwrapped and matched against known network
// failure shapes, then message heuristics for errors that cross a
// serialization boundary and lose their type.
func Classify(err error) Category {
	if err == nil {
		return Unknown
	}

	switch {
	case errors.Is(err, ErrInvalidCredential):
		return InvalidCredential
	case errors.Is(err, ErrRateLimited):
		return RateLimited
	case errors.Is(err, ErrPermissionDenied):
		return PermissionDenied
	case errors.Is(err, ErrNotFound):
		return NotFound
	case errors.Is(err, ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return NetworkUnavailable
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return NetworkUnavailable
	}

	msg := strings.ToLower(err.Error())
	for _, hint := range []string{"unavailable", "offline", "failed to fetch", "connection refused", "timeout", "no such host"} {
		if strings.Contains(msg, hint) {
			return NetworkUnavailable
		}
	}

	return Unknown
}

var messages = map[Category]string{
	NetworkUnavailable: "Network unavailable. Check your connection and try again.",
	InvalidCredential:  "Incorrect email or password.",
	RateLimited:        "Too many attempts. Please wait a moment and try again.",
	PermissionDenied:   "You do not have permission to do that.",
	NotFound:           "The requested record could not be found.",
	Unknown:            "Something went wrong. Please try again.",
}

// Message returns the user-facing text for a category.
func Message(cat Category) string {
	if msg, ok := messages[cat]; ok {
		return msg
	}
	return messages[Unknown]
}

// MessageFor is shorthand for Message(Classify(err)).
func MessageFor(err error) string {
	return Message(Classify(err))
}

// HTTPStatus maps a category to the response code used by the HTTP layer.
func HTTPStatus(cat Category) int {
	switch cat {
	case InvalidCredential:
		return http.StatusUnauthorized
	case PermissionDenied:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case RateLimited:
		return http.StatusTooManyRequests
	case NetworkUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
