package faults

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Category
	}{
		{name: "nil", err: nil, expected: Unknown},
		{name: "invalid credential sentinel", err: ErrInvalidCredential, expected: InvalidCredential},
		{name: "wrapped invalid credential", err: fmt.Errorf("login: %w", ErrInvalidCredential), expected: InvalidCredential},
		{name: "rate limited", err: ErrRateLimited, expected: RateLimited},
		{name: "permission denied", err: ErrPermissionDenied, expected: PermissionDenied},
		{name: "not found", err: ErrNotFound, expected: NotFound},
		{name: "unavailable sentinel", err: ErrUnavailable, expected: NetworkUnavailable},
		{name: "deadline exceeded", err: context.DeadlineExceeded, expected: NetworkUnavailable},
		{name: "message hint offline", err: errors.New("client is offline"), expected: NetworkUnavailable},
		{name: "message hint failed to fetch", err: errors.New("Failed to fetch document"), expected: NetworkUnavailable},
		{name: "message hint connection refused", err: errors.New("dial tcp: connection refused"), expected: NetworkUnavailable},
		{name: "arbitrary error", err: errors.New("row scan failed"), expected: Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.err))
		})
	}
}

func TestMessageCoversEveryCategory(t *testing.T) {
	for _, cat := range []Category{NetworkUnavailable, InvalidCredential, RateLimited, PermissionDenied, NotFound, Unknown} {
		assert.NotEmpty(t, Message(cat), "category %s has no message", cat)
	}
	assert.Equal(t, Message(Unknown), Message(Category("bogus")))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		cat      Category
		expected int
	}{
		{InvalidCredential, http.StatusUnauthorized},
		{PermissionDenied, http.StatusForbidden},
		{NotFound, http.StatusNotFound},
		{RateLimited, http.StatusTooManyRequests},
		{NetworkUnavailable, http.StatusServiceUnavailable},
		{Unknown, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, HTTPStatus(tt.cat), "category %s", tt.cat)
	}
}
