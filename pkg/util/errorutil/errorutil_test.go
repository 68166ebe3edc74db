package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	wrapped := fmt.Errorf("resolve: %w", NewConfigurationError(errors.New("missing id")))

	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"domain error passes through wrapping", wrapped, "CONFIGURATION_ERROR", http.StatusInternalServerError},
		{"fiber error keeps status", fiber.NewError(http.StatusNotFound, "Cannot GET /x"), "NOT_FOUND", http.StatusNotFound},
		{"fiber method not allowed", fiber.ErrMethodNotAllowed, "METHOD_NOT_ALLOWED", http.StatusMethodNotAllowed},
		{"plain error becomes internal", errors.New("boom"), "INTERNAL_ERROR", http.StatusInternalServerError},
		{"upstream defaults to bad gateway", NewUpstreamError("fipe failed", 0, nil), "UPSTREAM_ERROR", http.StatusBadGateway},
		{"rate limited", NewRateLimited(3), "RATE_LIMITED", http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDomainError(tt.err)
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, tt.status, got.HTTPStatus)
		})
	}

	assert.Nil(t, ToDomainError(nil))
}

func TestDomainError_ErrorIncludesCause(t *testing.T) {
	err := NewUpstreamAuthError(errors.New("status 401"))
	assert.Contains(t, err.Error(), "status 401")
	assert.ErrorContains(t, errors.Unwrap(err), "status 401")
}
