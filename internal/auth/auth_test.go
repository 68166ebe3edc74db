package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/vehicle-pricing/internal/domain"
	apperrors "github.com/spec-kit/vehicle-pricing/pkg/util/errorutil"
)

var granted = domain.EntitlementDecision{HasAccess: true, Status: domain.SaleStatusApproved, ProductID: "123"}

func TestTokenManager_IssueAndParse(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)

	token, expiresAt, err := tm.Issue(granted, "buyer@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "buyer@example.com", claims.Subject)
	assert.Equal(t, "123", claims.ProductID)
	assert.Equal(t, "approved", claims.Status)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenManager_RejectsDenied(t *testing.T) {
	_, _, err := NewTokenManager("secret", time.Hour).Issue(domain.Denied(), "buyer@example.com")
	assert.ErrorIs(t, err, ErrNoAccess)
}

func TestTokenManager_ParseFailures(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	token, _, err := tm.Issue(granted, "buyer@example.com")
	require.NoError(t, err)

	_, err = NewTokenManager("other", time.Hour).Parse(token)
	assert.Error(t, err, "wrong secret")

	tm.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = tm.Parse(token)
	assert.Error(t, err, "expired")
}

func newGatedApp(tm *TokenManager, required bool) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"code": de.Code})
		},
	})
	mw := NewAccessPassMiddleware(tm, required)
	app.Get("/gated", mw.Handle, func(c *fiber.Ctx) error {
		if claims, ok := ClaimsFromContext(c); ok {
			return c.SendString(claims.Subject)
		}
		return c.SendString("anonymous")
	})
	return app
}

func TestAccessPassMiddleware(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	token, _, err := tm.Issue(granted, "buyer@example.com")
	require.NoError(t, err)

	tests := []struct {
		name     string
		required bool
		header   string
		status   int
	}{
		{"valid pass", true, "Bearer " + token, http.StatusOK},
		{"missing pass", true, "", http.StatusUnauthorized},
		{"wrong scheme", true, "Basic " + token, http.StatusUnauthorized},
		{"garbage pass", true, "Bearer nope", http.StatusUnauthorized},
		{"optional without pass", false, "", http.StatusOK},
		{"optional with garbage pass", false, "Bearer nope", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/gated", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := newGatedApp(tm, tt.required).Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
