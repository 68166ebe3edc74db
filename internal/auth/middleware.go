package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/vehicle-pricing/pkg/util/errorutil"
)

const claimsKey = "access_pass"

// AccessPassMiddleware guards routes that require a validated purchase.
type AccessPassMiddleware struct {
	tokens   *TokenManager
	required bool
}

// NewAccessPassMiddleware constructs middleware. When required is false the
// pass is still parsed if present but never demanded.
func NewAccessPassMiddleware(tokens *TokenManager, required bool) *AccessPassMiddleware {
	return &AccessPassMiddleware{tokens: tokens, required: required}
}

// Handle enforces the bearer access pass.
func (m *AccessPassMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		if !m.required {
			return c.Next()
		}
		return apperrors.NewUnauthorized("missing access pass")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.Parse(strings.TrimSpace(parts[1]))
	if err != nil {
		return apperrors.NewUnauthorized("invalid or expired access pass")
	}

	c.Locals(claimsKey, claims)
	return c.Next()
}

// ClaimsFromContext retrieves the validated pass, if any.
func ClaimsFromContext(c *fiber.Ctx) (*Claims, bool) {
	val := c.Locals(claimsKey)
	if val == nil {
		return nil, false
	}
	claims, ok := val.(*Claims)
	return claims, ok
}
