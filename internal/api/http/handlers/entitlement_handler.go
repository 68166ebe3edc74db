package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/vehicle-pricing/internal/api/dto"
	"github.com/spec-kit/vehicle-pricing/internal/auth"
	"github.com/spec-kit/vehicle-pricing/internal/domain"
	"github.com/spec-kit/vehicle-pricing/internal/service"
	apperrors "github.com/spec-kit/vehicle-pricing/pkg/util/errorutil"
)

const (
	msgAccessGranted = "Acesso liberado"
	msgAccessDenied  = "Acesso negado"
	msgEmailRequired = "E-mail é obrigatório"
)

// EntitlementResolver decides access for an email.
type EntitlementResolver interface {
	Resolve(ctx context.Context, email string) (domain.EntitlementDecision, error)
}

// EntitlementHandler exposes the purchase check.
type EntitlementHandler struct {
	resolver EntitlementResolver
	tokens   *auth.TokenManager
}

// NewEntitlementHandler constructs handler.
func NewEntitlementHandler(resolver EntitlementResolver, tokens *auth.TokenManager) *EntitlementHandler {
	return &EntitlementHandler{resolver: resolver, tokens: tokens}
}

// Validate handles POST /api/validate-email.
func (h *EntitlementHandler) Validate(c *fiber.Ctx) error {
	var req dto.ValidateEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError(msgEmailRequired, nil)
	}

	decision, err := h.resolver.Resolve(c.UserContext(), req.Email)
	switch {
	case errors.Is(err, service.ErrEmailRequired):
		return apperrors.NewValidationError(msgEmailRequired, nil)
	case errors.Is(err, service.ErrConfiguration):
		return apperrors.NewConfigurationError(err)
	case errors.Is(err, service.ErrAuthentication):
		return apperrors.NewUpstreamAuthError(err)
	case err != nil:
		return apperrors.NewInternalError(err)
	}

	if !decision.HasAccess {
		return apperrors.NewForbidden(msgAccessDenied)
	}

	token, expiresAt, err := h.tokens.Issue(decision, req.Email)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.Status(http.StatusOK).JSON(dto.EntitlementResponse{
		Message:   msgAccessGranted,
		Status:    string(decision.Status),
		ProductID: decision.ProductID,
		Token:     token,
		ExpiresAt: expiresAt,
	})
}
