package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/vehicle-pricing/internal/api/dto"
	"github.com/spec-kit/vehicle-pricing/internal/techsheet"
	apperrors "github.com/spec-kit/vehicle-pricing/pkg/util/errorutil"
)

// GenerativeHandler serves the model proxy and the technical sheet.
type GenerativeHandler struct {
	generator techsheet.Generator
	sheets    *techsheet.Service
}

// NewGenerativeHandler constructs handler.
func NewGenerativeHandler(generator techsheet.Generator, sheets *techsheet.Service) *GenerativeHandler {
	return &GenerativeHandler{generator: generator, sheets: sheets}
}

// Generate handles POST /api/gemini and relays the model response as is.
func (h *GenerativeHandler) Generate(c *fiber.Ctx) error {
	var req dto.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Prompt == "" {
		return apperrors.NewValidationError(techsheet.ErrPromptRequired.Error(), nil)
	}
	schema, err := techsheet.ParseSchema(req.Schema)
	if err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}

	resp, err := h.generator.Generate(c.UserContext(), req.Prompt, schema)
	if err != nil {
		return generativeError(err)
	}
	return c.JSON(resp)
}

// TechSheet handles POST /api/tech-sheet.
func (h *GenerativeHandler) TechSheet(c *fiber.Ctx) error {
	var req dto.TechSheetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	sheet, cached, err := h.sheets.Get(c.UserContext(), techsheet.Request{
		Brand:     req.Brand,
		Model:     req.Model,
		ModelYear: req.ModelYear,
		FipeCode:  req.FipeCode,
	})
	if err != nil {
		return generativeError(err)
	}

	resp := dto.TechSheetResponse{
		Key:       sheet.Key,
		Cached:    cached,
		ModelName: sheet.ModelName,
		Sheet:     sheet.Sheet,
	}
	if !sheet.CreatedAt.IsZero() {
		resp.CreatedAt = &sheet.CreatedAt
	}
	return c.JSON(fiber.Map{"data": resp})
}

func generativeError(err error) error {
	var upstream *techsheet.UpstreamError
	switch {
	case errors.Is(err, techsheet.ErrNotConfigured):
		return apperrors.NewConfigurationError(err)
	case errors.Is(err, techsheet.ErrPromptRequired), errors.Is(err, techsheet.ErrInvalidRequest):
		return apperrors.NewValidationError(err.Error(), nil)
	case errors.Is(err, techsheet.ErrInvalidSheet):
		return apperrors.NewUpstreamError(err.Error(), 0, err)
	case errors.As(err, &upstream):
		return apperrors.NewUpstreamError(upstream.Message, upstream.Status, err)
	}
	return apperrors.NewInternalError(err)
}
