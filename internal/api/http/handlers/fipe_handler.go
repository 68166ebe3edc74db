package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/vehicle-pricing/internal/api/dto"
	"github.com/spec-kit/vehicle-pricing/internal/domain"
	"github.com/spec-kit/vehicle-pricing/internal/fipe"
	apperrors "github.com/spec-kit/vehicle-pricing/pkg/util/errorutil"
)

// FipeHandler proxies the reference price catalog.
type FipeHandler struct {
	client *fipe.Client
}

// NewFipeHandler constructs handler.
func NewFipeHandler(client *fipe.Client) *FipeHandler {
	return &FipeHandler{client: client}
}

// Brands handles GET /api/fipe/:type/marcas.
func (h *FipeHandler) Brands(c *fiber.Ctx) error {
	brands, err := h.client.Brands(c.UserContext(), vehicleType(c))
	if err != nil {
		return fipeError(err)
	}
	return c.JSON(fiber.Map{"data": brands})
}

// Models handles GET /api/fipe/:type/marcas/:brand/modelos.
func (h *FipeHandler) Models(c *fiber.Ctx) error {
	models, err := h.client.Models(c.UserContext(), vehicleType(c), c.Params("brand"))
	if err != nil {
		return fipeError(err)
	}
	return c.JSON(fiber.Map{"data": models})
}

// Years handles GET /api/fipe/:type/marcas/:brand/modelos/:model/anos.
func (h *FipeHandler) Years(c *fiber.Ctx) error {
	years, err := h.client.Years(c.UserContext(), vehicleType(c), c.Params("brand"), c.Params("model"))
	if err != nil {
		return fipeError(err)
	}
	return c.JSON(fiber.Map{"data": years})
}

// Vehicle handles GET /api/fipe/:type/marcas/:brand/modelos/:model/anos/:year.
func (h *FipeHandler) Vehicle(c *fiber.Ctx) error {
	vehicle, err := h.client.Vehicle(c.UserContext(), vehicleType(c), c.Params("brand"), c.Params("model"), c.Params("year"))
	if err != nil {
		return fipeError(err)
	}
	return c.JSON(fiber.Map{"data": dto.VehicleResponse{Vehicle: vehicle, ReferencePrice: vehicle.ReferencePrice}})
}

func vehicleType(c *fiber.Ctx) domain.VehicleType {
	return domain.VehicleType(c.Params("type"))
}

func fipeError(err error) error {
	switch {
	case errors.Is(err, fipe.ErrInvalidVehicleType), errors.Is(err, fipe.ErrMissingCode):
		return apperrors.NewValidationError(err.Error(), nil)
	case errors.Is(err, fipe.ErrNotFound):
		return apperrors.NewNotFound("catalog entry", nil)
	case errors.Is(err, fipe.ErrUpstream):
		return apperrors.NewUpstreamError("fipe catalog unavailable", 0, err)
	}
	return apperrors.NewInternalError(err)
}
