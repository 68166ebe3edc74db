package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/vehicle-pricing/internal/api/dto"
	"github.com/spec-kit/vehicle-pricing/internal/pricing"
	apperrors "github.com/spec-kit/vehicle-pricing/pkg/util/errorutil"
)

// PricingHandler exposes the calculator.
type PricingHandler struct{}

// NewPricingHandler constructs handler.
func NewPricingHandler() *PricingHandler {
	return &PricingHandler{}
}

// Quote handles POST /api/quote.
func (h *PricingHandler) Quote(c *fiber.Ctx) error {
	var req dto.QuoteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	price := req.ReferencePrice
	if price == 0 && strings.TrimSpace(req.FipeValue) != "" {
		parsed, err := pricing.ParseBRL(req.FipeValue)
		if err != nil {
			return apperrors.NewValidationError("invalid fipe_value", map[string]any{"fipe_value": req.FipeValue})
		}
		price = parsed
	}

	quote, err := pricing.Calculate(pricing.QuoteInput{
		ReferencePrice: price,
		Insurance: pricing.InsuranceInput{
			Origin:    pricing.Origin(strings.ToLower(strings.TrimSpace(req.Origin))),
			DriverAge: req.DriverAge,
			Location:  pricing.Location(strings.ToLower(strings.TrimSpace(req.Location))),
		},
		State: req.State,
	})
	if err != nil {
		return pricingError(err)
	}

	return c.JSON(fiber.Map{"data": dto.QuoteResponse{
		Quote: quote,
		Formatted: map[string]string{
			"reference_price":    pricing.FormatBRL(quote.ReferencePrice),
			"auction_max_bid":    pricing.FormatBRL(quote.Auction.MaxBid),
			"auction_fee":        pricing.FormatBRL(quote.Auction.Fee),
			"auction_total":      pricing.FormatBRL(quote.Auction.Total),
			"insurance_annual":   pricing.FormatBRL(quote.Insurance.Annual),
			"insurance_monthly":  pricing.FormatBRL(quote.Insurance.Monthly),
			"ipva_annual":        pricing.FormatBRL(quote.IPVA.Annual),
			"projection_total":   pricing.FormatBRL(quote.Projection.Total),
			"projection_monthly": pricing.FormatBRL(quote.Projection.MonthlyAverage),
		},
	}})
}

// IPVARates handles GET /api/ipva/rates.
func (h *PricingHandler) IPVARates(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": pricing.IPVARates()})
}

func pricingError(err error) error {
	switch {
	case errors.Is(err, pricing.ErrInvalidPrice):
		return apperrors.NewValidationError("reference price must be positive", nil)
	case errors.Is(err, pricing.ErrInvalidDriverAge):
		return apperrors.NewValidationError("driver_age must be positive", nil)
	case errors.Is(err, pricing.ErrUnknownState):
		return apperrors.NewValidationError("unknown state", nil)
	case errors.Is(err, pricing.ErrProjectionInputs):
		return apperrors.NewValidationError(err.Error(), nil)
	}
	return apperrors.NewInternalError(err)
}
