package dto

import (
	"github.com/spec-kit/vehicle-pricing/internal/domain"
	"github.com/spec-kit/vehicle-pricing/internal/pricing"
)

// QuoteRequest carries the reference price either as a number or as the
// FIPE text ("R$ 45.000,00") plus the insurance and tax inputs.
type QuoteRequest struct {
	ReferencePrice float64 `json:"reference_price"`
	FipeValue      string  `json:"fipe_value"`
	Origin         string  `json:"origin"`
	DriverAge      int     `json:"driver_age"`
	Location       string  `json:"location"`
	State          string  `json:"state"`
}

// QuoteResponse adds display strings to the computed quote.
type QuoteResponse struct {
	pricing.Quote
	Formatted map[string]string `json:"formatted"`
}

// VehicleResponse is the FIPE record with its numeric price exposed.
type VehicleResponse struct {
	domain.Vehicle
	ReferencePrice float64 `json:"reference_price"`
}
