package dto

import "time"

// ValidateEmailRequest payload for the purchase check.
type ValidateEmailRequest struct {
	Email string `json:"email"`
}

// EntitlementResponse is returned when access is granted. Token is the
// access pass required by the generative endpoints.
type EntitlementResponse struct {
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	ProductID string    `json:"product_id,omitempty"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
