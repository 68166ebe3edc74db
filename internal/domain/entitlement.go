package domain

// StatusBypass marks decisions granted to operator-configured bypass emails.
const StatusBypass SaleStatus = "bypass"

// EntitlementDecision is computed fresh for every validation request and never stored.
type EntitlementDecision struct {
	HasAccess bool
	Status    SaleStatus
	ProductID string
	Strategy  string
}

// Denied is the decision returned when no configured product grants access.
func Denied() EntitlementDecision {
	return EntitlementDecision{}
}
