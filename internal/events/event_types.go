package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventEntitlementGranted EventType = "entitlement_granted"
	EventEntitlementDenied  EventType = "entitlement_denied"
	EventEntitlementFailed  EventType = "entitlement_failed"
	EventTechSheetGenerated EventType = "tech_sheet_generated"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with an id and the current time.
func New(eventType EventType, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// EntitlementPayload describes one resolution. Email is already masked.
type EntitlementPayload struct {
	MaskedEmail string `json:"masked_email"`
	ProductID   string `json:"product_id,omitempty"`
	Status      string `json:"status,omitempty"`
	Strategy    string `json:"strategy,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// TechSheetGeneratedPayload payload.
type TechSheetGeneratedPayload struct {
	Key    string `json:"key"`
	Brand  string `json:"brand"`
	Model  string `json:"model"`
	Cached bool   `json:"cached"`
}
