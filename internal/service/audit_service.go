package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/vehicle-pricing/internal/events"
)

// AuditService writes an audit line for every entitlement and tech-sheet event.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventEntitlementGranted, a.handleEntitlement)
	a.dispatcher.Subscribe(events.EventEntitlementDenied, a.handleEntitlement)
	a.dispatcher.Subscribe(events.EventEntitlementFailed, a.handleEntitlement)
	a.dispatcher.Subscribe(events.EventTechSheetGenerated, a.handleTechSheetGenerated)
}

func (a *AuditService) handleEntitlement(_ context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.EntitlementPayload)
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.Time("at", event.Timestamp),
		zap.String("email", payload.MaskedEmail),
	}
	if payload.ProductID != "" {
		fields = append(fields, zap.String("product_id", payload.ProductID))
	}
	if payload.Status != "" {
		fields = append(fields, zap.String("status", payload.Status))
	}
	if payload.Strategy != "" {
		fields = append(fields, zap.String("strategy", payload.Strategy))
	}
	if payload.Reason != "" {
		fields = append(fields, zap.String("reason", payload.Reason))
	}

	if event.Type == events.EventEntitlementFailed {
		a.logger.Warn("entitlement check failed", fields...)
		return nil
	}
	a.logger.Info("entitlement decided", fields...)
	return nil
}

func (a *AuditService) handleTechSheetGenerated(_ context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.TechSheetGeneratedPayload)
	a.logger.Info("tech sheet served",
		zap.String("event_id", event.ID),
		zap.String("key", payload.Key),
		zap.String("brand", payload.Brand),
		zap.String("model", payload.Model),
		zap.Bool("cached", payload.Cached))
	return nil
}
