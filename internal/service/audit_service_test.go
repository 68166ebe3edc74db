package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/vehicle-pricing/internal/events"
)

func TestAuditService_LogsEvents(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewAuditService(dispatcher, zap.New(core)).RegisterHandlers()

	ctx := context.Background()
	require.NoError(t, dispatcher.Publish(ctx, events.New(events.EventEntitlementGranted, events.EntitlementPayload{
		MaskedEmail: "bu***@example.com", ProductID: "123", Status: "approved", Strategy: "buyer_email",
	})))
	require.NoError(t, dispatcher.Publish(ctx, events.New(events.EventEntitlementFailed, events.EntitlementPayload{
		MaskedEmail: "bu***@example.com", Reason: "auth_error",
	})))
	require.NoError(t, dispatcher.Publish(ctx, events.New(events.EventTechSheetGenerated, events.TechSheetGeneratedPayload{
		Key: "001004-9:2020", Cached: true,
	})))

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "entitlement decided", entries[0].Message)
	assert.Equal(t, "123", entries[0].ContextMap()["product_id"])
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, "auth_error", entries[1].ContextMap()["reason"])
	assert.Equal(t, true, entries[2].ContextMap()["cached"])
}
