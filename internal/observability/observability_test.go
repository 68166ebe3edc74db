package observability

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/vehicle-pricing/internal/config"
)

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "bu***@example.com", MaskEmail("buyer@example.com"))
	assert.Equal(t, "a***@example.com", MaskEmail("a@example.com"))
	assert.Equal(t, "***", MaskEmail("not-an-email"))
	assert.Equal(t, "***", MaskEmail("@example.com"))
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "abcd****", MaskSecret("abcdefgh"))
	assert.Equal(t, "****", MaskSecret("abc"))
}

func TestNewLogger_FallsBackToInfo(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "loud"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/x", "GET", 200, time.Millisecond)
	m.RecordError("/x", "GET", "INTERNAL_ERROR")
	m.RecordEntitlement("granted")
	m.RecordStrategyHit("buyer_email")
	m.ObserveUpstream("commerce_auth", errors.New("x"), time.Millisecond)
	m.RecordCacheLookup("fipe", true)
}

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordEntitlement("granted")
	m.RecordEntitlement("granted")
	m.RecordEntitlement("denied")
	m.RecordStrategyHit("email")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.entitlements.WithLabelValues("granted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.entitlements.WithLabelValues("denied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.strategyHits.WithLabelValues("email")))
}

func TestRequestLogger_SetsRequestIDAndRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	app := fiber.New()
	app.Use(RequestLogger(zap.NewNop(), m))
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/ping", "GET", "200")))

	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set(RequestIDHeader, "fixed-id")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "fixed-id", resp.Header.Get(RequestIDHeader))
}
