package commerce

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/vehicle-pricing/internal/domain"
)

func decodeItem(t *testing.T, raw string) saleItem {
	t.Helper()
	var item saleItem
	require.NoError(t, json.Unmarshal([]byte(raw), &item))
	return item
}

func TestStatusAccessors_Order(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want domain.SaleStatus
	}{
		{"nested status", `{"purchase":{"status":"COMPLETE"}}`, domain.SaleStatusComplete},
		{"nested transaction status", `{"purchase":{"transaction_status":"Approved"}}`, domain.SaleStatusApproved},
		{"top level status", `{"status":"active"}`, domain.SaleStatusActive},
		{"top level transaction status", `{"transaction_status":"CHARGEBACK"}`, domain.SaleStatusChargeback},
		{"nested wins over top level", `{"status":"refunded","purchase":{"status":"approved"}}`, domain.SaleStatusApproved},
		{"blank nested falls through", `{"status":"expired","purchase":{"status":"  "}}`, domain.SaleStatusExpired},
		{"no status anywhere", `{"purchase":{"order_date":1650000000}}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := toSaleRecord(decodeItem(t, tt.raw))
			assert.Equal(t, tt.want, record.Status)
		})
	}
}

func TestDateAccessors(t *testing.T) {
	item := decodeItem(t, `{
		"status":"approved",
		"purchase_date":1700000000,
		"approved_date":"2023-11-14T22:13:20Z",
		"purchase":{"order_date":1650000000000},
		"order_date":1}`)

	record := toSaleRecord(item)
	assert.True(t, record.PurchasedAt.Equal(time.Unix(1700000000, 0)))
	assert.True(t, record.ApprovedAt.Equal(time.Unix(1700000000, 0)))
	assert.True(t, record.OrderedAt.Equal(time.UnixMilli(1650000000000)), "nested order date wins")
}

func TestEpoch_Units(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{`1700000000`, time.Unix(1700000000, 0)},
		{`1700000000000`, time.UnixMilli(1700000000000)},
		{`"1700000000"`, time.Unix(1700000000, 0)},
		{`1.7e12`, time.UnixMilli(1700000000000)},
		{`null`, time.Time{}},
		{`0`, time.Time{}},
		{`-5`, time.Time{}},
		{`"soon"`, time.Time{}},
		{`""`, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var e epoch
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &e))
			assert.True(t, tt.want.Equal(e.Time), "got %v", e.Time)
		})
	}
}

func TestParseSalesHistory(t *testing.T) {
	records, err := parseSalesHistory([]byte(`{"items":[{"status":"approved"},42,{"buyer":{"email":"x"}}]}`))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, domain.SaleStatusApproved, records[0].Status)
	assert.Empty(t, records[1].Status)

	records, err = parseSalesHistory([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, records)

	_, err = parseSalesHistory([]byte(`[`))
	assert.Error(t, err)
}

func TestStrategies(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	strategies := Strategies(24 * time.Hour)
	require.Len(t, strategies, 3)

	names := make([]string, 0, len(strategies))
	for _, s := range strategies {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"buyer_email", "email", "buyer_email_since"}, names)

	a := strategies[0].Params("buyer@example.com", "123", now)
	assert.Equal(t, "buyer@example.com", a.Get("buyer_email"))
	assert.Equal(t, "123", a.Get("product_id"))
	assert.Empty(t, a.Get("start_date"))

	b := strategies[1].Params("buyer@example.com", "123", now)
	assert.Equal(t, "buyer@example.com", b.Get("email"))
	assert.Empty(t, b.Get("buyer_email"))

	c := strategies[2].Params("buyer@example.com", "123", now)
	assert.Equal(t, "1767139200000", c.Get("start_date"))
}
