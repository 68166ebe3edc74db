package commerce

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/vehicle-pricing/internal/config"
	"github.com/spec-kit/vehicle-pricing/internal/domain"
)

func newTestClient(authURL, baseURL string) *Client {
	cfg := config.CommerceConfig{
		ClientID:       "client-id",
		ClientSecret:   "client-secret",
		AuthURL:        authURL,
		APIBaseURL:     baseURL,
		RequestTimeout: time.Second,
	}
	return NewClient(cfg, nil, zap.NewNop(), nil)
}

func TestAuthenticate_SendsBasicAuthAndForm(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		want := "Basic " + base64.StdEncoding.EncodeToString([]byte("client-id:client-secret"))
		assert.Equal(t, want, r.Header.Get("Authorization"))
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-123","token_type":"bearer"}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, server.URL)
	token, err := c.Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)
}

func TestAuthenticate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":"invalid_client"}`},
		{"malformed body", http.StatusOK, `not json`},
		{"empty token", http.StatusOK, `{"access_token":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := newTestClient(server.URL, server.URL)
			_, err := c.Authenticate(context.Background())
			assert.True(t, errors.Is(err, ErrAuthentication), "got %v", err)
		})
	}
}

func TestAuthenticate_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	c := newTestClient(addr, addr)
	_, err := c.Authenticate(context.Background())
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestAuthenticate_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	c := newTestClient(server.URL, server.URL)
	c.timeout = 50 * time.Millisecond
	_, err := c.Authenticate(context.Background())
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestSalesHistory_SendsBearerAndParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payments/api/v1/sales/history", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "buyer+1@example.com", r.URL.Query().Get("buyer_email"))
		assert.Equal(t, "123", r.URL.Query().Get("product_id"))

		_, _ = w.Write([]byte(`{"items":[
			{"purchase":{"status":"APPROVED","approved_date":1700000000000,"order_date":1699990000000}},
			{"status":"refunded","order_date":"1650000000"},
			{"product":{"id":123}}
		]}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, server.URL+"/payments/api/v1/")
	records, err := c.SalesHistory(context.Background(), "tok",
		url.Values{"buyer_email": {"buyer+1@example.com"}, "product_id": {"123"}})
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, domain.SaleStatusApproved, records[0].Status)
	assert.True(t, records[0].ApprovedAt.Equal(time.UnixMilli(1700000000000)))
	assert.True(t, records[0].PurchasedAt.IsZero())
	assert.Equal(t, domain.SaleStatusRefunded, records[1].Status)
	assert.True(t, records[1].OrderedAt.Equal(time.Unix(1650000000, 0)))
	assert.Empty(t, records[2].Status)
}

func TestSalesHistory_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"bad request", http.StatusBadRequest, `{"error":"invalid_parameter"}`},
		{"server error", http.StatusInternalServerError, ``},
		{"unparseable", http.StatusOK, `<html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := newTestClient(server.URL, server.URL)
			_, err := c.SalesHistory(context.Background(), "tok", url.Values{})
			assert.ErrorIs(t, err, ErrQuery)
		})
	}
}
