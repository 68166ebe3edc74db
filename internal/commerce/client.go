// Package commerce talks to the commerce platform that sells access to the
// calculator: OAuth2 client-credentials authentication and sales history.
package commerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/vehicle-pricing/internal/config"
	"github.com/spec-kit/vehicle-pricing/internal/domain"
	"github.com/spec-kit/vehicle-pricing/internal/observability"
)

const maxBodyBytes = 1 << 20

var (
	// ErrAuthentication means no bearer token could be obtained.
	ErrAuthentication = errors.New("commerce authentication failed")
	// ErrQuery means a sales-history call failed or returned an unreadable body.
	ErrQuery = errors.New("commerce sales query failed")
)

// Client calls the commerce platform. Every call is bounded by the configured timeout.
type Client struct {
	httpClient   *http.Client
	logger       *zap.Logger
	metrics      *observability.Metrics
	authURL      string
	salesURL     string
	clientID     string
	clientSecret string
	timeout      time.Duration
}

// NewClient builds a client from the commerce configuration.
func NewClient(cfg config.CommerceConfig, httpClient *http.Client, logger *zap.Logger, metrics *observability.Metrics) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		httpClient:   httpClient,
		logger:       logger,
		metrics:      metrics,
		authURL:      cfg.AuthURL,
		salesURL:     strings.TrimRight(cfg.APIBaseURL, "/") + "/sales/history",
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		timeout:      timeout,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// Authenticate requests a fresh bearer token. Tokens are never cached.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrAuthentication, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.clientID, c.clientSecret)

	start := time.Now()
	body, status, err := c.do(req)
	c.metrics.ObserveUpstream("commerce_auth", err, time.Since(start))
	if err != nil {
		c.logger.Error("commerce authentication request failed",
			zap.String("client_id", observability.MaskSecret(c.clientID)),
			zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	if status < 200 || status >= 300 {
		c.logger.Error("commerce authentication rejected",
			zap.String("client_id", observability.MaskSecret(c.clientID)),
			zap.Int("status", status))
		return "", fmt.Errorf("%w: status %d", ErrAuthentication, status)
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", fmt.Errorf("%w: decode token: %v", ErrAuthentication, err)
	}
	if strings.TrimSpace(tok.AccessToken) == "" {
		return "", fmt.Errorf("%w: empty access token", ErrAuthentication)
	}
	return tok.AccessToken, nil
}

// SalesHistory runs one sales-history query and returns the records that carry a status.
func (c *Client) SalesHistory(ctx context.Context, token string, params url.Values) ([]domain.SaleRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.salesURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrQuery, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	body, status, err := c.do(req)
	c.metrics.ObserveUpstream("commerce_sales", err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrQuery, status)
	}

	records, err := parseSalesHistory(body)
	if err != nil {
		return nil, fmt.Errorf("%w: decode history: %v", ErrQuery, err)
	}
	return records, nil
}

func (c *Client) do(req *http.Request) ([]byte, int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}
