// Package fipe reads the FIPE reference price catalog and caches its answers.
package fipe

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
	"github.com/spec-kit/vehicle-pricing/internal/pricing"
)

const (
	maxBodyBytes = 1 << 20
	keyPrefix    = "fipe:"
)

var (
	ErrInvalidVehicleType = errors.New("vehicle type must be carros, motos or caminhoes")
	ErrMissingCode        = errors.New("catalog code is required")
	ErrNotFound           = errors.New("catalog entry not found")
	ErrUpstream           = errors.New("fipe catalog unavailable")
)

// Cache stores raw catalog responses.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Client reads the public FIPE API.
type Client struct {
	httpClient *http.Client
	cache      Cache
	logger     *zap.Logger
	metrics    *observability.Metrics
	baseURL    string
	ttl        time.Duration
	timeout    time.Duration
}

// NewClient builds a client. cache may be nil.
func NewClient(cfg config.FipeConfig, httpClient *http.Client, cache Cache, logger *zap.Logger, metrics *observability.Metrics) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: httpClient,
		cache:      cache,
		logger:     logger,
		metrics:    metrics,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		ttl:        cfg.CacheTTL,
		timeout:    timeout,
	}
}

// ModelsResult is the model listing of a brand. Years lists every model year
// the brand has, not only those of one model.
type ModelsResult struct {
	Models []domain.CatalogEntry `json:"modelos"`
	Years  []domain.CatalogEntry `json:"anos"`
}

// Brands lists the brands of a vehicle type.
func (c *Client) Brands(ctx context.Context, vehicleType domain.VehicleType) ([]domain.CatalogEntry, error) {
	var out []domain.CatalogEntry
	err := c.fetch(ctx, vehicleType, &out, "marcas")
	return out, err
}

// Models lists the models of a brand.
func (c *Client) Models(ctx context.Context, vehicleType domain.VehicleType, brand string) (ModelsResult, error) {
	var out ModelsResult
	err := c.fetch(ctx, vehicleType, &out, "marcas", brand, "modelos")
	return out, err
}

// Years lists the model years available for a model.
func (c *Client) Years(ctx context.Context, vehicleType domain.VehicleType, brand, model string) ([]domain.CatalogEntry, error) {
	var out []domain.CatalogEntry
	err := c.fetch(ctx, vehicleType, &out, "marcas", brand, "modelos", model, "anos")
	return out, err
}

// Vehicle returns the reference price record with ReferencePrice parsed.
func (c *Client) Vehicle(ctx context.Context, vehicleType domain.VehicleType, brand, model, year string) (domain.Vehicle, error) {
	var out domain.Vehicle
	if err := c.fetch(ctx, vehicleType, &out, "marcas", brand, "modelos", model, "anos", year); err != nil {
		return domain.Vehicle{}, err
	}
	price, err := pricing.ParseBRL(out.Price)
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	out.ReferencePrice = price
	return out, nil
}

func (c *Client) fetch(ctx context.Context, vehicleType domain.VehicleType, out interface{}, segments ...string) error {
	if !vehicleType.Valid() {
		return ErrInvalidVehicleType
	}
	escaped := make([]string, 0, len(segments)+1)
	escaped = append(escaped, string(vehicleType))
	for _, s := range segments {
		s = strings.TrimSpace(s)
		if s == "" {
			return ErrMissingCode
		}
		escaped = append(escaped, url.PathEscape(s))
	}
	path := strings.Join(escaped, "/")
	key := keyPrefix + strings.ReplaceAll(path, "/", ":")

	if body, ok := c.cached(ctx, key); ok {
		if err := json.Unmarshal(body, out); err == nil {
			return nil
		}
		c.logger.Warn("discarding unreadable cache entry", zap.String("key", key))
	}

	body, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrUpstream, path, err)
	}
	c.store(ctx, key, body)
	return nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveUpstream("fipe", err, time.Since(start))
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.metrics.ObserveUpstream("fipe", err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		c.logger.Warn("fipe request rejected", zap.String("path", path), zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}
	return body, nil
}

func (c *Client) cached(ctx context.Context, key string) ([]byte, bool) {
	if c.cache == nil {
		return nil, false
	}
	body, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	c.metrics.RecordCacheLookup("fipe", ok)
	return body, ok
}

func (c *Client) store(ctx context.Context, key string, body []byte) {
	if c.cache == nil || c.ttl <= 0 {
		return
	}
	if err := c.cache.Set(ctx, key, body, c.ttl); err != nil {
		c.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}
