// Package techsheet proxies prompts to the generative model and builds
// cached vehicle technical sheets from its answers.
package techsheet

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spec-kit/vehicle-pricing/internal/config"
	"github.com/spec-kit/vehicle-pricing/internal/observability"
)

var (
	ErrNotConfigured  = errors.New("generative model is not configured")
	ErrPromptRequired = errors.New("prompt is required")
)

// UpstreamError carries the status the model provider answered with.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("generative model error (status %d): %s", e.Status, e.Message)
}

// Generator produces model content for a prompt. A non-nil schema asks for
// JSON that conforms to it.
type Generator interface {
	Generate(ctx context.Context, prompt string, schema *genai.Schema) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator calls the Gemini API.
type GeminiGenerator struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewGeminiGenerator builds a generator. Without an API key the generator is
// created but every call fails with ErrNotConfigured.
func NewGeminiGenerator(ctx context.Context, cfg config.GeminiConfig, logger *zap.Logger, metrics *observability.Metrics) (*GeminiGenerator, error) {
	g := &GeminiGenerator{
		model:   cfg.Model,
		timeout: cfg.RequestTimeout,
		logger:  logger,
		metrics: metrics,
	}
	if g.model == "" {
		g.model = config.DefaultGeminiModel
	}
	if cfg.APIKey == "" {
		logger.Warn("GEMINI_API_KEY not provided; generative endpoints disabled")
		return g, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	g.client = client
	return g, nil
}

// Generate implements Generator.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, schema *genai.Schema) (*genai.GenerateContentResponse, error) {
	if g.client == nil {
		return nil, ErrNotConfigured
	}
	if prompt == "" {
		return nil, ErrPromptRequired
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	var genCfg *genai.GenerateContentConfig
	if schema != nil {
		genCfg = &genai.GenerateContentConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   schema,
		}
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), genCfg)
	g.metrics.ObserveUpstream("gemini", err, time.Since(start))
	if err != nil {
		g.logger.Warn("generative model call failed", zap.String("model", g.model), zap.Error(err))
		return nil, toUpstreamError(err)
	}
	return resp, nil
}

func toUpstreamError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.Code
		if status < 400 {
			status = http.StatusBadGateway
		}
		return &UpstreamError{Status: status, Message: apiErr.Message}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &UpstreamError{Status: http.StatusGatewayTimeout, Message: "generative model timed out"}
	}
	return &UpstreamError{Status: http.StatusBadGateway, Message: err.Error()}
}
