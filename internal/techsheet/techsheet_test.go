package techsheet

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spec-kit/vehicle-pricing/internal/config"
	"github.com/spec-kit/vehicle-pricing/internal/domain"
	"github.com/spec-kit/vehicle-pricing/internal/events"
)

type fakeGenerator struct {
	text   string
	err    error
	calls  int
	prompt string
	schema *genai.Schema
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string, schema *genai.Schema) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.prompt = prompt
	f.schema = schema
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: f.text}}},
		}},
	}, nil
}

type fakeRepo struct {
	items   map[string]domain.TechSheet
	getErr  error
	saveErr error
}

func (r *fakeRepo) Get(_ context.Context, key string) (domain.TechSheet, bool, error) {
	if r.getErr != nil {
		return domain.TechSheet{}, false, r.getErr
	}
	s, ok := r.items[key]
	return s, ok, nil
}

func (r *fakeRepo) Save(_ context.Context, sheet domain.TechSheet) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.items[sheet.Key] = sheet
	return nil
}

var gol = Request{Brand: "VW - VolksWagen", Model: "Gol 1.0", ModelYear: 2020, FipeCode: "005340-6"}

func TestService_GeneratesAndCaches(t *testing.T) {
	gen := &fakeGenerator{text: `{"motor":{"tipo":"1.0 Flex"}}`}
	repo := &fakeRepo{items: map[string]domain.TechSheet{}}
	dispatcher := events.NewInMemoryDispatcher()
	var cachedFlags []bool
	dispatcher.Subscribe(events.EventTechSheetGenerated, func(_ context.Context, e events.Event) error {
		cachedFlags = append(cachedFlags, e.Payload.(events.TechSheetGeneratedPayload).Cached)
		return nil
	})
	svc := NewService(gen, repo, dispatcher, zap.NewNop(), "gemini-2.5-pro")

	sheet, cached, err := svc.Get(context.Background(), gol)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "005340-6:2020", sheet.Key)
	assert.JSONEq(t, `{"motor":{"tipo":"1.0 Flex"}}`, string(sheet.Sheet))
	assert.Contains(t, gen.prompt, "VW - VolksWagen Gol 1.0 ano 2020")
	require.NotNil(t, gen.schema)
	assert.Len(t, gen.schema.Properties, 8)

	_, cached, err = svc.Get(context.Background(), gol)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, []bool{false, true}, cachedFlags)
}

func TestService_CacheFailuresDoNotBlock(t *testing.T) {
	gen := &fakeGenerator{text: `{}`}
	repo := &fakeRepo{items: map[string]domain.TechSheet{}, getErr: errors.New("db down"), saveErr: errors.New("db down")}
	svc := NewService(gen, repo, nil, nil, "m")

	_, cached, err := svc.Get(context.Background(), gol)
	require.NoError(t, err)
	assert.False(t, cached)
}

func TestService_Errors(t *testing.T) {
	svc := NewService(&fakeGenerator{text: "not json"}, nil, nil, nil, "m")
	_, _, err := svc.Get(context.Background(), gol)
	assert.ErrorIs(t, err, ErrInvalidSheet)

	_, _, err = svc.Get(context.Background(), Request{Brand: "Fiat"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	upstream := &UpstreamError{Status: http.StatusTooManyRequests, Message: "quota"}
	svc = NewService(&fakeGenerator{err: upstream}, nil, nil, nil, "m")
	_, _, err = svc.Get(context.Background(), gol)
	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusTooManyRequests, ue.Status)
}

func TestRequestKey(t *testing.T) {
	assert.Equal(t, "005340-6:2020", gol.Key())
	assert.Equal(t, "fiat uno mille:2010", Request{Brand: " Fiat ", Model: "Uno  Mille", ModelYear: 2010}.Key())
}

func TestParseSchema(t *testing.T) {
	s, err := ParseSchema(json.RawMessage(`{"type":"OBJECT","properties":{"tipo":{"type":"STRING"}}}`))
	require.NoError(t, err)
	assert.Equal(t, genai.TypeObject, s.Type)
	assert.Equal(t, genai.TypeString, s.Properties["tipo"].Type)

	s, err = ParseSchema(nil)
	assert.NoError(t, err)
	assert.Nil(t, s)

	_, err = ParseSchema(json.RawMessage(`[`))
	assert.Error(t, err)
}

func TestGeminiGenerator_WithoutKey(t *testing.T) {
	g, err := NewGeminiGenerator(context.Background(), config.GeminiConfig{}, zap.NewNop(), nil)
	require.NoError(t, err)
	_, err = g.Generate(context.Background(), "oi", nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestToUpstreamError(t *testing.T) {
	var ue *UpstreamError

	require.ErrorAs(t, toUpstreamError(genai.APIError{Code: 429, Message: "quota"}), &ue)
	assert.Equal(t, 429, ue.Status)

	require.ErrorAs(t, toUpstreamError(context.DeadlineExceeded), &ue)
	assert.Equal(t, http.StatusGatewayTimeout, ue.Status)

	require.ErrorAs(t, toUpstreamError(errors.New("boom")), &ue)
	assert.Equal(t, http.StatusBadGateway, ue.Status)
}
