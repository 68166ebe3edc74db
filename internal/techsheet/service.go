package techsheet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/vehicle-pricing/internal/domain"
	"github.com/spec-kit/vehicle-pricing/internal/events"
)

var (
	ErrInvalidRequest = errors.New("brand, model and model year are required")
	ErrInvalidSheet   = errors.New("generative model returned an unreadable sheet")
)

// Repository caches generated sheets.
type Repository interface {
	Get(ctx context.Context, key string) (domain.TechSheet, bool, error)
	Save(ctx context.Context, sheet domain.TechSheet) error
}

// Request identifies the vehicle a sheet is wanted for.
type Request struct {
	Brand     string
	Model     string
	ModelYear int
	FipeCode  string
}

// Key is the cache key: FIPE code and year when the code is known,
// otherwise the normalised brand, model and year.
func (r Request) Key() string {
	year := strconv.Itoa(r.ModelYear)
	if code := strings.TrimSpace(r.FipeCode); code != "" {
		return code + ":" + year
	}
	name := strings.ToLower(strings.Join(strings.Fields(r.Brand+" "+r.Model), " "))
	return name + ":" + year
}

// Service returns technical sheets, generating them on a cache miss.
type Service struct {
	generator  Generator
	repo       Repository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	model      string
}

// NewService wires the service. repo and dispatcher may be nil.
func NewService(generator Generator, repo Repository, dispatcher events.Dispatcher, logger *zap.Logger, model string) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{generator: generator, repo: repo, dispatcher: dispatcher, logger: logger, model: model}
}

// Get returns the sheet for req and whether it came from the cache.
func (s *Service) Get(ctx context.Context, req Request) (domain.TechSheet, bool, error) {
	req.Brand = strings.TrimSpace(req.Brand)
	req.Model = strings.TrimSpace(req.Model)
	if req.Brand == "" || req.Model == "" || req.ModelYear <= 0 {
		return domain.TechSheet{}, false, ErrInvalidRequest
	}
	key := req.Key()

	if s.repo != nil {
		sheet, ok, err := s.repo.Get(ctx, key)
		switch {
		case err != nil:
			s.logger.Warn("tech sheet cache read failed", zap.String("key", key), zap.Error(err))
		case ok:
			s.publish(ctx, sheet, true)
			return sheet, true, nil
		}
	}

	resp, err := s.generator.Generate(ctx, Prompt(req), SheetSchema())
	if err != nil {
		return domain.TechSheet{}, false, err
	}
	raw := strings.TrimSpace(resp.Text())
	if raw == "" || !json.Valid([]byte(raw)) {
		return domain.TechSheet{}, false, ErrInvalidSheet
	}

	sheet := domain.TechSheet{
		Key:       key,
		FipeCode:  strings.TrimSpace(req.FipeCode),
		ModelYear: req.ModelYear,
		Brand:     req.Brand,
		Model:     req.Model,
		Sheet:     json.RawMessage(raw),
		ModelName: s.model,
	}
	if s.repo != nil {
		if err := s.repo.Save(ctx, sheet); err != nil {
			s.logger.Warn("tech sheet cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	s.publish(ctx, sheet, false)
	return sheet, false, nil
}

// Prompt is the instruction sent to the model for one vehicle.
func Prompt(req Request) string {
	return fmt.Sprintf("Gere a ficha técnica para o veículo %s %s ano %d. "+
		"Preencha o máximo de campos possível. Se uma informação não for encontrada, retorne 'N/A'.",
		req.Brand, req.Model, req.ModelYear)
}

func (s *Service) publish(ctx context.Context, sheet domain.TechSheet, cached bool) {
	if s.dispatcher == nil {
		return
	}
	err := s.dispatcher.Publish(ctx, events.New(events.EventTechSheetGenerated, events.TechSheetGeneratedPayload{
		Key:    sheet.Key,
		Brand:  sheet.Brand,
		Model:  sheet.Model,
		Cached: cached,
	}))
	if err != nil {
		s.logger.Warn("event handler failed", zap.Error(err))
	}
}
