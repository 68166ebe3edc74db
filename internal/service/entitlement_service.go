package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/vehicle-pricing/internal/commerce"
	"github.com/spec-kit/vehicle-pricing/internal/config"
	"github.com/spec-kit/vehicle-pricing/internal/domain"
	"github.com/spec-kit/vehicle-pricing/internal/events"
	"github.com/spec-kit/vehicle-pricing/internal/observability"
)

var (
	// ErrEmailRequired is returned before any outbound call when the email is blank.
	ErrEmailRequired = errors.New("email is required")
	// ErrConfiguration means commerce credentials or the primary product id are missing.
	ErrConfiguration = errors.New("entitlement resolver is not configured")
	// ErrAuthentication means the commerce platform did not issue a token.
	ErrAuthentication = commerce.ErrAuthentication
)

// CommerceGateway is the subset of the commerce client the resolver needs.
type CommerceGateway interface {
	Authenticate(ctx context.Context) (string, error)
	SalesHistory(ctx context.Context, token string, params url.Values) ([]domain.SaleRecord, error)
}

// EntitlementDependencies encapsulates collaborators for the entitlement service.
type EntitlementDependencies struct {
	Gateway    CommerceGateway
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

// EntitlementService decides whether an email may use the calculator by
// reading the purchase history of the configured products.
type EntitlementService struct {
	commerce   config.CommerceConfig
	bypass     map[string]struct{}
	gateway    CommerceGateway
	strategies []commerce.Strategy
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	now        func() time.Time
}

// NewEntitlementService builds the service.
func NewEntitlementService(cfg config.Config, deps EntitlementDependencies) *EntitlementService {
	bypass := make(map[string]struct{}, len(cfg.Auth.BypassEmails))
	for _, email := range cfg.Auth.BypassEmails {
		bypass[strings.ToLower(strings.TrimSpace(email))] = struct{}{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EntitlementService{
		commerce:   cfg.Commerce,
		bypass:     bypass,
		gateway:    deps.Gateway,
		strategies: commerce.Strategies(cfg.Commerce.HistoryLookback),
		dispatcher: deps.Dispatcher,
		logger:     logger,
		metrics:    deps.Metrics,
		now:        time.Now,
	}
}

// Resolve runs the entitlement check for email. Only configuration and
// authentication failures are returned as errors; a missing purchase is a
// denied decision.
func (s *EntitlementService) Resolve(ctx context.Context, email string) (domain.EntitlementDecision, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.Denied(), ErrEmailRequired
	}
	masked := observability.MaskEmail(email)

	if _, ok := s.bypass[strings.ToLower(email)]; ok {
		decision := domain.EntitlementDecision{HasAccess: true, Status: domain.StatusBypass}
		s.logger.Info("entitlement granted to bypass email", zap.String("email", masked))
		s.finish(ctx, masked, decision)
		return decision, nil
	}

	if err := s.commerce.Validate(); err != nil {
		s.logger.Error("entitlement resolver misconfigured", zap.Error(err))
		s.fail(ctx, masked, "config_error")
		return domain.Denied(), fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	token, err := s.gateway.Authenticate(ctx)
	if err != nil {
		s.fail(ctx, masked, "auth_error")
		if !errors.Is(err, ErrAuthentication) {
			err = fmt.Errorf("%w: %v", ErrAuthentication, err)
		}
		return domain.Denied(), err
	}

	for _, productID := range s.commerce.ProductIDs() {
		decision := s.checkProduct(ctx, token, email, productID)
		if decision.HasAccess {
			s.finish(ctx, masked, decision)
			return decision, nil
		}
	}

	decision := domain.Denied()
	s.finish(ctx, masked, decision)
	return decision, nil
}

func (s *EntitlementService) checkProduct(ctx context.Context, token, email, productID string) domain.EntitlementDecision {
	records, strategy := s.findSales(ctx, token, email, productID)
	if len(records) == 0 {
		return domain.Denied()
	}
	s.metrics.RecordStrategyHit(strategy)

	latest, granted := Reconcile(records, s.commerce.InvalidStatusVeto)
	s.logger.Debug("sales reconciled",
		zap.String("product_id", productID),
		zap.String("strategy", strategy),
		zap.Int("records", len(records)),
		zap.String("latest_status", string(latest.Status)),
		zap.Bool("granted", granted))
	if !granted {
		return domain.Denied()
	}
	return domain.EntitlementDecision{
		HasAccess: true,
		Status:    latest.Status,
		ProductID: productID,
		Strategy:  strategy,
	}
}

// findSales tries each strategy in order and returns the first non-empty
// batch, status-less records included. A failing strategy counts as "no
// records".
func (s *EntitlementService) findSales(ctx context.Context, token, email, productID string) ([]domain.SaleRecord, string) {
	now := s.now()
	for _, strategy := range s.strategies {
		records, err := s.gateway.SalesHistory(ctx, token, strategy.Params(email, productID, now))
		if err != nil {
			s.logger.Warn("sales history strategy failed",
				zap.String("strategy", strategy.Name),
				zap.String("product_id", productID),
				zap.Error(err))
			continue
		}
		if len(records) > 0 {
			return records, strategy.Name
		}
	}
	return nil, ""
}

// Reconcile picks the most recent record with a status and decides access.
// Access requires a valid latest status; with veto enabled any invalid
// status in the batch denies access as well.
func Reconcile(records []domain.SaleRecord, veto bool) (domain.SaleRecord, bool) {
	candidates := make([]domain.SaleRecord, 0, len(records))
	for _, r := range records {
		if r.Status != "" {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return domain.SaleRecord{}, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].RecencyTime().After(candidates[j].RecencyTime())
	})
	latest := candidates[0]
	if !latest.Status.IsValid() {
		return latest, false
	}
	if veto {
		for _, r := range candidates {
			if r.Status.IsInvalid() {
				return latest, false
			}
		}
	}
	return latest, true
}

func (s *EntitlementService) finish(ctx context.Context, masked string, decision domain.EntitlementDecision) {
	eventType := events.EventEntitlementDenied
	outcome := "denied"
	if decision.HasAccess {
		eventType = events.EventEntitlementGranted
		outcome = "granted"
	}
	s.metrics.RecordEntitlement(outcome)
	s.publish(ctx, events.New(eventType, events.EntitlementPayload{
		MaskedEmail: masked,
		ProductID:   decision.ProductID,
		Status:      string(decision.Status),
		Strategy:    decision.Strategy,
	}))
}

func (s *EntitlementService) fail(ctx context.Context, masked, reason string) {
	s.metrics.RecordEntitlement(reason)
	s.publish(ctx, events.New(events.EventEntitlementFailed, events.EntitlementPayload{
		MaskedEmail: masked,
		Reason:      reason,
	}))
}

func (s *EntitlementService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
