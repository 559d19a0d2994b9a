package services

import (
	"context"
	"fmt"

	"dropship-pricing-service/internal/events"
	"dropship-pricing-service/internal/metrics"
	"dropship-pricing-service/internal/models"
	"dropship-pricing-service/internal/pricing"
	"dropship-pricing-service/internal/repository"
	"dropship-pricing-service/internal/rules"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// CalculationResult is the answer of the stateless price calculator
type CalculationResult struct {
	Rules    pricing.RuleResult `json:"rules"`
	Quote    pricing.Quote      `json:"quote"`
	Settings pricing.Settings   `json:"settings"`
}

// SettingsService manages the global pricing settings and the stateless calculator
type SettingsService struct {
	repo       repository.SettingsRepositoryInterface
	categories repository.CategoryRepositoryInterface
	rules      repository.RuleRepositoryInterface
	resolver   *rules.Resolver
	publisher  *events.Publisher
	logger     *logrus.Entry
}

func NewSettingsService(
	repo repository.SettingsRepositoryInterface,
	categories repository.CategoryRepositoryInterface,
	ruleRepo repository.RuleRepositoryInterface,
	resolver *rules.Resolver,
	publisher *events.Publisher,
	logger *logrus.Logger,
) *SettingsService {
	return &SettingsService{
		repo:       repo,
		categories: categories,
		rules:      ruleRepo,
		resolver:   resolver,
		publisher:  publisher,
		logger:     componentLogger(logger, "settings-service"),
	}
}

// Get returns the stored settings
func (s *SettingsService) Get(ctx context.Context) (*models.GlobalPricingSettings, error) {
	return s.repo.Get(ctx)
}

// Update validates and stores a partial settings update. Last write wins.
func (s *SettingsService) Update(ctx context.Context, req models.UpdatePricingSettingsRequest, actor events.Actor) (*models.GlobalPricingSettings, error) {
	current, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	updated := *current
	changes := map[string]interface{}{}
	if req.CurrencyConversion != nil {
		updated.CurrencyConversion = *req.CurrencyConversion
		changes["currencyConversion"] = req.CurrencyConversion.String()
	}
	if req.ShippingCost != nil {
		updated.ShippingCost = *req.ShippingCost
		changes["shippingCost"] = req.ShippingCost.String()
	}
	if req.DefaultMargin != nil {
		updated.DefaultMargin = *req.DefaultMargin
		changes["defaultMargin"] = req.DefaultMargin.String()
	}
	if err := pricing.SettingsFromModel(updated).Validate(); err != nil {
		return nil, err
	}

	updated.UpdatedByID = actor.ID
	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("update pricing settings: %w", err)
	}
	_ = s.publisher.PublishPricing(ctx, events.PricingSettingsUpdated, "settings", "settings", "", changes, actor)
	return &updated, nil
}

// Calculate prices one item from explicit inputs. Omitted settings fall back to the stored
// ones. Rules are applied to the admin price only when ApplyRules is set and no custom
// price is given.
func (s *SettingsService) Calculate(ctx context.Context, req models.CalculatePriceRequest) (*CalculationResult, error) {
	inputs, err := loadPricingInputs(ctx, s.repo, s.categories, s.rules)
	if err != nil {
		return nil, err
	}

	settings := inputs.settings
	if req.CurrencyConversion != nil {
		settings.CurrencyConversion = *req.CurrencyConversion
	}
	if req.ShippingCost != nil {
		settings.ShippingCost = *req.ShippingCost
	}
	if req.DefaultMargin != nil {
		settings.DefaultMargin = *req.DefaultMargin
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if err := pricing.ValidateAmount("adminPrice", req.AdminPrice); err != nil {
		return nil, err
	}

	mode, err := requestMode(req.CustomMargin, req.CustomPrice)
	if err != nil {
		return nil, err
	}

	var selected []models.PricingRule
	if req.ApplyRules && mode.Kind() != pricing.ModeFixedPrice {
		selected = s.resolver.Select(req.CategoryID, req.ProductID, inputs.rules)
	}
	ruleResult := pricing.ApplyRules(req.AdminPrice, selected)
	recordRules(ruleResult.AppliedRules)
	if req.CustomShippingFee != nil {
		if err := pricing.ValidateAmount("customShippingFee", *req.CustomShippingFee); err != nil {
			return nil, err
		}
	}

	quote, err := pricing.Calculate(pricing.Input{
		AdminPrice:        ruleResult.FinalPrice,
		CategoryID:        req.CategoryID,
		Mode:              mode,
		CustomShippingFee: req.CustomShippingFee,
	}, settings, inputs.lookup)
	if err != nil {
		return nil, err
	}
	metrics.CalculationsTotal.WithLabelValues(string(quote.Mode)).Inc()

	return &CalculationResult{Rules: ruleResult, Quote: quote, Settings: settings}, nil
}

// requestMode picks the pricing mode of an explicit calculation; a custom price wins
func requestMode(customMargin, customPrice *decimal.Decimal) (pricing.Mode, error) {
	var mode pricing.Mode = pricing.Inherited{}
	switch {
	case customPrice != nil:
		mode = pricing.FixedPrice{Price: *customPrice}
	case customMargin != nil:
		mode = pricing.Margin{Percent: *customMargin}
	}
	return mode, pricing.ValidateMode(mode)
}

func recordRules(applied []models.PricingRule) {
	for _, r := range applied {
		metrics.RulesAppliedTotal.WithLabelValues(string(r.Type)).Inc()
	}
}
