package services

import (
	"context"
	"fmt"
	"strconv"

	"dropship-pricing-service/internal/events"
	"dropship-pricing-service/internal/models"
	"dropship-pricing-service/internal/pricing"
	"dropship-pricing-service/internal/repository"
	"dropship-pricing-service/internal/rules"

	"github.com/sirupsen/logrus"
)

// RuleList is the admin rule listing with dangling rule warnings
type RuleList struct {
	Rules    []models.PricingRule         `json:"rules"`
	Warnings []pricing.ConsistencyWarning `json:"warnings"`
}

// RuleService manages pricing rules
type RuleService struct {
	repo       repository.RuleRepositoryInterface
	categories repository.CategoryRepositoryInterface
	products   repository.ProductRepositoryInterface
	resolver   *rules.Resolver
	publisher  *events.Publisher
	logger     *logrus.Entry
}

func NewRuleService(
	repo repository.RuleRepositoryInterface,
	categories repository.CategoryRepositoryInterface,
	products repository.ProductRepositoryInterface,
	resolver *rules.Resolver,
	publisher *events.Publisher,
	logger *logrus.Logger,
) *RuleService {
	return &RuleService{
		repo:       repo,
		categories: categories,
		products:   products,
		resolver:   resolver,
		publisher:  publisher,
		logger:     componentLogger(logger, "rule-service"),
	}
}

// List returns rules in creation order and flags the ones whose target is gone
func (s *RuleService) List(ctx context.Context, isActive *bool) (*RuleList, error) {
	all, err := s.repo.List(ctx, isActive)
	if err != nil {
		return nil, err
	}

	categories, err := s.categories.GetAll(ctx, models.CategoryFilters{})
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	categoryIDs := make(map[uint]bool, len(categories))
	for _, c := range categories {
		categoryIDs[c.ID] = true
	}

	var productRefs []uint
	for _, r := range all {
		if r.ProductID != nil {
			productRefs = append(productRefs, *r.ProductID)
		}
	}
	productIDs := map[uint]bool{}
	if len(productRefs) > 0 {
		if productIDs, err = s.products.ExistingIDs(ctx, productRefs); err != nil {
			return nil, fmt.Errorf("load products: %w", err)
		}
	}

	warnings := rules.Dangling(all,
		func(id uint) bool { return categoryIDs[id] },
		func(id uint) bool { return productIDs[id] },
	)
	reportWarnings(s.logger, warnings)
	if warnings == nil {
		warnings = []pricing.ConsistencyWarning{}
	}
	if all == nil {
		all = []models.PricingRule{}
	}
	return &RuleList{Rules: all, Warnings: warnings}, nil
}

// Get returns one rule
func (s *RuleService) Get(ctx context.Context, id uint) (*models.PricingRule, error) {
	rule, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, repository.ErrRuleNotFound, "pricing rule", id)
	}
	return rule, nil
}

// Create validates and stores a rule. Rules are active unless isActive is false.
func (s *RuleService) Create(ctx context.Context, req models.CreatePricingRuleRequest, actor events.Actor) (*models.PricingRule, error) {
	name, err := requireText("name", req.Name)
	if err != nil {
		return nil, err
	}
	rule := &models.PricingRule{
		Name:            name,
		Type:            req.Type,
		CategoryID:      req.CategoryID,
		ProductID:       req.ProductID,
		AdjustmentType:  req.AdjustmentType,
		AdjustmentValue: req.AdjustmentValue,
		IsActive:        true,
		CreatedByID:     actor.ID,
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	if err := rules.Validate(rule); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, rule); err != nil {
		return nil, fmt.Errorf("create pricing rule: %w", err)
	}
	s.publish(ctx, events.PricingRuleCreated, rule, actor)
	return rule, nil
}

// Update applies a partial update. A type change clears targets the new type does not use.
func (s *RuleService) Update(ctx context.Context, id uint, req models.UpdatePricingRuleRequest, actor events.Actor) (*models.PricingRule, error) {
	rule, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name, err := requireText("name", *req.Name)
		if err != nil {
			return nil, err
		}
		rule.Name = name
	}
	if req.Type != nil && *req.Type != rule.Type {
		rule.Type = *req.Type
		rule.CategoryID = nil
		rule.ProductID = nil
	}
	if req.CategoryID != nil {
		rule.CategoryID = req.CategoryID
	}
	if req.ProductID != nil {
		rule.ProductID = req.ProductID
	}
	if req.AdjustmentType != nil {
		rule.AdjustmentType = *req.AdjustmentType
	}
	if req.AdjustmentValue != nil {
		rule.AdjustmentValue = *req.AdjustmentValue
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	if err := rules.Validate(rule); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, rule); err != nil {
		return nil, notFound(err, repository.ErrRuleNotFound, "pricing rule", id)
	}
	s.publish(ctx, events.PricingRuleUpdated, rule, actor)
	return rule, nil
}

// Toggle flips isActive
func (s *RuleService) Toggle(ctx context.Context, id uint, actor events.Actor) (*models.PricingRule, error) {
	rule, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	active := !rule.IsActive
	return s.Update(ctx, id, models.UpdatePricingRuleRequest{IsActive: &active}, actor)
}

// Delete removes a rule
func (s *RuleService) Delete(ctx context.Context, id uint, actor events.Actor) error {
	rule, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFound(err, repository.ErrRuleNotFound, "pricing rule", id)
	}
	s.publish(ctx, events.PricingRuleDeleted, rule, actor)
	return nil
}

// Preview shows which active rules would apply to a base price and the adjusted result
func (s *RuleService) Preview(ctx context.Context, req models.RulePreviewRequest) (*pricing.RuleResult, error) {
	if err := pricing.ValidateAmount("basePrice", req.BasePrice); err != nil {
		return nil, err
	}
	active, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	result := pricing.ApplyRules(req.BasePrice, s.resolver.Select(req.CategoryID, req.ProductID, active))
	return &result, nil
}

func (s *RuleService) publish(ctx context.Context, eventType string, rule *models.PricingRule, actor events.Actor) {
	changes := map[string]interface{}{
		"name":            rule.Name,
		"type":            rule.Type,
		"adjustmentType":  rule.AdjustmentType,
		"adjustmentValue": rule.AdjustmentValue.String(),
		"isActive":        rule.IsActive,
	}
	if rule.CategoryID != nil {
		changes["categoryId"] = *rule.CategoryID
	}
	if rule.ProductID != nil {
		changes["productId"] = *rule.ProductID
	}
	_ = s.publisher.PublishPricing(ctx, eventType, "pricing_rule", strconv.FormatUint(uint64(rule.ID), 10), "", changes, actor)
}
