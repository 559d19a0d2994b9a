package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dropship-pricing-service/internal/hierarchy"
	"dropship-pricing-service/internal/models"
	"dropship-pricing-service/internal/pricing"
	"dropship-pricing-service/internal/repository"
)

// pricingInputs is the request-scoped snapshot every price computation reads
type pricingInputs struct {
	settings pricing.Settings
	lookup   pricing.MarginLookup
	rules    []models.PricingRule
}

func loadPricingInputs(
	ctx context.Context,
	settingsRepo repository.SettingsRepositoryInterface,
	categoryRepo repository.CategoryRepositoryInterface,
	ruleRepo repository.RuleRepositoryInterface,
) (*pricingInputs, error) {
	stored, err := settingsRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pricing settings: %w", err)
	}
	settings := pricing.SettingsFromModel(*stored)

	categories, err := categoryRepo.GetAll(ctx, models.CategoryFilters{})
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	active, err := ruleRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pricing rules: %w", err)
	}

	return &pricingInputs{
		settings: settings,
		lookup:   hierarchy.Build(categories).MarginLookup(settings),
		rules:    active,
	}, nil
}

// ErrorDetail maps an error onto the API error body.
// Validation failures carry their field; missing entities become <ENTITY>_NOT_FOUND.
func ErrorDetail(err error) models.Error {
	var verr *pricing.ValidationError
	if errors.As(err, &verr) {
		return models.Error{Code: "VALIDATION_ERROR", Message: verr.Message, Field: verr.Field}
	}
	var nerr *pricing.NotFoundError
	if errors.As(err, &nerr) {
		return models.Error{Code: notFoundCode(nerr.Entity), Message: nerr.Error()}
	}
	return models.Error{Code: "INTERNAL_ERROR", Message: err.Error()}
}

var codeReplacer = strings.NewReplacer(" ", "_", "-", "_")

func notFoundCode(entity string) string {
	return strings.ToUpper(codeReplacer.Replace(entity)) + "_NOT_FOUND"
}
