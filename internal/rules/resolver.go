package rules

import (
	"fmt"
	"sort"

	"dropship-pricing-service/internal/models"
	"dropship-pricing-service/internal/pricing"

	"github.com/shopspring/decimal"
)

var minPercentage = decimal.NewFromInt(-100)

// Ordering decides the order in which selected rules are applied
type Ordering string

const (
	// OrderPrecedence applies global rules first, then category, then product rules,
	// so the most specific rule sees the already adjusted price.
	OrderPrecedence Ordering = "precedence"
	// OrderLegacy sorts by the type name descending: product, global, category.
	OrderLegacy Ordering = "legacy"
)

// ParseOrdering parses "precedence" or "legacy"
func ParseOrdering(s string) (Ordering, error) {
	switch Ordering(s) {
	case OrderPrecedence, OrderLegacy:
		return Ordering(s), nil
	}
	return "", fmt.Errorf("unknown rule ordering %q", s)
}

// Precedence ranks rule types; higher is more specific
type Precedence int

const (
	PrecedenceGlobal   Precedence = 1
	PrecedenceCategory Precedence = 2
	PrecedenceProduct  Precedence = 3
)

// PrecedenceOf returns the rank of a rule type, 0 for unknown types
func PrecedenceOf(t models.RuleType) Precedence {
	switch t {
	case models.RuleTypeGlobal:
		return PrecedenceGlobal
	case models.RuleTypeCategory:
		return PrecedenceCategory
	case models.RuleTypeProduct:
		return PrecedenceProduct
	}
	return 0
}

// Resolver selects and orders the rules that apply to one product
type Resolver struct {
	ordering Ordering
}

// NewResolver creates a resolver; an empty ordering means OrderPrecedence
func NewResolver(ordering Ordering) *Resolver {
	if ordering == "" {
		ordering = OrderPrecedence
	}
	return &Resolver{ordering: ordering}
}

// Ordering returns the configured ordering
func (r *Resolver) Ordering() Ordering {
	return r.ordering
}

// Select returns the active rules matching the product, in application order.
// Global rules always match; category rules match categoryID exactly and do not
// cascade to descendant categories; product rules match productID exactly.
// The input slice is not modified.
func (r *Resolver) Select(categoryID, productID *uint, all []models.PricingRule) []models.PricingRule {
	selected := make([]models.PricingRule, 0, len(all))
	for _, rule := range all {
		if rule.IsActive && matches(rule, categoryID, productID) {
			selected = append(selected, rule)
		}
	}

	sort.SliceStable(selected, func(i, j int) bool {
		a, b := selected[i], selected[j]
		if a.Type != b.Type {
			if r.ordering == OrderLegacy {
				return a.Type > b.Type
			}
			return PrecedenceOf(a.Type) < PrecedenceOf(b.Type)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return selected
}

// Select uses the default precedence ordering
func Select(categoryID, productID *uint, all []models.PricingRule) []models.PricingRule {
	return NewResolver(OrderPrecedence).Select(categoryID, productID, all)
}

func matches(rule models.PricingRule, categoryID, productID *uint) bool {
	switch rule.Type {
	case models.RuleTypeGlobal:
		return true
	case models.RuleTypeCategory:
		return rule.CategoryID != nil && categoryID != nil && *rule.CategoryID == *categoryID
	case models.RuleTypeProduct:
		return rule.ProductID != nil && productID != nil && *rule.ProductID == *productID
	}
	return false
}

// Validate checks the type/target invariant and the adjustment fields of a rule
func Validate(rule *models.PricingRule) error {
	if rule.Name == "" {
		return pricing.NewValidationError("name", "is required")
	}
	switch rule.Type {
	case models.RuleTypeGlobal:
		if rule.CategoryID != nil || rule.ProductID != nil {
			return pricing.NewValidationError("type", "global rules must not target a category or product")
		}
	case models.RuleTypeCategory:
		if rule.CategoryID == nil {
			return pricing.NewValidationError("categoryId", "is required for category rules")
		}
		if rule.ProductID != nil {
			return pricing.NewValidationError("productId", "must be empty for category rules")
		}
	case models.RuleTypeProduct:
		if rule.ProductID == nil {
			return pricing.NewValidationError("productId", "is required for product rules")
		}
		if rule.CategoryID != nil {
			return pricing.NewValidationError("categoryId", "must be empty for product rules")
		}
	default:
		return pricing.NewValidationError("type", "must be one of global, category, product")
	}

	switch rule.AdjustmentType {
	case models.AdjustmentPercentage:
		if rule.AdjustmentValue.LessThan(minPercentage) {
			return pricing.NewValidationError("adjustmentValue", "percentage must not be below -100")
		}
	case models.AdjustmentFixed:
	default:
		return pricing.NewValidationError("adjustmentType", "must be one of percentage, fixed")
	}
	return nil
}

// Dangling reports rules whose category or product no longer exists.
// Such rules never match a live product and are left in place.
func Dangling(all []models.PricingRule, categoryExists, productExists func(uint) bool) []pricing.ConsistencyWarning {
	var warnings []pricing.ConsistencyWarning
	for _, rule := range all {
		var entity string
		var ref uint
		switch {
		case rule.Type == models.RuleTypeCategory && rule.CategoryID != nil && !categoryExists(*rule.CategoryID):
			entity, ref = "category", *rule.CategoryID
		case rule.Type == models.RuleTypeProduct && rule.ProductID != nil && !productExists(*rule.ProductID):
			entity, ref = "product", *rule.ProductID
		default:
			continue
		}
		warnings = append(warnings, pricing.ConsistencyWarning{
			Kind:      pricing.WarningDanglingRule,
			Entity:    "pricing_rule",
			ID:        fmt.Sprint(rule.ID),
			Reference: fmt.Sprint(ref),
			Message:   fmt.Sprintf("rule targets missing %s; it has no effect", entity),
		})
	}
	return warnings
}
