package rules

import (
	"errors"
	"testing"
	"time"

	"dropship-pricing-service/internal/models"
	"dropship-pricing-service/internal/pricing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func ptr(v uint) *uint {
	return &v
}

func newRule(id uint, ruleType models.RuleType, target *uint, createdMinutes int) models.PricingRule {
	r := models.PricingRule{
		ID:              id,
		Name:            "rule",
		Type:            ruleType,
		AdjustmentType:  models.AdjustmentPercentage,
		AdjustmentValue: decimal.NewFromInt(1),
		IsActive:        true,
		CreatedAt:       epoch.Add(time.Duration(createdMinutes) * time.Minute),
	}
	switch ruleType {
	case models.RuleTypeCategory:
		r.CategoryID = target
	case models.RuleTypeProduct:
		r.ProductID = target
	}
	return r
}

func ruleIDs(rules []models.PricingRule) []uint {
	out := make([]uint, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.ID)
	}
	return out
}

func mixedRules() []models.PricingRule {
	return []models.PricingRule{
		newRule(1, models.RuleTypeCategory, ptr(7), 0),
		newRule(2, models.RuleTypeGlobal, nil, 5),
		newRule(3, models.RuleTypeProduct, ptr(42), 1),
		newRule(4, models.RuleTypeGlobal, nil, 2),
		newRule(5, models.RuleTypeCategory, ptr(8), 0),
		newRule(6, models.RuleTypeProduct, ptr(43), 0),
		newRule(7, models.RuleTypeProduct, ptr(42), 0),
	}
}

func TestSelect_PrecedenceOrdering(t *testing.T) {
	selected := NewResolver(OrderPrecedence).Select(ptr(7), ptr(42), mixedRules())
	// global (oldest first), category, product (oldest first)
	assert.Equal(t, []uint{4, 2, 1, 7, 3}, ruleIDs(selected))
}

func TestSelect_LegacyOrdering(t *testing.T) {
	selected := NewResolver(OrderLegacy).Select(ptr(7), ptr(42), mixedRules())
	// "product" > "global" > "category" as plain strings
	assert.Equal(t, []uint{7, 3, 4, 2, 1}, ruleIDs(selected))
}

func TestSelect_TiesBrokenByID(t *testing.T) {
	rules := []models.PricingRule{
		newRule(9, models.RuleTypeGlobal, nil, 0),
		newRule(3, models.RuleTypeGlobal, nil, 0),
	}
	assert.Equal(t, []uint{3, 9}, ruleIDs(Select(nil, nil, rules)))
}

func TestSelect_SkipsInactive(t *testing.T) {
	rules := mixedRules()
	rules[1].IsActive = false
	rules[6].IsActive = false
	assert.Equal(t, []uint{4, 1, 3}, ruleIDs(Select(ptr(7), ptr(42), rules)))
}

func TestSelect_NoMatchesIsEmpty(t *testing.T) {
	rules := []models.PricingRule{newRule(1, models.RuleTypeProduct, ptr(1), 0)}
	selected := Select(ptr(7), ptr(2), rules)
	assert.NotNil(t, selected)
	assert.Empty(t, selected)
}

func TestSelect_Precision(t *testing.T) {
	productRule := newRule(1, models.RuleTypeProduct, ptr(42), 0)
	categoryRule := newRule(2, models.RuleTypeCategory, ptr(7), 0)
	all := []models.PricingRule{productRule, categoryRule}

	for id := uint(0); id < 100; id++ {
		selected := ruleIDs(Select(nil, ptr(id), all))
		if id == 42 {
			assert.Equal(t, []uint{1}, selected)
		} else {
			assert.Empty(t, selected, "product %d", id)
		}
	}

	// 8 and 9 are descendants of 7; category rules do not cascade
	for _, id := range []uint{8, 9, 70} {
		assert.Empty(t, Select(ptr(id), nil, all), "category %d", id)
	}
	assert.Equal(t, []uint{2}, ruleIDs(Select(ptr(7), nil, all)))
	assert.Empty(t, Select(nil, nil, all))
}

func TestSelect_DoesNotModifyInput(t *testing.T) {
	rules := mixedRules()
	Select(ptr(7), ptr(42), rules)
	assert.Equal(t, []uint{1, 2, 3, 4, 5, 6, 7}, ruleIDs(rules))
}

func TestSelect_FeedsApplyRules(t *testing.T) {
	percent := newRule(1, models.RuleTypeGlobal, nil, 0)
	percent.AdjustmentValue = decimal.NewFromInt(10)
	fixed := newRule(2, models.RuleTypeProduct, ptr(42), 0)
	fixed.AdjustmentType = models.AdjustmentFixed
	fixed.AdjustmentValue = decimal.NewFromInt(-5)

	all := []models.PricingRule{fixed, percent}

	precedence := pricing.ApplyRules(decimal.NewFromInt(100), NewResolver(OrderPrecedence).Select(nil, ptr(42), all))
	assert.Equal(t, "105", precedence.FinalPrice.String())

	legacy := pricing.ApplyRules(decimal.NewFromInt(100), NewResolver(OrderLegacy).Select(nil, ptr(42), all))
	assert.Equal(t, "104.5", legacy.FinalPrice.String())
}

func TestParseOrdering(t *testing.T) {
	o, err := ParseOrdering("legacy")
	require.NoError(t, err)
	assert.Equal(t, OrderLegacy, o)

	_, err = ParseOrdering("random")
	assert.Error(t, err)

	assert.Equal(t, OrderPrecedence, NewResolver("").Ordering())
}

func TestValidate(t *testing.T) {
	valid := []models.PricingRule{
		newRule(1, models.RuleTypeGlobal, nil, 0),
		newRule(2, models.RuleTypeCategory, ptr(7), 0),
		newRule(3, models.RuleTypeProduct, ptr(42), 0),
	}
	for _, r := range valid {
		assert.NoError(t, Validate(&r))
	}

	globalWithTarget := newRule(1, models.RuleTypeGlobal, nil, 0)
	globalWithTarget.ProductID = ptr(1)
	categoryWithoutTarget := newRule(2, models.RuleTypeCategory, nil, 0)
	categoryWithProduct := newRule(3, models.RuleTypeCategory, ptr(7), 0)
	categoryWithProduct.ProductID = ptr(1)
	productWithoutTarget := newRule(4, models.RuleTypeProduct, nil, 0)
	unknownType := newRule(5, "seller", nil, 0)
	badAdjustment := newRule(6, models.RuleTypeGlobal, nil, 0)
	badAdjustment.AdjustmentType = "ratio"
	belowMinus100 := newRule(7, models.RuleTypeGlobal, nil, 0)
	belowMinus100.AdjustmentValue = decimal.NewFromInt(-101)
	unnamed := newRule(8, models.RuleTypeGlobal, nil, 0)
	unnamed.Name = ""

	invalid := []struct {
		field string
		rule  models.PricingRule
	}{
		{"type", globalWithTarget},
		{"categoryId", categoryWithoutTarget},
		{"productId", categoryWithProduct},
		{"productId", productWithoutTarget},
		{"type", unknownType},
		{"adjustmentType", badAdjustment},
		{"adjustmentValue", belowMinus100},
		{"name", unnamed},
	}
	for _, tc := range invalid {
		err := Validate(&tc.rule)
		require.Error(t, err, tc.field)
		var validationErr *pricing.ValidationError
		require.True(t, errors.As(err, &validationErr))
		assert.Equal(t, tc.field, validationErr.Field)
	}
}

func TestDangling(t *testing.T) {
	rules := []models.PricingRule{
		newRule(1, models.RuleTypeGlobal, nil, 0),
		newRule(2, models.RuleTypeCategory, ptr(7), 0),
		newRule(3, models.RuleTypeCategory, ptr(8), 0),
		newRule(4, models.RuleTypeProduct, ptr(42), 0),
		newRule(5, models.RuleTypeProduct, ptr(43), 0),
	}
	categoryExists := func(id uint) bool { return id == 7 }
	productExists := func(id uint) bool { return id == 42 }

	warnings := Dangling(rules, categoryExists, productExists)
	require.Len(t, warnings, 2)
	assert.Equal(t, pricing.WarningDanglingRule, warnings[0].Kind)
	assert.Equal(t, "3", warnings[0].ID)
	assert.Equal(t, "8", warnings[0].Reference)
	assert.Equal(t, "5", warnings[1].ID)
}
