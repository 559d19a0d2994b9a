package catalog

import (
	"fmt"

	"dropship-pricing-service/internal/models"
	"dropship-pricing-service/internal/pricing"
	"dropship-pricing-service/internal/rules"

	"github.com/shopspring/decimal"
)

// MergedProduct is one row of a seller's catalog view
type MergedProduct struct {
	models.Product
	BasePrice         decimal.Decimal              `json:"basePrice"`
	CustomMargin      *decimal.Decimal             `json:"customMargin"`
	CustomPrice       *decimal.Decimal             `json:"customPrice"`
	CustomShippingFee *decimal.Decimal             `json:"customShippingFee"`
	IsSelected        bool                         `json:"isSelected"`
	PricingMode       pricing.ModeKind             `json:"pricingMode"`
	EffectiveMargin   decimal.Decimal              `json:"effectiveMargin"`
	MarginSource      pricing.MarginSource         `json:"marginSource"`
	ShippingFee       decimal.Decimal              `json:"shippingFee"`
	SellerPrice       decimal.Decimal              `json:"sellerPrice"`
	AppliedRuleIDs    []uint                       `json:"appliedRuleIds"`
	Warnings          []pricing.ConsistencyWarning `json:"warnings,omitempty"`
}

// Input is everything Merge reads. Overrides belong to one seller and are keyed by product id.
type Input struct {
	Products  []models.Product
	Overrides map[uint]models.SellerProductOverride
	Settings  pricing.Settings
	Lookup    pricing.MarginLookup
	Rules     []models.PricingRule
	Resolver  *rules.Resolver
}

// IndexOverrides keys a seller's overrides by product id
func IndexOverrides(overrides []models.SellerProductOverride) map[uint]models.SellerProductOverride {
	index := make(map[uint]models.SellerProductOverride, len(overrides))
	for _, o := range overrides {
		index[o.ProductID] = o
	}
	return index
}

// Merge builds the seller catalog view. Each product's admin price is first adjusted by its
// applicable rules, then priced through pricing.Calculate with the seller's override.
// Products without an override row are unselected and inherit their pricing.
// Merge is read-only; it never creates override rows.
func Merge(in Input, showSelected bool) ([]MergedProduct, error) {
	if err := in.Settings.Validate(); err != nil {
		return nil, err
	}
	resolver := in.Resolver
	if resolver == nil {
		resolver = rules.NewResolver(rules.OrderPrecedence)
	}

	out := make([]MergedProduct, 0, len(in.Products))
	for _, p := range in.Products {
		var override *models.SellerProductOverride
		if o, ok := in.Overrides[p.ID]; ok {
			override = &o
		}
		if showSelected && (override == nil || !override.IsSelected) {
			continue
		}

		item, err := mergeOne(p, override, in, resolver)
		if err != nil {
			return nil, fmt.Errorf("product %d: %w", p.ID, err)
		}
		out = append(out, item)
	}
	return out, nil
}

func mergeOne(p models.Product, override *models.SellerProductOverride, in Input, resolver *rules.Resolver) (MergedProduct, error) {
	item := MergedProduct{Product: p, AppliedRuleIDs: []uint{}}

	if p.CategoryID != nil {
		if _, ok := in.Lookup[*p.CategoryID]; !ok {
			item.Warnings = append(item.Warnings, pricing.ConsistencyWarning{
				Kind:      pricing.WarningMissingCategory,
				Entity:    "product",
				ID:        fmt.Sprint(p.ID),
				Reference: fmt.Sprint(*p.CategoryID),
				Message:   "product category not found; global pricing defaults applied",
			})
		}
	}

	if err := pricing.ValidateAmount("adminPrice", p.AdminPrice); err != nil {
		return item, err
	}
	mode := pricing.ModeOf(override)
	// a fixed price is used verbatim, so rules never touch it
	var selected []models.PricingRule
	if mode.Kind() != pricing.ModeFixedPrice {
		selected = resolver.Select(p.CategoryID, &p.ID, in.Rules)
	}
	adjusted := pricing.ApplyRules(p.AdminPrice, selected)
	for _, r := range adjusted.AppliedRules {
		item.AppliedRuleIDs = append(item.AppliedRuleIDs, r.ID)
	}
	item.BasePrice = adjusted.FinalPrice

	calc := pricing.Input{
		AdminPrice: adjusted.FinalPrice,
		CategoryID: p.CategoryID,
		Mode:       mode,
	}
	if override != nil {
		item.CustomMargin = override.CustomMargin
		item.CustomPrice = override.CustomPrice
		item.CustomShippingFee = override.CustomShippingFee
		item.IsSelected = override.IsSelected
		calc.CustomShippingFee = override.CustomShippingFee
	}

	quote, err := pricing.Calculate(calc, in.Settings, in.Lookup)
	if err != nil {
		return item, err
	}
	item.PricingMode = quote.Mode
	item.EffectiveMargin = quote.Margin
	item.MarginSource = quote.MarginSource
	item.ShippingFee = quote.ShippingFee
	item.SellerPrice = quote.SellerPrice
	return item, nil
}
