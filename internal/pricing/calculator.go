package pricing

import (
	"dropship-pricing-service/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// RuleResult is the outcome of folding a rule list over a base price
type RuleResult struct {
	BasePrice            decimal.Decimal      `json:"basePrice"`
	FinalPrice           decimal.Decimal      `json:"finalPrice"`
	AppliedRules         []models.PricingRule `json:"appliedRules"`
	TotalAdjustment      decimal.Decimal      `json:"totalAdjustment"`
	AdjustmentPercentage decimal.Decimal      `json:"adjustmentPercentage"`
}

// ApplyRules applies rules in order: percentage rules multiply by (1 + value/100),
// fixed rules add value. The final price is clamped at zero, intermediate prices are not.
// AdjustmentPercentage is rounded to 2 decimals and is 0 when basePrice is 0.
func ApplyRules(basePrice decimal.Decimal, rules []models.PricingRule) RuleResult {
	price := basePrice
	applied := make([]models.PricingRule, 0, len(rules))
	for _, rule := range rules {
		switch rule.AdjustmentType {
		case models.AdjustmentPercentage:
			price = price.Mul(decimal.NewFromInt(1).Add(rule.AdjustmentValue.Shift(-2)))
		case models.AdjustmentFixed:
			price = price.Add(rule.AdjustmentValue)
		default:
			continue
		}
		applied = append(applied, rule)
	}
	if price.IsNegative() {
		price = decimal.Zero
	}

	total := price.Sub(basePrice)
	percentage := decimal.Zero
	if !basePrice.IsZero() {
		percentage = total.Div(basePrice).Mul(hundred).Round(2)
	}

	return RuleResult{
		BasePrice:            basePrice,
		FinalPrice:           price,
		AppliedRules:         applied,
		TotalAdjustment:      total,
		AdjustmentPercentage: percentage,
	}
}

// MarginSource tells where the effective margin came from
type MarginSource string

const (
	MarginFromSeller   MarginSource = "seller"
	MarginFromCategory MarginSource = "category"
	MarginFromGlobal   MarginSource = "global"
	MarginImplied      MarginSource = "implied"
)

// Input describes one seller price calculation
type Input struct {
	AdminPrice        decimal.Decimal
	CategoryID        *uint
	Mode              Mode
	CustomShippingFee *decimal.Decimal
}

// Quote is a seller price with the intermediate values that produced it
type Quote struct {
	AdminPrice   decimal.Decimal `json:"adminPrice"`
	Converted    decimal.Decimal `json:"converted"`
	Margin       decimal.Decimal `json:"margin"`
	MarginSource MarginSource    `json:"marginSource"`
	WithMargin   decimal.Decimal `json:"withMargin"`
	ShippingFee  decimal.Decimal `json:"shippingFee"`
	SellerPrice  decimal.Decimal `json:"sellerPrice"`
	Mode         ModeKind        `json:"mode"`
}

// Calculate computes a seller price.
//
// Margin mode: sellerPrice = adminPrice * conversion * (1 + margin/100) + shippingFee, where
// margin is the seller margin, else the category margin from lookup, else the global default,
// and shippingFee is the custom fee, else the category fee, else the global shipping cost.
//
// Fixed price mode returns the custom price verbatim and reports the implied margin.
func Calculate(in Input, settings Settings, lookup MarginLookup) (Quote, error) {
	if err := settings.Validate(); err != nil {
		return Quote{}, err
	}
	if err := ValidateAmount("adminPrice", in.AdminPrice); err != nil {
		return Quote{}, err
	}
	mode := in.Mode
	if mode == nil {
		mode = Inherited{}
	}
	if err := ValidateMode(mode); err != nil {
		return Quote{}, err
	}

	var terms *CategoryTerms
	if in.CategoryID != nil {
		if t, ok := lookup[*in.CategoryID]; ok {
			terms = &t
		}
	}

	shipping := settings.ShippingCost
	if terms != nil {
		shipping = terms.ShippingFee
	}
	if in.CustomShippingFee != nil {
		if err := ValidateAmount("customShippingFee", *in.CustomShippingFee); err != nil {
			return Quote{}, err
		}
		shipping = *in.CustomShippingFee
	}

	converted := in.AdminPrice.Mul(settings.CurrencyConversion)
	q := Quote{
		AdminPrice:  in.AdminPrice,
		Converted:   converted,
		ShippingFee: shipping,
		Mode:        mode.Kind(),
	}

	if fixed, ok := mode.(FixedPrice); ok {
		q.SellerPrice = fixed.Price
		q.Margin = ImpliedMargin(fixed.Price, shipping, in.AdminPrice, settings.CurrencyConversion)
		q.MarginSource = MarginImplied
		q.WithMargin = fixed.Price.Sub(shipping)
		return q, nil
	}

	switch {
	case mode.Kind() == ModeMargin:
		q.Margin = mode.(Margin).Percent
		q.MarginSource = MarginFromSeller
	case terms != nil:
		q.Margin = terms.Margin
		q.MarginSource = MarginFromCategory
	default:
		q.Margin = settings.DefaultMargin
		q.MarginSource = MarginFromGlobal
	}
	if err := ValidateMargin("margin", q.Margin); err != nil {
		return Quote{}, err
	}

	q.WithMargin = converted.Mul(decimal.NewFromInt(1).Add(q.Margin.Shift(-2)))
	q.SellerPrice = q.WithMargin.Add(shipping)
	return q, nil
}

// SellerPrice is Calculate without the breakdown
func SellerPrice(in Input, settings Settings, lookup MarginLookup) (decimal.Decimal, error) {
	q, err := Calculate(in, settings, lookup)
	if err != nil {
		return decimal.Zero, err
	}
	return q.SellerPrice, nil
}

// ImpliedMargin reverse-derives the margin of a custom price:
// ((customPrice - shippingFee) / (adminPrice * conversion) - 1) * 100, clamped at 0
// and rounded to 2 decimals. A zero denominator yields 0.
func ImpliedMargin(customPrice, shippingFee, adminPrice, conversion decimal.Decimal) decimal.Decimal {
	denominator := adminPrice.Mul(conversion)
	if denominator.IsZero() {
		return decimal.Zero
	}
	margin := customPrice.Sub(shippingFee).Div(denominator).Sub(decimal.NewFromInt(1)).Mul(hundred)
	if margin.IsNegative() {
		return decimal.Zero
	}
	return margin.Round(2)
}
