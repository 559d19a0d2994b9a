package pricing

import (
	"dropship-pricing-service/internal/models"

	"github.com/shopspring/decimal"
)

// Settings is an immutable snapshot of the global pricing configuration.
// Callers take one snapshot per request and pass it to every calculation.
type Settings struct {
	CurrencyConversion decimal.Decimal `json:"currencyConversion"`
	ShippingCost       decimal.Decimal `json:"shippingCost"`
	DefaultMargin      decimal.Decimal `json:"defaultMargin"`
}

// SettingsFromModel snapshots the stored settings row
func SettingsFromModel(m models.GlobalPricingSettings) Settings {
	return Settings{
		CurrencyConversion: m.CurrencyConversion,
		ShippingCost:       m.ShippingCost,
		DefaultMargin:      m.DefaultMargin,
	}
}

// Validate checks conversion > 0, shipping >= 0 and margin in [0, 200]
func (s Settings) Validate() error {
	if !s.CurrencyConversion.IsPositive() {
		return NewValidationError("currencyConversion", "must be greater than 0")
	}
	if s.ShippingCost.IsNegative() {
		return NewValidationError("shippingCost", "must not be negative")
	}
	return ValidateMargin("defaultMargin", s.DefaultMargin)
}

// ValidateMargin checks that a margin percentage lies in [0, 200]
func ValidateMargin(field string, margin decimal.Decimal) error {
	if margin.IsNegative() || margin.GreaterThan(models.MaxMarginPercent) {
		return NewValidationError(field, "must be between 0 and %s", models.MaxMarginPercent)
	}
	return nil
}

// ValidateAmount checks that a price or fee is not negative
func ValidateAmount(field string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return NewValidationError(field, "must not be negative")
	}
	return nil
}

// CategoryTerms are the resolved pricing defaults of one category
type CategoryTerms struct {
	Margin      decimal.Decimal `json:"margin"`
	ShippingFee decimal.Decimal `json:"shippingFee"`
}

// MarginLookup maps category ids to their resolved pricing defaults
type MarginLookup map[uint]CategoryTerms
