package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GlobalSettingsID is the primary key of the single settings row
const GlobalSettingsID uint = 1

// GlobalPricingSettings is the process-wide pricing configuration. Last write wins.
type GlobalPricingSettings struct {
	ID                 uint            `json:"id" gorm:"primaryKey"`
	CurrencyConversion decimal.Decimal `json:"currencyConversion" gorm:"type:decimal(14,6);not null"`
	ShippingCost       decimal.Decimal `json:"shippingCost" gorm:"type:decimal(12,2);not null"`
	DefaultMargin      decimal.Decimal `json:"defaultMargin" gorm:"type:decimal(6,2);not null"`
	UpdatedByID        string          `json:"updatedById,omitempty"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// UpdatePricingSettingsRequest represents a partial settings update
type UpdatePricingSettingsRequest struct {
	CurrencyConversion *decimal.Decimal `json:"currencyConversion,omitempty"`
	ShippingCost       *decimal.Decimal `json:"shippingCost,omitempty"`
	DefaultMargin      *decimal.Decimal `json:"defaultMargin,omitempty"`
}

// CalculatePriceRequest is a stateless seller price calculation.
// Settings fields fall back to the stored settings when omitted.
type CalculatePriceRequest struct {
	AdminPrice         decimal.Decimal  `json:"adminPrice"`
	CategoryID         *uint            `json:"categoryId,omitempty"`
	ProductID          *uint            `json:"productId,omitempty"`
	CustomMargin       *decimal.Decimal `json:"customMargin,omitempty"`
	CustomPrice        *decimal.Decimal `json:"customPrice,omitempty"`
	CustomShippingFee  *decimal.Decimal `json:"customShippingFee,omitempty"`
	CurrencyConversion *decimal.Decimal `json:"currencyConversion,omitempty"`
	ShippingCost       *decimal.Decimal `json:"shippingCost,omitempty"`
	DefaultMargin      *decimal.Decimal `json:"defaultMargin,omitempty"`
	ApplyRules         bool             `json:"applyRules,omitempty"`
}

// TableName returns the table name for the GlobalPricingSettings model
func (GlobalPricingSettings) TableName() string {
	return "global_pricing_settings"
}
