package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RuleType is the scope of a pricing rule
type RuleType string

const (
	RuleTypeGlobal   RuleType = "global"
	RuleTypeCategory RuleType = "category"
	RuleTypeProduct  RuleType = "product"
)

// AdjustmentType is how a pricing rule changes a price
type AdjustmentType string

const (
	AdjustmentPercentage AdjustmentType = "percentage"
	AdjustmentFixed      AdjustmentType = "fixed"
)

// PricingRule is an admin-defined adjustment of the admin price.
// CategoryID and ProductID are plain references; deleting the target does not delete the rule.
type PricingRule struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	Name            string          `json:"name" gorm:"not null"`
	Type            RuleType        `json:"type" gorm:"type:varchar(20);not null;index"`
	CategoryID      *uint           `json:"categoryId,omitempty" gorm:"index"`
	ProductID       *uint           `json:"productId,omitempty" gorm:"index"`
	AdjustmentType  AdjustmentType  `json:"adjustmentType" gorm:"type:varchar(20);not null"`
	AdjustmentValue decimal.Decimal `json:"adjustmentValue" gorm:"type:decimal(12,4);not null"`
	IsActive        bool            `json:"isActive" gorm:"not null;index"`
	CreatedByID     string          `json:"createdById,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// CreatePricingRuleRequest represents a request to create a pricing rule
type CreatePricingRuleRequest struct {
	Name            string          `json:"name" binding:"required"`
	Type            RuleType        `json:"type" binding:"required"`
	CategoryID      *uint           `json:"categoryId,omitempty"`
	ProductID       *uint           `json:"productId,omitempty"`
	AdjustmentType  AdjustmentType  `json:"adjustmentType" binding:"required"`
	AdjustmentValue decimal.Decimal `json:"adjustmentValue"`
	IsActive        *bool           `json:"isActive,omitempty"`
}

// UpdatePricingRuleRequest represents a partial pricing rule update.
// Changing Type requires sending the matching target id in the same request.
type UpdatePricingRuleRequest struct {
	Name            *string          `json:"name,omitempty"`
	Type            *RuleType        `json:"type,omitempty"`
	CategoryID      *uint            `json:"categoryId,omitempty"`
	ProductID       *uint            `json:"productId,omitempty"`
	AdjustmentType  *AdjustmentType  `json:"adjustmentType,omitempty"`
	AdjustmentValue *decimal.Decimal `json:"adjustmentValue,omitempty"`
	IsActive        *bool            `json:"isActive,omitempty"`
}

// RulePreviewRequest asks which rules apply to a base price and what they produce
type RulePreviewRequest struct {
	BasePrice  decimal.Decimal `json:"basePrice"`
	CategoryID *uint           `json:"categoryId,omitempty"`
	ProductID  *uint           `json:"productId,omitempty"`
}

// TableName returns the table name for the PricingRule model
func (PricingRule) TableName() string {
	return "pricing_rules"
}
