package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxMarginPercent is the upper bound for every margin value (category, global and seller)
var MaxMarginPercent = decimal.NewFromInt(200)

// Category represents an admin-curated product category.
// ParentID is not enforced as a foreign key: deleting a parent leaves children with a stale reference.
// A nil ShippingFee falls back to the global shipping cost.
type Category struct {
	ID              uint             `json:"id" gorm:"primaryKey"`
	Name            string           `json:"name" gorm:"not null;uniqueIndex"`
	Description     *string          `json:"description,omitempty"`
	Icon            *string          `json:"icon,omitempty"`
	DefaultMargin   decimal.Decimal  `json:"defaultMargin" gorm:"type:decimal(6,2);not null"`
	ShippingFee     *decimal.Decimal `json:"shippingFee" gorm:"type:decimal(12,2)"`
	InheritsPricing bool             `json:"inheritsPricing" gorm:"not null"`
	IsActive        bool             `json:"isActive" gorm:"not null;index"`
	SortOrder       int              `json:"sortOrder" gorm:"not null"`
	ParentID        *uint            `json:"parentId,omitempty" gorm:"index"`
	CreatedByID     string           `json:"createdById,omitempty"`
	UpdatedByID     string           `json:"updatedById,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// CreateCategoryRequest represents a request to create a new category
type CreateCategoryRequest struct {
	Name            string           `json:"name" binding:"required"`
	Description     *string          `json:"description,omitempty"`
	Icon            *string          `json:"icon,omitempty"`
	DefaultMargin   *decimal.Decimal `json:"defaultMargin,omitempty"`
	ShippingFee     *decimal.Decimal `json:"shippingFee,omitempty"`
	InheritsPricing *bool            `json:"inheritsPricing,omitempty"`
	IsActive        *bool            `json:"isActive,omitempty"`
	SortOrder       *int             `json:"sortOrder,omitempty"`
	ParentID        *uint            `json:"parentId,omitempty"`
}

// UpdateCategoryRequest represents a partial category update.
// ClearParent moves the category to the root level; ParentID is ignored when it is set.
type UpdateCategoryRequest struct {
	Name            *string          `json:"name,omitempty"`
	Description     *string          `json:"description,omitempty"`
	Icon            *string          `json:"icon,omitempty"`
	DefaultMargin   *decimal.Decimal `json:"defaultMargin,omitempty"`
	ShippingFee     *decimal.Decimal `json:"shippingFee,omitempty"`
	InheritsPricing *bool            `json:"inheritsPricing,omitempty"`
	IsActive        *bool            `json:"isActive,omitempty"`
	SortOrder       *int             `json:"sortOrder,omitempty"`
	ParentID        *uint            `json:"parentId,omitempty"`
	ClearParent     bool             `json:"clearParent,omitempty"`
	// ClearShippingFee drops the category fee so the global shipping cost applies
	ClearShippingFee bool `json:"clearShippingFee,omitempty"`
}

// ReorderCategoryItem sets the sort order of one category
type ReorderCategoryItem struct {
	CategoryID uint `json:"categoryId" binding:"required"`
	SortOrder  int  `json:"sortOrder"`
}

// ReorderCategoriesRequest represents a request to reorder categories
type ReorderCategoriesRequest struct {
	Items []ReorderCategoryItem `json:"items" binding:"required,min=1,dive"`
}

// CategoryFilters represents filters for category queries
type CategoryFilters struct {
	IsActive *bool  `json:"isActive,omitempty"`
	Search   string `json:"search,omitempty"`
	ParentID *uint  `json:"parentId,omitempty"`
}

// TableName returns the table name for the Category model
func (Category) TableName() string {
	return "categories"
}
