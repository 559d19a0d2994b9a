package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents an admin-owned catalog product
type Product struct {
	ID         uint             `json:"id" gorm:"primaryKey"`
	SKU        string           `json:"sku" gorm:"not null;uniqueIndex"`
	Name       string           `json:"name" gorm:"not null"`
	CategoryID *uint            `json:"categoryId,omitempty" gorm:"index"`
	// LegacyCategory keeps the free-text category name from imports. Pricing never reads it.
	LegacyCategory string           `json:"category,omitempty"`
	Brand          *string          `json:"brand,omitempty" gorm:"index"`
	AdminPrice     decimal.Decimal  `json:"adminPrice" gorm:"type:decimal(12,2);not null"`
	Stock          int              `json:"stock" gorm:"not null"`
	Weight         *decimal.Decimal `json:"weight,omitempty" gorm:"type:decimal(10,3)"`
	Dimensions     *string          `json:"dimensions,omitempty"`
	Image          *string          `json:"image,omitempty"`
	Published      bool             `json:"published" gorm:"not null;index"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	SKU        string           `json:"sku" binding:"required"`
	Name       string           `json:"name" binding:"required"`
	CategoryID *uint            `json:"categoryId,omitempty"`
	Brand      *string          `json:"brand,omitempty"`
	AdminPrice decimal.Decimal  `json:"adminPrice"`
	Stock      int              `json:"stock"`
	Weight     *decimal.Decimal `json:"weight,omitempty"`
	Dimensions *string          `json:"dimensions,omitempty"`
	Image      *string          `json:"image,omitempty"`
	Published  *bool            `json:"published,omitempty"`
}

// UpdateProductRequest represents a partial product update
type UpdateProductRequest struct {
	SKU           *string          `json:"sku,omitempty"`
	Name          *string          `json:"name,omitempty"`
	CategoryID    *uint            `json:"categoryId,omitempty"`
	ClearCategory bool             `json:"clearCategory,omitempty"`
	Brand         *string          `json:"brand,omitempty"`
	AdminPrice    *decimal.Decimal `json:"adminPrice,omitempty"`
	Stock         *int             `json:"stock,omitempty"`
	Weight        *decimal.Decimal `json:"weight,omitempty"`
	Dimensions    *string          `json:"dimensions,omitempty"`
	Image         *string          `json:"image,omitempty"`
	Published     *bool            `json:"published,omitempty"`
}

// ProductFilters represents filters for product queries.
// MinPrice and MaxPrice bound the admin price.
type ProductFilters struct {
	CategoryID *uint            `json:"categoryId,omitempty"`
	Brand      string           `json:"brand,omitempty"`
	Search     string           `json:"search,omitempty"`
	MinPrice   *decimal.Decimal `json:"minPrice,omitempty"`
	MaxPrice   *decimal.Decimal `json:"maxPrice,omitempty"`
	Published  *bool            `json:"published,omitempty"`
	Limit      int              `json:"limit,omitempty"`
	Offset     int              `json:"offset,omitempty"`
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}
