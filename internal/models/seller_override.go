package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SellerProductOverride holds one seller's customization of one product.
// CustomPrice and CustomMargin are mutually exclusive; use pricing.ModeOf/pricing.SetMode to read and write them.
type SellerProductOverride struct {
	ID                uint             `json:"id" gorm:"primaryKey"`
	SellerID          string           `json:"sellerId" gorm:"not null;uniqueIndex:idx_seller_product"`
	ProductID         uint             `json:"productId" gorm:"not null;uniqueIndex:idx_seller_product;index"`
	CustomMargin      *decimal.Decimal `json:"customMargin" gorm:"type:decimal(6,2)"`
	CustomPrice       *decimal.Decimal `json:"customPrice" gorm:"type:decimal(12,2)"`
	CustomShippingFee *decimal.Decimal `json:"customShippingFee" gorm:"type:decimal(12,2)"`
	IsSelected        bool             `json:"isSelected" gorm:"not null"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

// SelectProductRequest toggles whether a product is published in the seller's store
type SelectProductRequest struct {
	IsSelected *bool `json:"isSelected" binding:"required"`
}

// UpdateSellerPricingRequest switches a product's pricing mode for one seller.
// Mode is one of "inherit", "margin" or "price"; Value is required for margin and price.
type UpdateSellerPricingRequest struct {
	Mode              string           `json:"mode" binding:"required,oneof=inherit margin price"`
	Value             *decimal.Decimal `json:"value,omitempty"`
	CustomShippingFee *decimal.Decimal `json:"customShippingFee,omitempty"`
	ClearShippingFee  bool             `json:"clearShippingFee,omitempty"`
}

// BulkAdjustMarginRequest adds Delta to the margin of already tracked products
type BulkAdjustMarginRequest struct {
	ProductIDs []uint          `json:"productIds" binding:"required,min=1"`
	Delta      decimal.Decimal `json:"delta"`
}

// BulkSetMarginRequest sets Margin on every listed product, creating override rows as needed
type BulkSetMarginRequest struct {
	ProductIDs []uint          `json:"productIds" binding:"required,min=1"`
	Margin     decimal.Decimal `json:"margin"`
}

// BulkUpdateSelectionRequest selects or deselects every listed product
type BulkUpdateSelectionRequest struct {
	ProductIDs []uint `json:"productIds" binding:"required,min=1"`
	IsSelected *bool  `json:"isSelected" binding:"required"`
}

// SellerCatalogFilters represents filters for the seller catalog listing.
// MinPrice and MaxPrice bound the admin price like ProductFilters.
type SellerCatalogFilters struct {
	CategoryID   *uint            `json:"categoryId,omitempty"`
	Brand        string           `json:"brand,omitempty"`
	Search       string           `json:"search,omitempty"`
	MinPrice     *decimal.Decimal `json:"minPrice,omitempty"`
	MaxPrice     *decimal.Decimal `json:"maxPrice,omitempty"`
	ShowSelected bool             `json:"showSelected,omitempty"`
}

// ProductFilters converts the catalog filters into a published-only product query
func (f SellerCatalogFilters) ProductFilters() ProductFilters {
	published := true
	return ProductFilters{
		CategoryID: f.CategoryID,
		Brand:      f.Brand,
		Search:     f.Search,
		MinPrice:   f.MinPrice,
		MaxPrice:   f.MaxPrice,
		Published:  &published,
	}
}

// TableName returns the table name for the SellerProductOverride model
func (SellerProductOverride) TableName() string {
	return "seller_product_overrides"
}
