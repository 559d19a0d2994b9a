package repository

import (
	"context"
	"errors"

	"dropship-pricing-service/internal/models"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrRuleNotFound     = errors.New("pricing rule not found")
	ErrOverrideNotFound = errors.New("seller product override not found")
)

// CategoryRepositoryInterface is the category collaborator used by services and subscribers
type CategoryRepositoryInterface interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	GetAll(ctx context.Context, filters models.CategoryFilters) ([]models.Category, error)
	GetChildren(ctx context.Context, parentID uint) ([]models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uint) error
	NameExists(ctx context.Context, name string, excludeID uint) (bool, error)
	UpdateSortOrder(ctx context.Context, id uint, sortOrder int) error
	GetByNames(ctx context.Context, names []string) (map[string]models.Category, error)
	InvalidateCache(ctx context.Context)
}

// ProductRepositoryInterface is the product collaborator
type ProductRepositoryInterface interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	GetAll(ctx context.Context, filters models.ProductFilters) ([]models.Product, int64, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uint) error
	SKUExists(ctx context.Context, sku string, excludeID uint) (bool, error)
	ExistingIDs(ctx context.Context, ids []uint) (map[uint]bool, error)
}

// RuleRepositoryInterface is the pricing rule collaborator
type RuleRepositoryInterface interface {
	Create(ctx context.Context, rule *models.PricingRule) error
	GetByID(ctx context.Context, id uint) (*models.PricingRule, error)
	List(ctx context.Context, isActive *bool) ([]models.PricingRule, error)
	ListActive(ctx context.Context) ([]models.PricingRule, error)
	ListByCategory(ctx context.Context, categoryID uint) ([]models.PricingRule, error)
	Update(ctx context.Context, rule *models.PricingRule) error
	Delete(ctx context.Context, id uint) error
	InvalidateCache(ctx context.Context)
}

// OverrideRepositoryInterface is the seller override store keyed by (sellerID, productID)
type OverrideRepositoryInterface interface {
	Get(ctx context.Context, sellerID string, productID uint) (*models.SellerProductOverride, error)
	ListBySeller(ctx context.Context, sellerID string) ([]models.SellerProductOverride, error)
	ListBySellerAndProducts(ctx context.Context, sellerID string, productIDs []uint) ([]models.SellerProductOverride, error)
	Upsert(ctx context.Context, override *models.SellerProductOverride, columns ...string) error
	Save(ctx context.Context, override *models.SellerProductOverride) error
	Delete(ctx context.Context, sellerID string, productID uint) error
}

// SettingsRepositoryInterface stores the global pricing settings row
type SettingsRepositoryInterface interface {
	Get(ctx context.Context) (*models.GlobalPricingSettings, error)
	Update(ctx context.Context, settings *models.GlobalPricingSettings) error
}

var (
	_ CategoryRepositoryInterface = (*CategoryRepository)(nil)
	_ ProductRepositoryInterface  = (*ProductRepository)(nil)
	_ RuleRepositoryInterface     = (*RuleRepository)(nil)
	_ OverrideRepositoryInterface = (*OverrideRepository)(nil)
	_ SettingsRepositoryInterface = (*SettingsRepository)(nil)
)
