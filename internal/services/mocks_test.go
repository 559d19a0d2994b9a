package services

import (
	"context"

	"dropship-pricing-service/internal/models"
	"dropship-pricing-service/internal/repository"

	"github.com/stretchr/testify/mock"
)

// MockCategoryRepository is a mock implementation of CategoryRepositoryInterface
type MockCategoryRepository struct {
	mock.Mock
}

var _ repository.CategoryRepositoryInterface = (*MockCategoryRepository)(nil)

func (m *MockCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetAll(ctx context.Context, filters models.CategoryFilters) ([]models.Category, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetChildren(ctx context.Context, parentID uint) ([]models.Category, error) {
	args := m.Called(ctx, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCategoryRepository) NameExists(ctx context.Context, name string, excludeID uint) (bool, error) {
	args := m.Called(ctx, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCategoryRepository) UpdateSortOrder(ctx context.Context, id uint, sortOrder int) error {
	args := m.Called(ctx, id, sortOrder)
	return args.Error(0)
}

func (m *MockCategoryRepository) GetByNames(ctx context.Context, names []string) (map[string]models.Category, error) {
	args := m.Called(ctx, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]models.Category), args.Error(1)
}

func (m *MockCategoryRepository) InvalidateCache(ctx context.Context) {
	m.Called(ctx)
}

// MockProductRepository is a mock implementation of ProductRepositoryInterface
type MockProductRepository struct {
	mock.Mock
}

var _ repository.ProductRepositoryInterface = (*MockProductRepository)(nil)

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) GetAll(ctx context.Context, filters models.ProductFilters) ([]models.Product, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) SKUExists(ctx context.Context, sku string, excludeID uint) (bool, error) {
	args := m.Called(ctx, sku, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) ExistingIDs(ctx context.Context, ids []uint) (map[uint]bool, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uint]bool), args.Error(1)
}

// MockRuleRepository is a mock implementation of RuleRepositoryInterface
type MockRuleRepository struct {
	mock.Mock
}

var _ repository.RuleRepositoryInterface = (*MockRuleRepository)(nil)

func (m *MockRuleRepository) Create(ctx context.Context, rule *models.PricingRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockRuleRepository) GetByID(ctx context.Context, id uint) (*models.PricingRule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PricingRule), args.Error(1)
}

func (m *MockRuleRepository) List(ctx context.Context, isActive *bool) ([]models.PricingRule, error) {
	args := m.Called(ctx, isActive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PricingRule), args.Error(1)
}

func (m *MockRuleRepository) ListActive(ctx context.Context) ([]models.PricingRule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PricingRule), args.Error(1)
}

func (m *MockRuleRepository) ListByCategory(ctx context.Context, categoryID uint) ([]models.PricingRule, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PricingRule), args.Error(1)
}

func (m *MockRuleRepository) Update(ctx context.Context, rule *models.PricingRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockRuleRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRuleRepository) InvalidateCache(ctx context.Context) {
	m.Called(ctx)
}

// MockOverrideRepository is a mock implementation of OverrideRepositoryInterface
type MockOverrideRepository struct {
	mock.Mock
}

var _ repository.OverrideRepositoryInterface = (*MockOverrideRepository)(nil)

func (m *MockOverrideRepository) Get(ctx context.Context, sellerID string, productID uint) (*models.SellerProductOverride, error) {
	args := m.Called(ctx, sellerID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SellerProductOverride), args.Error(1)
}

func (m *MockOverrideRepository) ListBySeller(ctx context.Context, sellerID string) ([]models.SellerProductOverride, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SellerProductOverride), args.Error(1)
}

func (m *MockOverrideRepository) ListBySellerAndProducts(ctx context.Context, sellerID string, productIDs []uint) ([]models.SellerProductOverride, error) {
	args := m.Called(ctx, sellerID, productIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SellerProductOverride), args.Error(1)
}

func (m *MockOverrideRepository) Upsert(ctx context.Context, override *models.SellerProductOverride, columns ...string) error {
	args := m.Called(ctx, override, columns)
	return args.Error(0)
}

func (m *MockOverrideRepository) Save(ctx context.Context, override *models.SellerProductOverride) error {
	args := m.Called(ctx, override)
	return args.Error(0)
}

func (m *MockOverrideRepository) Delete(ctx context.Context, sellerID string, productID uint) error {
	args := m.Called(ctx, sellerID, productID)
	return args.Error(0)
}

// MockSettingsRepository is a mock implementation of SettingsRepositoryInterface
type MockSettingsRepository struct {
	mock.Mock
}

var _ repository.SettingsRepositoryInterface = (*MockSettingsRepository)(nil)

func (m *MockSettingsRepository) Get(ctx context.Context) (*models.GlobalPricingSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GlobalPricingSettings), args.Error(1)
}

func (m *MockSettingsRepository) Update(ctx context.Context, settings *models.GlobalPricingSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}
