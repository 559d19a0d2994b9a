package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"dropship-pricing-service/internal/events"
	"dropship-pricing-service/internal/models"
	"dropship-pricing-service/internal/pricing"
	"dropship-pricing-service/internal/repository"
	"dropship-pricing-service/internal/rules"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type catalogFixture struct {
	service    *CatalogService
	products   *MockProductRepository
	overrides  *MockOverrideRepository
	categories *MockCategoryRepository
	rules      *MockRuleRepository
	settings   *MockSettingsRepository
}

func newCatalogFixture(maxBulkItems int) *catalogFixture {
	f := &catalogFixture{
		products:   new(MockProductRepository),
		overrides:  new(MockOverrideRepository),
		categories: new(MockCategoryRepository),
		rules:      new(MockRuleRepository),
		settings:   new(MockSettingsRepository),
	}
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	f.service = NewCatalogService(CatalogDeps{
		Products:     f.products,
		Overrides:    f.overrides,
		Categories:   f.categories,
		Rules:        f.rules,
		Settings:     f.settings,
		Resolver:     rules.NewResolver(rules.OrderPrecedence),
		MaxBulkItems: maxBulkItems,
	}, logger)
	return f
}

// expectPricingInputs stubs the settings, category and rule reads of a catalog listing
func (f *catalogFixture) expectPricingInputs(settings *models.GlobalPricingSettings, categories []models.Category, active []models.PricingRule) {
	f.settings.On("Get", mock.Anything).Return(settings, nil)
	f.categories.On("GetAll", mock.Anything, models.CategoryFilters{}).Return(categories, nil)
	f.rules.On("ListActive", mock.Anything).Return(active, nil)
}

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func decPtr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

func exampleSettings() *models.GlobalPricingSettings {
	return &models.GlobalPricingSettings{
		ID:                 models.GlobalSettingsID,
		CurrencyConversion: dec("300"),
		ShippingCost:       dec("500"),
		DefaultMargin:      dec("20"),
	}
}

func TestCatalogService_GetCatalog_MarginMode(t *testing.T) {
	f := newCatalogFixture(0)
	f.expectPricingInputs(exampleSettings(), []models.Category{}, []models.PricingRule{})

	filters := models.SellerCatalogFilters{}
	products := []models.Product{{ID: 1, SKU: "SKU-1", Name: "Kettle", AdminPrice: dec("10"), Published: true}}
	f.products.On("GetAll", mock.Anything, filters.ProductFilters()).Return(products, int64(1), nil)
	f.overrides.On("ListBySellerAndProducts", mock.Anything, "9", []uint{1}).Return([]models.SellerProductOverride{}, nil)

	page, err := f.service.GetCatalog(context.Background(), "9", filters, 1, 0)

	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	item := page.Items[0]
	assert.True(t, dec("4100").Equal(item.SellerPrice), "got %s", item.SellerPrice)
	assert.Equal(t, pricing.ModeInherited, item.PricingMode)
	assert.False(t, item.IsSelected)
	assert.Nil(t, item.CustomMargin)
	assert.Nil(t, page.Pagination)
	f.products.AssertExpectations(t)
	f.overrides.AssertExpectations(t)
	f.overrides.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
}

func TestCatalogService_GetCatalog_CustomPriceWins(t *testing.T) {
	f := newCatalogFixture(0)
	f.expectPricingInputs(exampleSettings(), []models.Category{}, []models.PricingRule{})

	filters := models.SellerCatalogFilters{}
	products := []models.Product{{ID: 1, SKU: "SKU-1", Name: "Kettle", AdminPrice: dec("10"), Published: true}}
	overrides := []models.SellerProductOverride{{
		ID: 3, SellerID: "9", ProductID: 1, IsSelected: true,
		CustomMargin: decPtr("50"), CustomPrice: decPtr("5000"),
	}}
	f.products.On("GetAll", mock.Anything, filters.ProductFilters()).Return(products, int64(1), nil)
	f.overrides.On("ListBySellerAndProducts", mock.Anything, "9", []uint{1}).Return(overrides, nil)

	page, err := f.service.GetCatalog(context.Background(), "9", filters, 1, 0)

	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.True(t, dec("5000").Equal(page.Items[0].SellerPrice))
	assert.Equal(t, pricing.ModeFixedPrice, page.Items[0].PricingMode)
	assert.True(t, page.Items[0].IsSelected)
}

func TestCatalogService_GetCatalog_ShowSelectedAndPagination(t *testing.T) {
	f := newCatalogFixture(0)
	f.expectPricingInputs(exampleSettings(), []models.Category{}, []models.PricingRule{})

	filters := models.SellerCatalogFilters{ShowSelected: true}
	products := []models.Product{
		{ID: 1, SKU: "A", Name: "A", AdminPrice: dec("10"), Published: true},
		{ID: 2, SKU: "B", Name: "B", AdminPrice: dec("10"), Published: true},
		{ID: 3, SKU: "C", Name: "C", AdminPrice: dec("10"), Published: true},
		{ID: 4, SKU: "D", Name: "D", AdminPrice: dec("10"), Published: true},
	}
	overrides := []models.SellerProductOverride{
		{ID: 1, SellerID: "9", ProductID: 1, IsSelected: true},
		{ID: 2, SellerID: "9", ProductID: 2, IsSelected: false},
		{ID: 3, SellerID: "9", ProductID: 3, IsSelected: true},
		{ID: 4, SellerID: "9", ProductID: 4, IsSelected: true},
	}
	f.products.On("GetAll", mock.Anything, filters.ProductFilters()).Return(products, int64(4), nil)
	f.overrides.On("ListBySellerAndProducts", mock.Anything, "9", []uint{1, 2, 3, 4}).Return(overrides, nil)

	page, err := f.service.GetCatalog(context.Background(), "9", filters, 2, 2)

	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, uint(4), page.Items[0].ID)
	require.NotNil(t, page.Pagination)
	assert.Equal(t, int64(3), page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	assert.False(t, page.Pagination.HasNext)
	assert.True(t, page.Pagination.HasPrevious)
}

func TestCatalogService_GetCatalog_PageBeyondEnd(t *testing.T) {
	for _, page := range []int{2, 1 << 62, math.MaxInt} {
		f := newCatalogFixture(0)
		f.expectPricingInputs(exampleSettings(), []models.Category{}, []models.PricingRule{})

		filters := models.SellerCatalogFilters{}
		products := []models.Product{{ID: 1, SKU: "A", Name: "A", AdminPrice: dec("10"), Published: true}}
		f.products.On("GetAll", mock.Anything, filters.ProductFilters()).Return(products, int64(1), nil)
		f.overrides.On("ListBySellerAndProducts", mock.Anything, "9", []uint{1}).Return([]models.SellerProductOverride{}, nil)

		result, err := f.service.GetCatalog(context.Background(), "9", filters, page, 4)

		require.NoError(t, err, "page=%d", page)
		assert.Empty(t, result.Items, "page=%d", page)
		assert.Equal(t, int64(1), result.Pagination.Total)
		assert.False(t, result.Pagination.HasNext)
	}
}

func TestCatalogService_GetCatalog_AppliesRulesToAdminPrice(t *testing.T) {
	f := newCatalogFixture(0)
	settings := &models.GlobalPricingSettings{
		CurrencyConversion: dec("1"),
		ShippingCost:       dec("0"),
		DefaultMargin:      dec("0"),
	}
	categoryID := uint(7)
	active := []models.PricingRule{
		{ID: 1, Name: "Holiday", Type: models.RuleTypeGlobal, AdjustmentType: models.AdjustmentPercentage, AdjustmentValue: dec("10"), IsActive: true},
		{ID: 2, Name: "Other category", Type: models.RuleTypeCategory, CategoryID: &categoryID, AdjustmentType: models.AdjustmentFixed, AdjustmentValue: dec("50"), IsActive: true},
	}
	f.expectPricingInputs(settings, []models.Category{}, active)

	filters := models.SellerCatalogFilters{}
	products := []models.Product{{ID: 1, SKU: "A", Name: "A", AdminPrice: dec("100"), Published: true}}
	f.products.On("GetAll", mock.Anything, filters.ProductFilters()).Return(products, int64(1), nil)
	f.overrides.On("ListBySellerAndProducts", mock.Anything, "9", []uint{1}).Return([]models.SellerProductOverride{}, nil)

	page, err := f.service.GetCatalog(context.Background(), "9", filters, 1, 0)

	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, []uint{1}, page.Items[0].AppliedRuleIDs)
	assert.True(t, dec("110").Equal(page.Items[0].SellerPrice))
}

func TestCatalogService_GetCatalog_MissingCategoryWarns(t *testing.T) {
	f := newCatalogFixture(0)
	f.expectPricingInputs(exampleSettings(), []models.Category{}, []models.PricingRule{})

	missing := uint(99)
	filters := models.SellerCatalogFilters{}
	products := []models.Product{{ID: 1, SKU: "A", Name: "A", CategoryID: &missing, AdminPrice: dec("10"), Published: true}}
	f.products.On("GetAll", mock.Anything, filters.ProductFilters()).Return(products, int64(1), nil)
	f.overrides.On("ListBySellerAndProducts", mock.Anything, "9", []uint{1}).Return([]models.SellerProductOverride{}, nil)

	page, err := f.service.GetCatalog(context.Background(), "9", filters, 1, 0)

	require.NoError(t, err)
	require.Len(t, page.Warnings, 1)
	assert.Equal(t, pricing.WarningMissingCategory, page.Warnings[0].Kind)
	assert.True(t, dec("4100").Equal(page.Items[0].SellerPrice))
}

func TestCatalogService_SelectProduct(t *testing.T) {
	f := newCatalogFixture(0)
	f.products.On("GetByID", mock.Anything, uint(1)).Return(&models.Product{ID: 1}, nil)
	f.overrides.On("Upsert", mock.Anything, mock.MatchedBy(func(o *models.SellerProductOverride) bool {
		return o.SellerID == "9" && o.ProductID == 1 && o.IsSelected
	}), []string{"is_selected"}).Return(nil)
	stored := &models.SellerProductOverride{ID: 4, SellerID: "9", ProductID: 1, IsSelected: true, CustomMargin: decPtr("12")}
	f.overrides.On("Get", mock.Anything, "9", uint(1)).Return(stored, nil)

	result, err := f.service.SelectProduct(context.Background(), "9", 1, true, events.Actor{ID: "u1"})

	require.NoError(t, err)
	assert.True(t, result.IsSelected)
	assert.True(t, dec("12").Equal(*result.CustomMargin))
	f.overrides.AssertExpectations(t)
}

func TestCatalogService_SelectProduct_ProductNotFound(t *testing.T) {
	f := newCatalogFixture(0)
	f.products.On("GetByID", mock.Anything, uint(5)).Return(nil, repository.ErrProductNotFound)

	_, err := f.service.SelectProduct(context.Background(), "9", 5, true, events.Actor{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, pricing.ErrNotFound))
	f.overrides.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
}

func TestCatalogService_UpdatePricing(t *testing.T) {
	t.Run("no override and no product", func(t *testing.T) {
		f := newCatalogFixture(0)
		f.overrides.On("Get", mock.Anything, "9", uint(8)).Return(nil, repository.ErrOverrideNotFound)
		f.products.On("GetByID", mock.Anything, uint(8)).Return(nil, repository.ErrProductNotFound)

		_, err := f.service.UpdatePricing(context.Background(), "9", 8,
			models.UpdateSellerPricingRequest{Mode: "margin", Value: decPtr("15")}, events.Actor{})

		require.Error(t, err)
		assert.True(t, errors.Is(err, pricing.ErrNotFound))
		assert.Equal(t, "PRODUCT_NOT_FOUND", ErrorDetail(err).Code)
	})

	t.Run("switch existing row to fixed price", func(t *testing.T) {
		f := newCatalogFixture(0)
		existing := &models.SellerProductOverride{ID: 5, SellerID: "9", ProductID: 1, IsSelected: true, CustomMargin: decPtr("10")}
		f.overrides.On("Get", mock.Anything, "9", uint(1)).Return(existing, nil)
		f.overrides.On("Save", mock.Anything, mock.MatchedBy(func(o *models.SellerProductOverride) bool {
			return o.CustomMargin == nil && o.CustomPrice != nil && o.CustomPrice.Equal(dec("5000"))
		})).Return(nil)

		result, err := f.service.UpdatePricing(context.Background(), "9", 1,
			models.UpdateSellerPricingRequest{Mode: "price", Value: decPtr("5000")}, events.Actor{})

		require.NoError(t, err)
		assert.Equal(t, pricing.ModeFixedPrice, pricing.ModeOf(result).Kind())
		assert.True(t, result.IsSelected)
		f.overrides.AssertExpectations(t)
	})

	t.Run("creates row for product without override", func(t *testing.T) {
		f := newCatalogFixture(0)
		f.overrides.On("Get", mock.Anything, "9", uint(2)).Return(nil, repository.ErrOverrideNotFound).Once()
		f.products.On("GetByID", mock.Anything, uint(2)).Return(&models.Product{ID: 2}, nil)
		f.overrides.On("Upsert", mock.Anything, mock.MatchedBy(func(o *models.SellerProductOverride) bool {
			return !o.IsSelected && o.CustomMargin != nil && o.CustomShippingFee != nil
		}), []string{"custom_margin", "custom_price", "custom_shipping_fee"}).Return(nil)
		f.overrides.On("Get", mock.Anything, "9", uint(2)).Return(&models.SellerProductOverride{
			ID: 6, SellerID: "9", ProductID: 2, CustomMargin: decPtr("25"), CustomShippingFee: decPtr("0"),
		}, nil)

		result, err := f.service.UpdatePricing(context.Background(), "9", 2, models.UpdateSellerPricingRequest{
			Mode: "margin", Value: decPtr("25"), CustomShippingFee: decPtr("0"),
		}, events.Actor{})

		require.NoError(t, err)
		assert.Equal(t, uint(6), result.ID)
		f.overrides.AssertExpectations(t)
	})

	t.Run("margin out of range", func(t *testing.T) {
		f := newCatalogFixture(0)

		_, err := f.service.UpdatePricing(context.Background(), "9", 1,
			models.UpdateSellerPricingRequest{Mode: "margin", Value: decPtr("201")}, events.Actor{})

		require.Error(t, err)
		assert.True(t, errors.Is(err, pricing.ErrValidation))
		f.overrides.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCatalogService_RemoveProduct(t *testing.T) {
	f := newCatalogFixture(0)
	f.overrides.On("Delete", mock.Anything, "9", uint(1)).Return(nil)
	f.overrides.On("Delete", mock.Anything, "9", uint(2)).Return(repository.ErrOverrideNotFound)

	assert.NoError(t, f.service.RemoveProduct(context.Background(), "9", 1, events.Actor{}))

	err := f.service.RemoveProduct(context.Background(), "9", 2, events.Actor{})
	assert.True(t, errors.Is(err, pricing.ErrNotFound))
	assert.Equal(t, "SELLER_PRODUCT_NOT_FOUND", ErrorDetail(err).Code)
}

func TestCatalogService_BulkAdjustMargin_ExistingRowsOnly(t *testing.T) {
	f := newCatalogFixture(0)
	f.overrides.On("Get", mock.Anything, "9", uint(1)).
		Return(&models.SellerProductOverride{ID: 11, SellerID: "9", ProductID: 1, CustomMargin: decPtr("10")}, nil)
	f.overrides.On("Get", mock.Anything, "9", uint(2)).Return(nil, repository.ErrOverrideNotFound)
	f.overrides.On("Save", mock.Anything, mock.MatchedBy(func(o *models.SellerProductOverride) bool {
		return o.ProductID == 1 && o.CustomMargin.Equal(dec("15"))
	})).Return(nil)

	result, err := f.service.BulkAdjustMargin(context.Background(), "9",
		models.BulkAdjustMarginRequest{ProductIDs: []uint{1, 2}, Delta: dec("5")}, events.Actor{})

	require.NoError(t, err)
	assert.Equal(t, OpAdjustMargin, result.Operation)
	assert.NotEmpty(t, result.OperationID)
	assert.Equal(t, 2, result.TotalCount)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.SkippedCount)
	assert.Equal(t, models.BulkItemSkipped, result.Results[1].Status)
	f.overrides.AssertExpectations(t)
	f.overrides.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
}

func TestCatalogService_BulkAdjustMargin_ItemFailures(t *testing.T) {
	f := newCatalogFixture(0)
	// fixed price rows restart from 0
	f.overrides.On("Get", mock.Anything, "9", uint(1)).
		Return(&models.SellerProductOverride{ID: 1, SellerID: "9", ProductID: 1, CustomPrice: decPtr("99")}, nil)
	f.overrides.On("Get", mock.Anything, "9", uint(2)).
		Return(&models.SellerProductOverride{ID: 2, SellerID: "9", ProductID: 2, CustomMargin: decPtr("198")}, nil)
	f.overrides.On("Save", mock.Anything, mock.MatchedBy(func(o *models.SellerProductOverride) bool {
		return o.ProductID == 1 && o.CustomPrice == nil && o.CustomMargin.Equal(dec("5"))
	})).Return(nil)

	result, err := f.service.BulkAdjustMargin(context.Background(), "9",
		models.BulkAdjustMarginRequest{ProductIDs: []uint{1, 2, 1}, Delta: dec("5")}, events.Actor{})

	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalCount)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.FailedCount)
	require.NotNil(t, result.Results[1].Error)
	assert.Equal(t, "VALIDATION_ERROR", result.Results[1].Error.Code)
	f.overrides.AssertNumberOfCalls(t, "Save", 1)
}

func TestCatalogService_BulkLimits(t *testing.T) {
	f := newCatalogFixture(2)

	_, err := f.service.BulkAdjustMargin(context.Background(), "9",
		models.BulkAdjustMarginRequest{ProductIDs: []uint{1, 2, 3}, Delta: dec("1")}, events.Actor{})
	assert.True(t, errors.Is(err, pricing.ErrValidation))

	_, err = f.service.BulkSetMargin(context.Background(), "9",
		models.BulkSetMarginRequest{ProductIDs: []uint{}, Margin: dec("10")}, events.Actor{})
	assert.True(t, errors.Is(err, pricing.ErrValidation))

	_, err = f.service.BulkSetMargin(context.Background(), "9",
		models.BulkSetMarginRequest{ProductIDs: []uint{1}, Margin: dec("-1")}, events.Actor{})
	assert.True(t, errors.Is(err, pricing.ErrValidation))
}

func TestCatalogService_BulkSetMargin_Upserts(t *testing.T) {
	f := newCatalogFixture(0)
	f.products.On("ExistingIDs", mock.Anything, []uint{1, 3}).Return(map[uint]bool{1: true}, nil)
	f.overrides.On("Upsert", mock.Anything, mock.MatchedBy(func(o *models.SellerProductOverride) bool {
		return o.ProductID == 1 && o.CustomPrice == nil && o.CustomMargin.Equal(dec("40"))
	}), []string{"custom_margin", "custom_price"}).Return(nil)

	result, err := f.service.BulkSetMargin(context.Background(), "9",
		models.BulkSetMarginRequest{ProductIDs: []uint{1, 3}, Margin: dec("40")}, events.Actor{})

	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.FailedCount)
	require.NotNil(t, result.Results[1].Error)
	assert.Equal(t, "PRODUCT_NOT_FOUND", result.Results[1].Error.Code)
	f.overrides.AssertExpectations(t)
}

func TestCatalogService_BulkUpdateSelection(t *testing.T) {
	f := newCatalogFixture(0)
	selected := false
	f.products.On("ExistingIDs", mock.Anything, []uint{1, 2}).Return(map[uint]bool{1: true, 2: true}, nil)
	f.overrides.On("Upsert", mock.Anything, mock.MatchedBy(func(o *models.SellerProductOverride) bool {
		return o.ProductID == 1 && !o.IsSelected
	}), []string{"is_selected"}).Return(nil)
	f.overrides.On("Upsert", mock.Anything, mock.MatchedBy(func(o *models.SellerProductOverride) bool {
		return o.ProductID == 2
	}), []string{"is_selected"}).Return(errors.New("connection reset"))

	result, err := f.service.BulkUpdateSelection(context.Background(), "9",
		models.BulkUpdateSelectionRequest{ProductIDs: []uint{1, 2}, IsSelected: &selected}, events.Actor{})

	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.FailedCount)
	assert.Equal(t, "INTERNAL_ERROR", result.Results[1].Error.Code)
}
