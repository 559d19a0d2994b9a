package repository

import (
	"context"
	"testing"

	"dropship-pricing-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.PricingRule{},
		&models.SellerProductOverride{},
		&models.GlobalPricingSettings{},
	)
	require.NoError(t, err)
	return db
}

func uintPtr(v uint) *uint {
	return &v
}

func TestCategoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewCategoryRepository(setupTestDB(t), nil)

	home := &models.Category{Name: "Home", IsActive: true, SortOrder: 2}
	garden := &models.Category{Name: "Garden", IsActive: false, SortOrder: 1}
	require.NoError(t, repo.Create(ctx, home))
	require.NoError(t, repo.Create(ctx, garden))
	kitchen := &models.Category{Name: "Kitchen", IsActive: true, SortOrder: 1, ParentID: &home.ID}
	require.NoError(t, repo.Create(ctx, kitchen))

	t.Run("ordered by sort order then name", func(t *testing.T) {
		all, err := repo.GetAll(ctx, models.CategoryFilters{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{"Garden", "Kitchen", "Home"}, []string{all[0].Name, all[1].Name, all[2].Name})
	})

	t.Run("filters", func(t *testing.T) {
		active := true
		list, err := repo.GetAll(ctx, models.CategoryFilters{IsActive: &active, Search: "kit"})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Kitchen", list[0].Name)

		children, err := repo.GetChildren(ctx, home.ID)
		require.NoError(t, err)
		assert.Len(t, children, 1)
	})

	t.Run("names", func(t *testing.T) {
		exists, err := repo.NameExists(ctx, "Home", 0)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.NameExists(ctx, "Home", home.ID)
		require.NoError(t, err)
		assert.False(t, exists)

		byName, err := repo.GetByNames(ctx, []string{"Home", "Toys"})
		require.NoError(t, err)
		assert.Len(t, byName, 1)
		assert.Equal(t, home.ID, byName["Home"].ID)
	})

	t.Run("delete leaves children dangling", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, home.ID))

		_, err := repo.GetByID(ctx, home.ID)
		assert.ErrorIs(t, err, ErrCategoryNotFound)

		child, err := repo.GetByID(ctx, kitchen.ID)
		require.NoError(t, err)
		require.NotNil(t, child.ParentID)
		assert.Equal(t, home.ID, *child.ParentID)

		assert.ErrorIs(t, repo.Delete(ctx, home.ID), ErrCategoryNotFound)
		assert.ErrorIs(t, repo.UpdateSortOrder(ctx, home.ID, 3), ErrCategoryNotFound)
		assert.ErrorIs(t, repo.Update(ctx, &models.Category{ID: home.ID, Name: "Ghost"}), ErrCategoryNotFound)
	})
}

func TestProductRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(setupTestDB(t), nil)
	brand := "Acme"

	products := []*models.Product{
		{SKU: "KET-1", Name: "Kettle", CategoryID: uintPtr(1), Brand: &brand, AdminPrice: decimal.NewFromInt(10), Published: true},
		{SKU: "PAN-1", Name: "Pan", CategoryID: uintPtr(1), AdminPrice: decimal.NewFromInt(20), Published: true},
		{SKU: "RAKE-1", Name: "Rake", CategoryID: uintPtr(2), AdminPrice: decimal.NewFromInt(5), Published: false},
	}
	for _, p := range products {
		require.NoError(t, repo.Create(ctx, p))
	}

	t.Run("published in category", func(t *testing.T) {
		published := true
		list, total, err := repo.GetAll(ctx, models.ProductFilters{CategoryID: uintPtr(1), Published: &published})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Equal(t, "Kettle", list[0].Name)
	})

	t.Run("search and brand", func(t *testing.T) {
		list, _, err := repo.GetAll(ctx, models.ProductFilters{Search: "ket"})
		require.NoError(t, err)
		require.Len(t, list, 1)

		list, _, err = repo.GetAll(ctx, models.ProductFilters{Brand: "Acme"})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "KET-1", list[0].SKU)
	})

	t.Run("pagination counts every match", func(t *testing.T) {
		list, total, err := repo.GetAll(ctx, models.ProductFilters{Limit: 1, Offset: 1})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, list, 1)
		assert.Equal(t, "Pan", list[0].Name)
	})

	t.Run("sku and ids", func(t *testing.T) {
		exists, err := repo.SKUExists(ctx, "PAN-1", 0)
		require.NoError(t, err)
		assert.True(t, exists)

		existing, err := repo.ExistingIDs(ctx, []uint{products[0].ID, 999})
		require.NoError(t, err)
		assert.Equal(t, map[uint]bool{products[0].ID: true}, existing)
	})

	t.Run("missing product", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 999)
		assert.ErrorIs(t, err, ErrProductNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, 999), ErrProductNotFound)
	})
}

func TestRuleRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewRuleRepository(setupTestDB(t), nil)

	rules := []*models.PricingRule{
		{Name: "All", Type: models.RuleTypeGlobal, AdjustmentType: models.AdjustmentPercentage, AdjustmentValue: decimal.NewFromInt(5), IsActive: true},
		{Name: "Kitchen", Type: models.RuleTypeCategory, CategoryID: uintPtr(7), AdjustmentType: models.AdjustmentFixed, AdjustmentValue: decimal.NewFromInt(2), IsActive: true},
		{Name: "Off", Type: models.RuleTypeCategory, CategoryID: uintPtr(7), AdjustmentType: models.AdjustmentFixed, AdjustmentValue: decimal.NewFromInt(1), IsActive: false},
	}
	for _, r := range rules {
		require.NoError(t, repo.Create(ctx, r))
	}

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	all, err := repo.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	inactive := false
	off, err := repo.List(ctx, &inactive)
	require.NoError(t, err)
	require.Len(t, off, 1)
	assert.Equal(t, "Off", off[0].Name)

	byCategory, err := repo.ListByCategory(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, byCategory, 2)

	require.NoError(t, repo.Delete(ctx, rules[0].ID))
	_, err = repo.GetByID(ctx, rules[0].ID)
	assert.ErrorIs(t, err, ErrRuleNotFound)
}

func TestOverrideRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	repo := NewOverrideRepository(setupTestDB(t))

	margin := decimal.NewFromInt(15)
	first := &models.SellerProductOverride{SellerID: "9", ProductID: 1, CustomMargin: &margin}
	require.NoError(t, repo.Upsert(ctx, first, "custom_margin", "custom_price"))

	// selecting must keep the margin set above
	selection := &models.SellerProductOverride{SellerID: "9", ProductID: 1, IsSelected: true}
	require.NoError(t, repo.Upsert(ctx, selection, "is_selected"))

	stored, err := repo.Get(ctx, "9", 1)
	require.NoError(t, err)
	assert.True(t, stored.IsSelected)
	require.NotNil(t, stored.CustomMargin)
	assert.True(t, margin.Equal(*stored.CustomMargin))

	list, err := repo.ListBySeller(ctx, "9")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	other, err := repo.ListBySellerAndProducts(ctx, "10", []uint{1})
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestOverrideRepository_SaveAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewOverrideRepository(setupTestDB(t))

	assert.ErrorIs(t, repo.Save(ctx, &models.SellerProductOverride{SellerID: "9", ProductID: 1}), ErrOverrideNotFound)

	require.NoError(t, repo.Upsert(ctx, &models.SellerProductOverride{SellerID: "9", ProductID: 1}, "is_selected"))
	stored, err := repo.Get(ctx, "9", 1)
	require.NoError(t, err)

	price := decimal.NewFromInt(5000)
	stored.CustomPrice = &price
	require.NoError(t, repo.Save(ctx, stored))

	reloaded, err := repo.Get(ctx, "9", 1)
	require.NoError(t, err)
	require.NotNil(t, reloaded.CustomPrice)
	assert.True(t, price.Equal(*reloaded.CustomPrice))

	require.NoError(t, repo.Delete(ctx, "9", 1))
	assert.ErrorIs(t, repo.Delete(ctx, "9", 1), ErrOverrideNotFound)
	_, err = repo.Get(ctx, "9", 1)
	assert.ErrorIs(t, err, ErrOverrideNotFound)
}

func TestSettingsRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsRepository(setupTestDB(t), nil, models.GlobalPricingSettings{
		CurrencyConversion: decimal.NewFromInt(1),
		ShippingCost:       decimal.Zero,
		DefaultMargin:      decimal.NewFromInt(30),
	})

	settings, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.GlobalSettingsID, settings.ID)
	assert.True(t, decimal.NewFromInt(30).Equal(settings.DefaultMargin))

	settings.DefaultMargin = decimal.NewFromInt(45)
	settings.ID = 0
	require.NoError(t, repo.Update(ctx, settings))

	reloaded, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.GlobalSettingsID, reloaded.ID)
	assert.True(t, decimal.NewFromInt(45).Equal(reloaded.DefaultMargin))
}
