package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dropship-pricing-service/internal/models"

	"github.com/Tesseract-Nexus/go-shared/cache"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const ProductCacheTTL = 10 * time.Minute

type ProductRepository struct {
	db    *gorm.DB
	cache *cache.CacheLayer
}

func NewProductRepository(db *gorm.DB, redisClient *redis.Client) *ProductRepository {
	return &ProductRepository{
		db:    db,
		cache: newCacheLayer(redisClient, "tesseract:dropship:products:", ProductCacheTTL),
	}
}

func productCacheKey(id uint) string {
	return fmt.Sprintf("product:%d", id)
}

func (r *ProductRepository) invalidateProductCache(ctx context.Context, id uint) {
	if r.cache == nil {
		return
	}
	_ = r.cache.Delete(ctx, productCacheKey(id))
}

// Create creates a new product
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// GetByID retrieves a product by ID with caching
func (r *ProductRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	load := func() (*models.Product, error) {
		var product models.Product
		if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProductNotFound
			}
			return nil, err
		}
		return &product, nil
	}

	if r.cache == nil {
		return load()
	}

	var product models.Product
	notFound := false
	err := r.cache.GetOrSetJSON(ctx, productCacheKey(id), &product, ProductCacheTTL, func() (any, error) {
		p, err := load()
		notFound = errors.Is(err, ErrProductNotFound)
		return p, err
	})
	if notFound {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetAll retrieves products matching filters ordered by name.
// A zero Limit returns every match.
func (r *ProductRepository) GetAll(ctx context.Context, filters models.ProductFilters) ([]models.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})
	if filters.CategoryID != nil {
		query = query.Where("category_id = ?", *filters.CategoryID)
	}
	if filters.Brand != "" {
		query = query.Where("brand = ?", filters.Brand)
	}
	if filters.Search != "" {
		term := "%" + strings.ToLower(filters.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", term, term)
	}
	if filters.MinPrice != nil {
		query = query.Where("admin_price >= ?", *filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		query = query.Where("admin_price <= ?", *filters.MaxPrice)
	}
	if filters.Published != nil {
		query = query.Where("published = ?", *filters.Published)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("name ASC, id ASC")
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit).Offset(filters.Offset)
	}
	products := []models.Product{}
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Update saves every column of a product
func (r *ProductRepository) Update(ctx context.Context, product *models.Product) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", product.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrProductNotFound
	}
	err := r.db.WithContext(ctx).Save(product).Error
	if err == nil {
		r.invalidateProductCache(ctx, product.ID)
	}
	return err
}

// Delete deletes a product. Seller overrides and rules that reference it are kept.
func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Product{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	r.invalidateProductCache(ctx, id)
	return nil
}

// SKUExists checks whether another product already uses sku
func (r *ProductRepository) SKUExists(ctx context.Context, sku string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Product{}).
		Where("sku = ? AND id <> ?", sku, excludeID).
		Count(&count).Error
	return count > 0, err
}

// ExistingIDs reports which of ids belong to stored products
func (r *ProductRepository) ExistingIDs(ctx context.Context, ids []uint) (map[uint]bool, error) {
	existing := make(map[uint]bool, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}
	var found []uint
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	for _, id := range found {
		existing[id] = true
	}
	return existing, nil
}
