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

// Cache TTL constants
const (
	CategoryCacheTTL     = 30 * time.Minute // Categories rarely change
	CategoryListCacheTTL = 15 * time.Minute // Category lists
)

type CategoryRepository struct {
	db    *gorm.DB
	cache *cache.CacheLayer
}

func NewCategoryRepository(db *gorm.DB, redisClient *redis.Client) *CategoryRepository {
	return &CategoryRepository{
		db:    db,
		cache: newCacheLayer(redisClient, "tesseract:dropship:categories:", CategoryCacheTTL),
	}
}

func categoryCacheKey(id uint) string {
	return fmt.Sprintf("category:%d", id)
}

func categoryListCacheKey(filters models.CategoryFilters) string {
	active, parent := "any", "any"
	if filters.IsActive != nil {
		active = fmt.Sprint(*filters.IsActive)
	}
	if filters.ParentID != nil {
		parent = fmt.Sprint(*filters.ParentID)
	}
	return fmt.Sprintf("list:%s:%s:%s", active, parent, strings.ToLower(filters.Search))
}

// invalidateCategoryCaches drops the cached category and every cached list
func (r *CategoryRepository) invalidateCategoryCaches(ctx context.Context, id *uint) {
	if r.cache == nil {
		return
	}
	if id != nil {
		_ = r.cache.Delete(ctx, categoryCacheKey(*id))
	}
	_ = r.cache.DeletePattern(ctx, "list:*")
}

// InvalidateCache drops every cached category entry
func (r *CategoryRepository) InvalidateCache(ctx context.Context) {
	if r.cache == nil {
		return
	}
	_ = r.cache.DeletePattern(ctx, "category:*")
	_ = r.cache.DeletePattern(ctx, "list:*")
}

// Create creates a new category
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	err := r.db.WithContext(ctx).Create(category).Error
	if err == nil {
		r.invalidateCategoryCaches(ctx, nil)
	}
	return err
}

// GetByID retrieves a category by ID with caching
func (r *CategoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	load := func() (*models.Category, error) {
		var category models.Category
		if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
		return &category, nil
	}

	if r.cache == nil {
		return load()
	}

	var category models.Category
	notFound := false
	err := r.cache.GetOrSetJSON(ctx, categoryCacheKey(id), &category, CategoryCacheTTL, func() (any, error) {
		c, err := load()
		notFound = errors.Is(err, ErrCategoryNotFound)
		return c, err
	})
	if notFound {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// GetAll retrieves categories ordered by (sort_order, name)
func (r *CategoryRepository) GetAll(ctx context.Context, filters models.CategoryFilters) ([]models.Category, error) {
	load := func() ([]models.Category, error) {
		query := r.db.WithContext(ctx).Model(&models.Category{})
		if filters.IsActive != nil {
			query = query.Where("is_active = ?", *filters.IsActive)
		}
		if filters.ParentID != nil {
			query = query.Where("parent_id = ?", *filters.ParentID)
		}
		if filters.Search != "" {
			query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filters.Search)+"%")
		}
		categories := []models.Category{}
		err := query.Order("sort_order ASC, name ASC").Find(&categories).Error
		return categories, err
	}

	if r.cache == nil {
		return load()
	}

	var categories []models.Category
	err := r.cache.GetOrSetJSON(ctx, categoryListCacheKey(filters), &categories, CategoryListCacheTTL, func() (any, error) {
		return load()
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// GetChildren retrieves the direct children of a category, including inactive ones
func (r *CategoryRepository) GetChildren(ctx context.Context, parentID uint) ([]models.Category, error) {
	return r.GetAll(ctx, models.CategoryFilters{ParentID: &parentID})
}

// GetByNames maps exact category names to categories
func (r *CategoryRepository) GetByNames(ctx context.Context, names []string) (map[string]models.Category, error) {
	result := make(map[string]models.Category, len(names))
	if len(names) == 0 {
		return result, nil
	}
	var categories []models.Category
	if err := r.db.WithContext(ctx).Where("name IN ?", names).Find(&categories).Error; err != nil {
		return nil, err
	}
	for _, c := range categories {
		result[c.Name] = c
	}
	return result, nil
}

// Update saves every column of a category
func (r *CategoryRepository) Update(ctx context.Context, category *models.Category) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", category.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrCategoryNotFound
	}

	err := r.db.WithContext(ctx).Save(category).Error
	if err == nil {
		r.invalidateCategoryCaches(ctx, &category.ID)
	}
	return err
}

// Delete deletes a category. Children and rules that reference it are left untouched.
func (r *CategoryRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Category{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	r.invalidateCategoryCaches(ctx, &id)
	return nil
}

// NameExists checks whether another category already uses name
func (r *CategoryRepository) NameExists(ctx context.Context, name string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Category{}).
		Where("name = ? AND id <> ?", name, excludeID).
		Count(&count).Error
	return count > 0, err
}

// UpdateSortOrder sets the sort order of a single category
func (r *CategoryRepository) UpdateSortOrder(ctx context.Context, id uint, sortOrder int) error {
	result := r.db.WithContext(ctx).Model(&models.Category{}).
		Where("id = ?", id).
		Update("sort_order", sortOrder)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	r.invalidateCategoryCaches(ctx, &id)
	return nil
}
