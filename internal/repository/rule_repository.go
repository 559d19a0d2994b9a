package repository

import (
	"context"
	"errors"
	"time"

	"dropship-pricing-service/internal/models"

	"github.com/Tesseract-Nexus/go-shared/cache"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// RuleCacheTTL bounds how long an edited rule set can stay stale on other replicas
const RuleCacheTTL = 5 * time.Minute

const activeRulesCacheKey = "rules:active"

type RuleRepository struct {
	db    *gorm.DB
	cache *cache.CacheLayer
}

func NewRuleRepository(db *gorm.DB, redisClient *redis.Client) *RuleRepository {
	return &RuleRepository{
		db:    db,
		cache: newCacheLayer(redisClient, "tesseract:dropship:pricing:", RuleCacheTTL),
	}
}

// InvalidateCache drops the cached active rule set
func (r *RuleRepository) InvalidateCache(ctx context.Context) {
	if r.cache == nil {
		return
	}
	_ = r.cache.Delete(ctx, activeRulesCacheKey)
}

// Create creates a new pricing rule
func (r *RuleRepository) Create(ctx context.Context, rule *models.PricingRule) error {
	err := r.db.WithContext(ctx).Create(rule).Error
	if err == nil {
		r.InvalidateCache(ctx)
	}
	return err
}

// GetByID retrieves a pricing rule by ID
func (r *RuleRepository) GetByID(ctx context.Context, id uint) (*models.PricingRule, error) {
	var rule models.PricingRule
	if err := r.db.WithContext(ctx).First(&rule, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}
	return &rule, nil
}

// List retrieves rules ordered by creation, optionally filtered by isActive
func (r *RuleRepository) List(ctx context.Context, isActive *bool) ([]models.PricingRule, error) {
	query := r.db.WithContext(ctx).Model(&models.PricingRule{})
	if isActive != nil {
		query = query.Where("is_active = ?", *isActive)
	}
	rules := []models.PricingRule{}
	err := query.Order("created_at ASC, id ASC").Find(&rules).Error
	return rules, err
}

// ListActive retrieves the active rule set with caching
func (r *RuleRepository) ListActive(ctx context.Context) ([]models.PricingRule, error) {
	active := true
	if r.cache == nil {
		return r.List(ctx, &active)
	}

	var rules []models.PricingRule
	err := r.cache.GetOrSetJSON(ctx, activeRulesCacheKey, &rules, RuleCacheTTL, func() (any, error) {
		return r.List(ctx, &active)
	})
	if err != nil {
		return nil, err
	}
	return rules, nil
}

// ListByCategory retrieves category rules targeting categoryID
func (r *RuleRepository) ListByCategory(ctx context.Context, categoryID uint) ([]models.PricingRule, error) {
	rules := []models.PricingRule{}
	err := r.db.WithContext(ctx).
		Where("type = ? AND category_id = ?", models.RuleTypeCategory, categoryID).
		Order("created_at ASC, id ASC").
		Find(&rules).Error
	return rules, err
}

// Update saves every column of a pricing rule
func (r *RuleRepository) Update(ctx context.Context, rule *models.PricingRule) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.PricingRule{}).Where("id = ?", rule.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrRuleNotFound
	}
	err := r.db.WithContext(ctx).Save(rule).Error
	if err == nil {
		r.InvalidateCache(ctx)
	}
	return err
}

// Delete deletes a pricing rule
func (r *RuleRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.PricingRule{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRuleNotFound
	}
	r.InvalidateCache(ctx)
	return nil
}
