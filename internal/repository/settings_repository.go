package repository

import (
	"context"
	"time"

	"dropship-pricing-service/internal/models"

	"github.com/Tesseract-Nexus/go-shared/cache"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	SettingsCacheTTL = 5 * time.Minute
	settingsCacheKey = "settings"
)

// SettingsRepository stores the single global pricing settings row
type SettingsRepository struct {
	db       *gorm.DB
	cache    *cache.CacheLayer
	defaults models.GlobalPricingSettings
}

// NewSettingsRepository creates the repository; defaults seed the row on first read
func NewSettingsRepository(db *gorm.DB, redisClient *redis.Client, defaults models.GlobalPricingSettings) *SettingsRepository {
	defaults.ID = models.GlobalSettingsID
	return &SettingsRepository{
		db:       db,
		cache:    newCacheLayer(redisClient, "tesseract:dropship:pricing:", SettingsCacheTTL),
		defaults: defaults,
	}
}

func (r *SettingsRepository) load(ctx context.Context) (*models.GlobalPricingSettings, error) {
	settings := r.defaults
	err := r.db.WithContext(ctx).
		Where(models.GlobalPricingSettings{ID: models.GlobalSettingsID}).
		Attrs(r.defaults).
		FirstOrCreate(&settings).Error
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// Get returns the settings row, creating it from the defaults when missing
func (r *SettingsRepository) Get(ctx context.Context) (*models.GlobalPricingSettings, error) {
	if r.cache == nil {
		return r.load(ctx)
	}
	var settings models.GlobalPricingSettings
	err := r.cache.GetOrSetJSON(ctx, settingsCacheKey, &settings, SettingsCacheTTL, func() (any, error) {
		return r.load(ctx)
	})
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// Update overwrites the settings row
func (r *SettingsRepository) Update(ctx context.Context, settings *models.GlobalPricingSettings) error {
	settings.ID = models.GlobalSettingsID
	err := r.db.WithContext(ctx).Save(settings).Error
	if err == nil && r.cache != nil {
		_ = r.cache.Delete(ctx, settingsCacheKey)
	}
	return err
}
