package repository

import (
	"context"
	"errors"

	"dropship-pricing-service/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OverrideRepository stores seller product overrides. Rows are per seller, so they are not cached.
type OverrideRepository struct {
	db *gorm.DB
}

func NewOverrideRepository(db *gorm.DB) *OverrideRepository {
	return &OverrideRepository{db: db}
}

// Get retrieves the override of one seller for one product
func (r *OverrideRepository) Get(ctx context.Context, sellerID string, productID uint) (*models.SellerProductOverride, error) {
	var override models.SellerProductOverride
	err := r.db.WithContext(ctx).
		Where("seller_id = ? AND product_id = ?", sellerID, productID).
		First(&override).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOverrideNotFound
		}
		return nil, err
	}
	return &override, nil
}

// ListBySeller retrieves every override of a seller
func (r *OverrideRepository) ListBySeller(ctx context.Context, sellerID string) ([]models.SellerProductOverride, error) {
	overrides := []models.SellerProductOverride{}
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("product_id ASC").
		Find(&overrides).Error
	return overrides, err
}

// ListBySellerAndProducts retrieves the overrides of a seller for the given products
func (r *OverrideRepository) ListBySellerAndProducts(ctx context.Context, sellerID string, productIDs []uint) ([]models.SellerProductOverride, error) {
	overrides := []models.SellerProductOverride{}
	if len(productIDs) == 0 {
		return overrides, nil
	}
	err := r.db.WithContext(ctx).
		Where("seller_id = ? AND product_id IN ?", sellerID, productIDs).
		Order("product_id ASC").
		Find(&overrides).Error
	return overrides, err
}

// Upsert inserts override, or on a (seller_id, product_id) conflict updates only columns.
// Columns of the existing row that are not listed keep their values.
func (r *OverrideRepository) Upsert(ctx context.Context, override *models.SellerProductOverride, columns ...string) error {
	updates := append([]string{"updated_at"}, columns...)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "seller_id"}, {Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns(updates),
	}).Create(override).Error
}

// Save writes every column of an existing override
func (r *OverrideRepository) Save(ctx context.Context, override *models.SellerProductOverride) error {
	if override.ID == 0 {
		return ErrOverrideNotFound
	}
	return r.db.WithContext(ctx).Save(override).Error
}

// Delete removes a product from a seller's store
func (r *OverrideRepository) Delete(ctx context.Context, sellerID string, productID uint) error {
	result := r.db.WithContext(ctx).
		Where("seller_id = ? AND product_id = ?", sellerID, productID).
		Delete(&models.SellerProductOverride{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOverrideNotFound
	}
	return nil
}
