package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"mall-service/internal/models"
)

// PromotionRepository handles promotion database operations
type PromotionRepository struct {
	db *gorm.DB
}

// NewPromotionRepository creates a new promotion repository
func NewPromotionRepository(db *gorm.DB) *PromotionRepository {
	return &PromotionRepository{db: db}
}

// ListByStore returns the store's most recent promotions.
func (r *PromotionRepository) ListByStore(ctx context.Context, storeID int64, limit int) ([]models.Promotion, error) {
	var promos []models.Promotion
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("created_at desc").
		Limit(limit).
		Find(&promos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list promotions: %w", err)
	}
	return promos, nil
}

// ListForModeration returns the moderation queue grouped by status, then
// higher priority and newer first.
func (r *PromotionRepository) ListForModeration(ctx context.Context, limit int) ([]models.Promotion, error) {
	var promos []models.Promotion
	err := r.db.WithContext(ctx).
		Order("status asc, priority desc, created_at desc").
		Limit(limit).
		Preload("Store").
		Preload("CreatedBy").
		Find(&promos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list moderation queue: %w", err)
	}
	return promos, nil
}

// GetByID returns one promotion, nil when absent.
func (r *PromotionRepository) GetByID(ctx context.Context, id int64) (*models.Promotion, error) {
	var promo models.Promotion
	if err := r.db.WithContext(ctx).First(&promo, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get promotion: %w", err)
	}
	return &promo, nil
}

// Create inserts a promotion.
func (r *PromotionRepository) Create(ctx context.Context, promo *models.Promotion) error {
	if err := r.db.WithContext(ctx).Create(promo).Error; err != nil {
		return fmt.Errorf("failed to create promotion: %w", err)
	}
	return nil
}

// Update saves the promotion's moderation fields.
func (r *PromotionRepository) Update(ctx context.Context, promo *models.Promotion) error {
	err := r.db.WithContext(ctx).
		Model(promo).
		Select("status", "reject_reason", "approved_by_id", "updated_at").
		Updates(map[string]interface{}{
			"status":         promo.Status,
			"reject_reason":  promo.RejectReason,
			"approved_by_id": promo.ApprovedByID,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update promotion: %w", err)
	}
	return nil
}
