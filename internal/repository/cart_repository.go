package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"mall-service/internal/models"
)

// CartRepository handles cart and cart item database operations
type CartRepository struct {
	db *gorm.DB
}

// NewCartRepository creates a new cart repository
func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

// GetOrCreateActiveCart returns the customer's active cart, creating it when
// none exists. The partial unique index on (customer_id) WHERE status makes
// concurrent creates collide; the loser retries the read and picks up the
// winner's cart.
func (r *CartRepository) GetOrCreateActiveCart(ctx context.Context, customerID int64) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND status = ?", customerID, true).
		First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get active cart: %w", err)
	}

	cart = models.Cart{CustomerID: customerID, Status: true}
	if err := r.db.WithContext(ctx).Create(&cart).Error; err != nil {
		// Lost the race: another request created the active cart first.
		var existing models.Cart
		readErr := r.db.WithContext(ctx).
			Where("customer_id = ? AND status = ?", customerID, true).
			First(&existing).Error
		if readErr != nil {
			return nil, fmt.Errorf("failed to create active cart: %w", err)
		}
		return &existing, nil
	}
	return &cart, nil
}

// GetActiveCartWithItems returns the active cart with its items (newest
// first) and their product, variant and store preloaded; nil when the
// customer has no active cart.
func (r *CartRepository) GetActiveCartWithItems(ctx context.Context, customerID int64) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND status = ?", customerID, true).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("cart_items.created_at desc")
		}).
		Preload("Items.Product").
		Preload("Items.Variant").
		Preload("Items.Store").
		First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return &cart, nil
}

// CreateItem inserts a cart line item.
func (r *CartRepository) CreateItem(ctx context.Context, item *models.CartItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to create cart item: %w", err)
	}
	return nil
}
