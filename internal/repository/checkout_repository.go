package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mall-service/internal/models"
	"mall-service/internal/services"
)

// CheckoutRepository runs checkout units of work on a single database
// transaction with row-level inventory locking.
type CheckoutRepository struct {
	db *gorm.DB
}

// NewCheckoutRepository creates a new checkout repository
func NewCheckoutRepository(db *gorm.DB) *CheckoutRepository {
	return &CheckoutRepository{db: db}
}

// InTx runs fn inside one transaction; every CheckoutTx call sees and
// mutates the same transaction, so either everything commits or nothing does.
func (r *CheckoutRepository) InTx(ctx context.Context, fn func(tx services.CheckoutTx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&checkoutTx{tx: tx})
	})
}

type checkoutTx struct {
	tx *gorm.DB
}

func (c *checkoutTx) ActiveCartWithItems(ctx context.Context, customerID int64) (*models.Cart, error) {
	var cart models.Cart
	err := c.tx.WithContext(ctx).
		Where("customer_id = ? AND status = ?", customerID, true).
		Preload("Items").
		Preload("Items.Product").
		Preload("Items.Variant").
		First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load cart for checkout: %w", err)
	}
	return &cart, nil
}

// LockInventory reads the variant's inventory row with SELECT ... FOR UPDATE
// so concurrent checkouts against the same variant serialize.
func (c *checkoutTx) LockInventory(ctx context.Context, variantID int64) (*models.Inventory, error) {
	var inv models.Inventory
	err := c.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("variant_id = ?", variantID).
		First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock inventory: %w", err)
	}
	return &inv, nil
}

func (c *checkoutTx) UpdateInventoryStock(ctx context.Context, inventoryID int64, stockQty int) error {
	err := c.tx.WithContext(ctx).
		Model(&models.Inventory{}).
		Where("id = ?", inventoryID).
		Update("stock_qty", stockQty).Error
	if err != nil {
		return fmt.Errorf("failed to update inventory: %w", err)
	}
	return nil
}

func (c *checkoutTx) CreateOrder(ctx context.Context, order *models.Order) error {
	if err := c.tx.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (c *checkoutTx) DeleteCartItems(ctx context.Context, cartID int64) error {
	err := c.tx.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartItem{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
