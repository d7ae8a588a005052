package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"mall-service/internal/models"
)

// CheckoutTx is the set of operations available inside one checkout
// transaction. Implementations run every call on the same database
// transaction so the whole checkout commits or rolls back as a unit.
type CheckoutTx interface {
	ActiveCartWithItems(ctx context.Context, customerID int64) (*models.Cart, error)
	// LockInventory loads the variant's inventory row with a row lock held
	// until the transaction ends.
	LockInventory(ctx context.Context, variantID int64) (*models.Inventory, error)
	UpdateInventoryStock(ctx context.Context, inventoryID int64, stockQty int) error
	CreateOrder(ctx context.Context, order *models.Order) error
	DeleteCartItems(ctx context.Context, cartID int64) error
}

// CheckoutStore starts checkout transactions.
type CheckoutStore interface {
	InTx(ctx context.Context, fn func(tx CheckoutTx) error) error
}

// OrderEvents receives notifications after a checkout commits. Implementations
// must tolerate being handed a nil-safe no-op.
type OrderEvents interface {
	OrderCreated(order *models.Order)
}

// CheckoutService converts the active cart into one order per store inside a
// single transaction, re-checking and decrementing inventory along the way.
type CheckoutService struct {
	store  CheckoutStore
	events OrderEvents
	logger *logrus.Logger
}

func NewCheckoutService(store CheckoutStore, events OrderEvents, logger *logrus.Logger) *CheckoutService {
	return &CheckoutService{store: store, events: events, logger: logger}
}

// CheckoutInput carries the optional per-store shipping fees. Stores not in
// the map ship for free.
type CheckoutInput struct {
	ShippingFeePerStore map[int64]models.Money
}

// Checkout splits the customer's active cart into per-store orders. Inventory
// for every variant line is re-validated and decremented under a row lock; any
// shortfall aborts the whole transaction and no order persists. On success the
// cart's items are deleted and the empty cart row is reused.
func (s *CheckoutService) Checkout(ctx context.Context, customerID int64, input CheckoutInput) ([]*models.Order, error) {
	var orders []*models.Order

	err := s.store.InTx(ctx, func(tx CheckoutTx) error {
		cart, err := tx.ActiveCartWithItems(ctx, customerID)
		if err != nil {
			return err
		}
		if cart == nil || len(cart.Items) == 0 {
			return NewBadRequestError("Cart is empty")
		}

		for _, group := range groupByStore(cart.Items) {
			order, err := s.buildOrder(customerID, group, input.ShippingFeePerStore)
			if err != nil {
				return err
			}
			if err := tx.CreateOrder(ctx, order); err != nil {
				return err
			}
			orders = append(orders, order)
		}

		for _, item := range cart.Items {
			if item.VariantID == nil {
				continue
			}
			inv, err := tx.LockInventory(ctx, *item.VariantID)
			if err != nil {
				return err
			}
			if inv == nil {
				return NewBadRequestError("Inventory missing for variant")
			}
			if inv.StockQty < item.Qty {
				return NewBadRequestError("Insufficient stock during checkout")
			}
			if err := tx.UpdateInventoryStock(ctx, inv.ID, inv.StockQty-item.Qty); err != nil {
				return err
			}
		}

		return tx.DeleteCartItems(ctx, cart.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"customer_id": customerID,
		"orders":      len(orders),
	}).Info("Checkout completed")

	if s.events != nil {
		for _, order := range orders {
			s.events.OrderCreated(order)
		}
	}
	return orders, nil
}

type storeGroup struct {
	storeID int64
	items   []models.CartItem
}

// groupByStore partitions cart items by store, preserving first-seen order.
func groupByStore(items []models.CartItem) []storeGroup {
	var groups []storeGroup
	index := make(map[int64]int)
	for _, item := range items {
		i, ok := index[item.StoreID]
		if !ok {
			groups = append(groups, storeGroup{storeID: item.StoreID})
			i = len(groups) - 1
			index[item.StoreID] = i
		}
		groups[i].items = append(groups[i].items, item)
	}
	return groups
}

func (s *CheckoutService) buildOrder(customerID int64, group storeGroup, fees map[int64]models.Money) (*models.Order, error) {
	var subtotal models.Money
	orderItems := make([]models.OrderItem, 0, len(group.items))

	for _, item := range group.items {
		subtotal = subtotal.Add(item.UnitPriceSnapshot.MulQty(item.Qty))

		snapshot := map[string]interface{}{
			"unit_price": item.UnitPriceSnapshot.String(),
			"currency":   item.CurrencySnapshot,
		}
		if item.Product != nil {
			snapshot["product_name"] = item.Product.Name
		}
		if item.Variant != nil && item.Variant.SKU != nil {
			snapshot["sku"] = *item.Variant.SKU
		}
		snapJSON, err := models.NewJSONB(snapshot)
		if err != nil {
			return nil, err
		}

		orderItems = append(orderItems, models.OrderItem{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Qty:       item.Qty,
			UnitPrice: item.UnitPriceSnapshot,
			Snapshot:  snapJSON,
		})
	}

	fee := fees[group.storeID]
	return &models.Order{
		StoreID:       group.storeID,
		CustomerID:    customerID,
		Currency:      group.items[0].CurrencySnapshot,
		Subtotal:      subtotal,
		ShippingFee:   fee,
		Total:         subtotal.Add(fee),
		Status:        models.OrderPending,
		PaymentStatus: models.PaymentUnpaid,
		Items:         orderItems,
	}, nil
}
