package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"mall-service/internal/models"
)

// CartRepository is the persistence surface the cart service needs.
type CartRepository interface {
	// GetOrCreateActiveCart returns the customer's active cart, creating it
	// atomically when none exists. Safe under concurrent first-add requests.
	GetOrCreateActiveCart(ctx context.Context, customerID int64) (*models.Cart, error)
	GetActiveCartWithItems(ctx context.Context, customerID int64) (*models.Cart, error)
	CreateItem(ctx context.Context, item *models.CartItem) error
}

// CartCatalog is the read-only catalog surface the cart service needs to
// validate additions and snapshot prices.
type CartCatalog interface {
	// GetSellableProduct returns the product only if it is enabled and its
	// store is ACTIVE; nil otherwise.
	GetSellableProduct(ctx context.Context, productID int64) (*models.Product, error)
	// GetVariantWithInventory returns the variant only if it is enabled and
	// belongs to the product; nil otherwise.
	GetVariantWithInventory(ctx context.Context, productID, variantID int64) (*models.ProductVariant, error)
}

// CartService owns the customer cart: one active cart per customer, line
// items with frozen price snapshots.
type CartService struct {
	carts   CartRepository
	catalog CartCatalog
	logger  *logrus.Logger
}

func NewCartService(carts CartRepository, catalog CartCatalog, logger *logrus.Logger) *CartService {
	return &CartService{carts: carts, catalog: catalog, logger: logger}
}

// AddItemInput is a validated add-to-cart request.
type AddItemInput struct {
	ProductID int64
	VariantID *int64
	Qty       int
}

// AddItem validates the product, variant and stock, then appends a line item
// with the effective unit price frozen at add time. Stock is checked but not
// reserved; the checkout transaction re-checks and decrements.
func (s *CartService) AddItem(ctx context.Context, customerID int64, input AddItemInput) (*models.CartItem, error) {
	if input.Qty < 1 {
		return nil, NewBadRequestError("qty must be at least 1")
	}

	product, err := s.catalog.GetSellableProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, NewNotFoundError("Product not found")
	}

	unitPrice := product.BasePrice
	if input.VariantID != nil {
		variant, err := s.catalog.GetVariantWithInventory(ctx, input.ProductID, *input.VariantID)
		if err != nil {
			return nil, err
		}
		if variant == nil {
			return nil, NewNotFoundError("Variant not found")
		}
		stock := 0
		if variant.Inventory != nil {
			stock = variant.Inventory.StockQty
		}
		if stock < input.Qty {
			return nil, NewBadRequestError("Insufficient stock for variant")
		}
		if variant.PriceOverride != nil {
			unitPrice = *variant.PriceOverride
		}
	}

	cart, err := s.carts.GetOrCreateActiveCart(ctx, customerID)
	if err != nil {
		return nil, err
	}

	item := &models.CartItem{
		CartID:            cart.ID,
		StoreID:           product.StoreID,
		ProductID:         product.ID,
		VariantID:         input.VariantID,
		Qty:               input.Qty,
		UnitPriceSnapshot: unitPrice,
		CurrencySnapshot:  product.Currency,
	}
	if err := s.carts.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"cart_id":    cart.ID,
		"product_id": product.ID,
		"qty":        input.Qty,
	}).Info("Cart item added")

	return item, nil
}

// CartGroup is one store's slice of the cart with its running subtotal.
type CartGroup struct {
	StoreID   int64
	StoreName string
	StoreSlug string
	Currency  models.CurrencyCode
	Items     []models.CartItem
	Subtotal  models.Money
}

// CartView is the customer's active cart grouped by store.
type CartView struct {
	CartID int64
	Groups []CartGroup
}

// ViewCart groups the active cart's items by store. A customer with no
// active cart gets one created on view, so the response always carries a
// cart id; an empty cart yields an empty group list, not an error.
func (s *CartService) ViewCart(ctx context.Context, customerID int64) (*CartView, error) {
	cart, err := s.carts.GetActiveCartWithItems(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		cart, err = s.carts.GetOrCreateActiveCart(ctx, customerID)
		if err != nil {
			return nil, err
		}
	}

	view := &CartView{CartID: cart.ID, Groups: []CartGroup{}}
	index := make(map[int64]int)
	for _, item := range cart.Items {
		i, ok := index[item.StoreID]
		if !ok {
			group := CartGroup{
				StoreID:  item.StoreID,
				Currency: item.CurrencySnapshot,
				Items:    []models.CartItem{},
			}
			if item.Store != nil {
				group.StoreName = item.Store.Name
				group.StoreSlug = item.Store.Slug
			}
			view.Groups = append(view.Groups, group)
			i = len(view.Groups) - 1
			index[item.StoreID] = i
		}
		view.Groups[i].Items = append(view.Groups[i].Items, item)
		view.Groups[i].Subtotal = view.Groups[i].Subtotal.Add(item.UnitPriceSnapshot.MulQty(item.Qty))
	}
	return view, nil
}
