package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mall-service/internal/models"
)

type fakeCartRepo struct {
	cart       *models.Cart
	items      []*models.CartItem
	nextItemID int64
}

func (f *fakeCartRepo) GetOrCreateActiveCart(_ context.Context, customerID int64) (*models.Cart, error) {
	if f.cart == nil {
		f.cart = &models.Cart{ID: 1, CustomerID: customerID, Status: true}
	}
	return f.cart, nil
}

func (f *fakeCartRepo) GetActiveCartWithItems(_ context.Context, customerID int64) (*models.Cart, error) {
	if f.cart == nil {
		return nil, nil
	}
	cart := *f.cart
	cart.Items = nil
	for _, item := range f.items {
		cart.Items = append(cart.Items, *item)
	}
	return &cart, nil
}

func (f *fakeCartRepo) CreateItem(_ context.Context, item *models.CartItem) error {
	f.nextItemID++
	item.ID = f.nextItemID
	copied := *item
	f.items = append(f.items, &copied)
	return nil
}

type fakeCartCatalog struct {
	products map[int64]*models.Product
	variants map[int64]*models.ProductVariant
}

func (f *fakeCartCatalog) GetSellableProduct(_ context.Context, productID int64) (*models.Product, error) {
	return f.products[productID], nil
}

func (f *fakeCartCatalog) GetVariantWithInventory(_ context.Context, productID, variantID int64) (*models.ProductVariant, error) {
	variant := f.variants[variantID]
	if variant == nil || variant.ProductID != productID {
		return nil, nil
	}
	return variant, nil
}

func newCartFixture() (*CartService, *fakeCartRepo, *fakeCartCatalog) {
	repo := &fakeCartRepo{}
	override := models.Money(2000)
	catalog := &fakeCartCatalog{
		products: map[int64]*models.Product{
			10: {ID: 10, StoreID: 1, Name: "Thobe", BasePrice: 1500, Currency: models.CurrencyYER, Status: true},
			20: {ID: 20, StoreID: 2, Name: "Lamp", BasePrice: 500, Currency: models.CurrencyYER, Status: true},
		},
		variants: map[int64]*models.ProductVariant{
			100: {
				ID: 100, ProductID: 10, PriceOverride: &override,
				Inventory: &models.Inventory{ID: 1, VariantID: 100, StockQty: 5},
			},
		},
	}
	return NewCartService(repo, catalog, quietLogger()), repo, catalog
}

func TestCartService_AddItem_SnapshotsBasePrice(t *testing.T) {
	svc, repo, _ := newCartFixture()

	item, err := svc.AddItem(context.Background(), 7, AddItemInput{ProductID: 10, Qty: 2})
	require.NoError(t, err)

	assert.Equal(t, models.Money(1500), item.UnitPriceSnapshot)
	assert.Equal(t, models.CurrencyYER, item.CurrencySnapshot)
	assert.Equal(t, int64(1), item.StoreID)
	require.Len(t, repo.items, 1)
}

func TestCartService_AddItem_VariantOverride(t *testing.T) {
	svc, _, _ := newCartFixture()

	variantID := int64(100)
	item, err := svc.AddItem(context.Background(), 7, AddItemInput{ProductID: 10, VariantID: &variantID, Qty: 1})
	require.NoError(t, err)
	assert.Equal(t, models.Money(2000), item.UnitPriceSnapshot)
}

func TestCartService_AddItem_SnapshotImmutable(t *testing.T) {
	svc, repo, catalog := newCartFixture()

	_, err := svc.AddItem(context.Background(), 7, AddItemInput{ProductID: 10, Qty: 1})
	require.NoError(t, err)

	// A later price change must not touch the stored snapshot.
	catalog.products[10].BasePrice = 9999
	assert.Equal(t, models.Money(1500), repo.items[0].UnitPriceSnapshot)
}

func TestCartService_AddItem_Validation(t *testing.T) {
	svc, _, _ := newCartFixture()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 7, AddItemInput{ProductID: 10, Qty: 0})
	_, ok := IsBadRequestError(err)
	assert.True(t, ok, "qty below 1")

	_, err = svc.AddItem(ctx, 7, AddItemInput{ProductID: 999, Qty: 1})
	notFound, ok := IsNotFoundError(err)
	require.True(t, ok)
	assert.Equal(t, "Product not found", notFound.Message)

	missingVariant := int64(999)
	_, err = svc.AddItem(ctx, 7, AddItemInput{ProductID: 10, VariantID: &missingVariant, Qty: 1})
	notFound, ok = IsNotFoundError(err)
	require.True(t, ok)
	assert.Equal(t, "Variant not found", notFound.Message)

	variantID := int64(100)
	_, err = svc.AddItem(ctx, 7, AddItemInput{ProductID: 10, VariantID: &variantID, Qty: 6})
	badReq, ok := IsBadRequestError(err)
	require.True(t, ok)
	assert.Equal(t, "Insufficient stock for variant", badReq.Message)
}

func TestCartService_AddItem_StockCheckedNotReserved(t *testing.T) {
	svc, _, catalog := newCartFixture()
	variantID := int64(100)

	_, err := svc.AddItem(context.Background(), 7, AddItemInput{ProductID: 10, VariantID: &variantID, Qty: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, catalog.variants[100].Inventory.StockQty, "add to cart does not decrement stock")
}

func TestCartService_ViewCart_GroupsByStore(t *testing.T) {
	svc, _, _ := newCartFixture()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 7, AddItemInput{ProductID: 10, Qty: 2})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, 7, AddItemInput{ProductID: 10, Qty: 1})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, 7, AddItemInput{ProductID: 20, Qty: 3})
	require.NoError(t, err)

	view, err := svc.ViewCart(ctx, 7)
	require.NoError(t, err)
	require.Len(t, view.Groups, 2)

	byStore := make(map[int64]CartGroup)
	for _, group := range view.Groups {
		byStore[group.StoreID] = group
	}
	assert.Equal(t, models.Money(4500), byStore[1].Subtotal)
	assert.Len(t, byStore[1].Items, 2)
	assert.Equal(t, models.Money(1500), byStore[2].Subtotal)
}

func TestCartService_ViewCart_CreatesCartWhenMissing(t *testing.T) {
	svc, repo, _ := newCartFixture()

	view, err := svc.ViewCart(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, view.Groups)
	assert.Equal(t, int64(1), view.CartID, "viewing with no cart creates one")
	require.NotNil(t, repo.cart)
	assert.Equal(t, int64(7), repo.cart.CustomerID)
}
