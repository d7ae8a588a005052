package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mall-service/internal/models"
)

type fakeCatalogRepo struct {
	products map[int64]*models.Product
	sections map[int64]*models.StoreSection
	variants []*models.ProductVariant
	staff    map[string]*models.StoreStaff
	nextID   int64
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		products: make(map[int64]*models.Product),
		sections: make(map[int64]*models.StoreSection),
		staff:    make(map[string]*models.StoreStaff),
	}
}

func staffKey(storeID, userID int64) string {
	return fmt.Sprintf("%d:%d", storeID, userID)
}

func (f *fakeCatalogRepo) ListWings(context.Context) ([]models.Wing, error) { return nil, nil }
func (f *fakeCatalogRepo) GetStorefront(context.Context, string) (*models.Store, error) {
	return nil, nil
}

func (f *fakeCatalogRepo) ListSections(_ context.Context, storeID int64) ([]models.StoreSection, error) {
	var out []models.StoreSection
	for _, s := range f.sections {
		if s.StoreID == storeID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeCatalogRepo) GetSection(_ context.Context, storeID, sectionID int64) (*models.StoreSection, error) {
	s, ok := f.sections[sectionID]
	if !ok || s.StoreID != storeID {
		return nil, nil
	}
	return s, nil
}

func (f *fakeCatalogRepo) CreateSection(_ context.Context, section *models.StoreSection) error {
	f.nextID++
	section.ID = f.nextID
	f.sections[section.ID] = section
	return nil
}

func (f *fakeCatalogRepo) ListProducts(_ context.Context, storeID int64) ([]models.Product, error) {
	var out []models.Product
	for _, p := range f.products {
		if p.StoreID == storeID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeCatalogRepo) GetStoreProduct(_ context.Context, storeID, productID int64) (*models.Product, error) {
	p, ok := f.products[productID]
	if !ok || p.StoreID != storeID {
		return nil, nil
	}
	return p, nil
}

func (f *fakeCatalogRepo) CreateProduct(_ context.Context, product *models.Product) error {
	f.nextID++
	product.ID = f.nextID
	f.products[product.ID] = product
	return nil
}

func (f *fakeCatalogRepo) ListVariants(_ context.Context, productID int64) ([]models.ProductVariant, error) {
	var out []models.ProductVariant
	for _, v := range f.variants {
		if v.ProductID == productID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (f *fakeCatalogRepo) CreateVariant(_ context.Context, variant *models.ProductVariant) error {
	f.nextID++
	variant.ID = f.nextID
	f.variants = append(f.variants, variant)
	return nil
}

func (f *fakeCatalogRepo) ListStaff(_ context.Context, storeID int64) ([]models.StoreStaff, error) {
	var out []models.StoreStaff
	for _, link := range f.staff {
		if link.StoreID == storeID {
			out = append(out, *link)
		}
	}
	return out, nil
}

func (f *fakeCatalogRepo) UpsertStaff(_ context.Context, storeID, userID int64, role models.StaffRole) (*models.StoreStaff, error) {
	key := staffKey(storeID, userID)
	if existing, ok := f.staff[key]; ok {
		existing.Role = role
		existing.Status = true
		return existing, nil
	}
	f.nextID++
	link := &models.StoreStaff{ID: f.nextID, StoreID: storeID, UserID: userID, Role: role, Status: true}
	f.staff[key] = link
	return link, nil
}

func (f *fakeCatalogRepo) ListStoreOrders(context.Context, int64, int) ([]models.Order, error) {
	return nil, nil
}

type fakeStaffDirectory struct {
	usersByEmail map[string]*models.User
	granted      map[int64][]models.RoleCode
}

func (f *fakeStaffDirectory) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return f.usersByEmail[email], nil
}

func (f *fakeStaffDirectory) EnsureRole(_ context.Context, userID int64, code models.RoleCode) error {
	if f.granted == nil {
		f.granted = make(map[int64][]models.RoleCode)
	}
	f.granted[userID] = append(f.granted[userID], code)
	return nil
}

func newCatalogFixture() (*CatalogService, *fakeCatalogRepo, *fakeStaffDirectory) {
	repo := newFakeCatalogRepo()
	users := &fakeStaffDirectory{usersByEmail: make(map[string]*models.User)}
	return NewCatalogService(repo, users, nil, quietLogger()), repo, users
}

func TestCatalogService_CreateProduct_SectionMustBelongToStore(t *testing.T) {
	svc, repo, _ := newCatalogFixture()
	ctx := context.Background()

	section, err := svc.CreateSection(ctx, 1, CreateSectionInput{Name: "Shoes"})
	require.NoError(t, err)

	otherStoreSection := section.ID
	_, err = svc.CreateProduct(ctx, 2, CreateProductInput{
		SectionID: &otherStoreSection,
		Name:      "Sneaker",
		BasePrice: models.Money(5000),
	})
	_, ok := IsBadRequestError(err)
	assert.True(t, ok, "section of store 1 is rejected for store 2")

	product, err := svc.CreateProduct(ctx, 1, CreateProductInput{
		SectionID: &section.ID,
		Name:      "Sneaker",
		BasePrice: models.Money(5000),
	})
	require.NoError(t, err)
	assert.Equal(t, models.CurrencyYER, product.Currency, "currency defaults to YER")
	assert.NotNil(t, repo.products[product.ID])
}

func TestCatalogService_CreateVariant_ProductScopedToStore(t *testing.T) {
	svc, _, _ := newCatalogFixture()
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, 1, CreateProductInput{Name: "Thobe", BasePrice: models.Money(1500)})
	require.NoError(t, err)

	_, err = svc.CreateVariant(ctx, 2, CreateVariantInput{ProductID: product.ID, StockQty: 3})
	notFound, ok := IsNotFoundError(err)
	require.True(t, ok)
	assert.Equal(t, "Product not found in this store", notFound.Message)

	variant, err := svc.CreateVariant(ctx, 1, CreateVariantInput{
		ProductID: product.ID,
		StockQty:  3,
		Attributes: []VariantAttributeInput{
			{Name: "size", Value: "M"},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, variant.Inventory)
	assert.Equal(t, 3, variant.Inventory.StockQty)
	assert.Equal(t, defaultLowStockWarn, variant.Inventory.LowStockThreshold)

	_, err = svc.CreateVariant(ctx, 1, CreateVariantInput{ProductID: product.ID, StockQty: -1})
	_, ok = IsBadRequestError(err)
	assert.True(t, ok, "negative stock rejected")
}

func TestCatalogService_AddStaff(t *testing.T) {
	svc, repo, users := newCatalogFixture()
	ctx := context.Background()

	users.usersByEmail["sales@mall.com"] = &models.User{ID: 9, Email: "sales@mall.com"}

	_, err := svc.AddStaff(ctx, 1, "ghost@mall.com", "SALES")
	notFound, ok := IsNotFoundError(err)
	require.True(t, ok)
	assert.Equal(t, "User not found", notFound.Message)

	_, err = svc.AddStaff(ctx, 1, "sales@mall.com", "JANITOR")
	_, ok = IsBadRequestError(err)
	assert.True(t, ok, "unknown staff role")

	link, err := svc.AddStaff(ctx, 1, "Sales@Mall.com", "SALES")
	require.NoError(t, err)
	assert.Equal(t, models.StaffSales, link.Role)
	assert.True(t, link.Status)
	assert.Contains(t, users.granted[9], models.RoleStaff, "platform STAFF role granted")

	// Upsert path: same user, new role.
	link2, err := svc.AddStaff(ctx, 1, "sales@mall.com", "MANAGER")
	require.NoError(t, err)
	assert.Equal(t, link.ID, link2.ID, "existing link updated, not duplicated")
	assert.Equal(t, models.StaffManager, link2.Role)
	require.Len(t, repo.staff, 1)
}
