package services

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"mall-service/internal/models"
)

// CatalogRepository is the persistence surface for the catalog: public
// storefront reads plus tenant-side CRUD.
type CatalogRepository interface {
	ListWings(ctx context.Context) ([]models.Wing, error)
	// GetStorefront returns the ACTIVE store with enabled sections and
	// enabled products (images, variants, stock); nil when absent or not
	// ACTIVE.
	GetStorefront(ctx context.Context, slug string) (*models.Store, error)

	ListSections(ctx context.Context, storeID int64) ([]models.StoreSection, error)
	GetSection(ctx context.Context, storeID, sectionID int64) (*models.StoreSection, error)
	CreateSection(ctx context.Context, section *models.StoreSection) error

	ListProducts(ctx context.Context, storeID int64) ([]models.Product, error)
	GetStoreProduct(ctx context.Context, storeID, productID int64) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error

	ListVariants(ctx context.Context, productID int64) ([]models.ProductVariant, error)
	CreateVariant(ctx context.Context, variant *models.ProductVariant) error

	ListStaff(ctx context.Context, storeID int64) ([]models.StoreStaff, error)
	// UpsertStaff creates or re-enables the store/user link with the role.
	UpsertStaff(ctx context.Context, storeID, userID int64, role models.StaffRole) (*models.StoreStaff, error)

	ListStoreOrders(ctx context.Context, storeID int64, limit int) ([]models.Order, error)
}

// StaffDirectory is the slice of the user store the staff workflow needs.
type StaffDirectory interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// EnsureRole grants the platform role if the user does not already
	// hold it.
	EnsureRole(ctx context.Context, userID int64, code models.RoleCode) error
}

// CatalogCache caches public catalog payloads. Implementations must degrade
// to a miss on any backend failure.
type CatalogCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) bool
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration)
}

const (
	wingsCacheKey       = "catalog:wings"
	storefrontCacheKey  = "catalog:store:"
	catalogCacheTTL     = time.Minute
	storeOrdersListCap  = 50
	defaultLowStockWarn = 5
)

// CatalogService owns the public storefront and the tenant-side catalog CRUD.
type CatalogService struct {
	repo   CatalogRepository
	users  StaffDirectory
	cache  CatalogCache
	logger *logrus.Logger
}

func NewCatalogService(repo CatalogRepository, users StaffDirectory, cache CatalogCache, logger *logrus.Logger) *CatalogService {
	return &CatalogService{repo: repo, users: users, cache: cache, logger: logger}
}

// ListWings returns the enabled wings with their active stores, cached with
// a short TTL so tenant edits surface within a minute.
func (s *CatalogService) ListWings(ctx context.Context) ([]models.Wing, error) {
	if s.cache != nil {
		var cached []models.Wing
		if s.cache.GetJSON(ctx, wingsCacheKey, &cached) {
			return cached, nil
		}
	}

	wings, err := s.repo.ListWings(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.SetJSON(ctx, wingsCacheKey, wings, catalogCacheTTL)
	}
	return wings, nil
}

// Storefront returns one ACTIVE store's public catalog.
func (s *CatalogService) Storefront(ctx context.Context, slug string) (*models.Store, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, NewBadRequestError("slug is required")
	}

	key := storefrontCacheKey + slug
	if s.cache != nil {
		var cached models.Store
		if s.cache.GetJSON(ctx, key, &cached) {
			return &cached, nil
		}
	}

	store, err := s.repo.GetStorefront(ctx, slug)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, NewNotFoundError("Store not found")
	}
	if s.cache != nil {
		s.cache.SetJSON(ctx, key, store, catalogCacheTTL)
	}
	return store, nil
}

// ListSections returns the store's sections ordered by sort order.
func (s *CatalogService) ListSections(ctx context.Context, storeID int64) ([]models.StoreSection, error) {
	return s.repo.ListSections(ctx, storeID)
}

// CreateSectionInput is a validated new-section payload.
type CreateSectionInput struct {
	Name      string
	SortOrder int
}

func (s *CatalogService) CreateSection(ctx context.Context, storeID int64, input CreateSectionInput) (*models.StoreSection, error) {
	name := strings.TrimSpace(input.Name)
	if len(name) < 2 {
		return nil, NewBadRequestError("name must be at least 2 characters")
	}

	section := &models.StoreSection{
		StoreID:   storeID,
		Name:      name,
		SortOrder: input.SortOrder,
		Status:    true,
	}
	if err := s.repo.CreateSection(ctx, section); err != nil {
		return nil, err
	}
	return section, nil
}

// ListProducts returns the store's products with images and variants.
func (s *CatalogService) ListProducts(ctx context.Context, storeID int64) ([]models.Product, error) {
	return s.repo.ListProducts(ctx, storeID)
}

// CreateProductInput is a validated new-product payload.
type CreateProductInput struct {
	SectionID   *int64
	Name        string
	Description string
	BasePrice   models.Money
	Currency    models.CurrencyCode
}

func (s *CatalogService) CreateProduct(ctx context.Context, storeID int64, input CreateProductInput) (*models.Product, error) {
	name := strings.TrimSpace(input.Name)
	if len(name) < 2 {
		return nil, NewBadRequestError("name must be at least 2 characters")
	}
	if input.SectionID != nil {
		section, err := s.repo.GetSection(ctx, storeID, *input.SectionID)
		if err != nil {
			return nil, err
		}
		if section == nil {
			return nil, NewBadRequestError("section does not belong to this store")
		}
	}

	currency := input.Currency
	if currency == "" {
		currency = models.CurrencyYER
	}

	product := &models.Product{
		StoreID:     storeID,
		SectionID:   input.SectionID,
		Name:        name,
		Description: input.Description,
		BasePrice:   input.BasePrice,
		Currency:    currency,
		Status:      true,
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"store_id":   storeID,
		"product_id": product.ID,
	}).Info("Product created")
	return product, nil
}

// ListVariants returns the variants of a product that must live in the store.
func (s *CatalogService) ListVariants(ctx context.Context, storeID, productID int64) ([]models.ProductVariant, error) {
	product, err := s.repo.GetStoreProduct(ctx, storeID, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, NewNotFoundError("Product not found in this store")
	}
	return s.repo.ListVariants(ctx, productID)
}

// VariantAttributeInput is one name/value pair on a new variant.
type VariantAttributeInput struct {
	Name  string
	Value string
}

// CreateVariantInput is a validated new-variant payload.
type CreateVariantInput struct {
	ProductID         int64
	SKU               *string
	PriceOverride     *models.Money
	Attributes        []VariantAttributeInput
	StockQty          int
	LowStockThreshold *int
}

func (s *CatalogService) CreateVariant(ctx context.Context, storeID int64, input CreateVariantInput) (*models.ProductVariant, error) {
	if input.StockQty < 0 {
		return nil, NewBadRequestError("stockQty must not be negative")
	}

	product, err := s.repo.GetStoreProduct(ctx, storeID, input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, NewNotFoundError("Product not found in this store")
	}

	threshold := defaultLowStockWarn
	if input.LowStockThreshold != nil {
		threshold = *input.LowStockThreshold
	}

	variant := &models.ProductVariant{
		ProductID:     input.ProductID,
		SKU:           input.SKU,
		PriceOverride: input.PriceOverride,
		Status:        true,
		Inventory: &models.Inventory{
			StockQty:          input.StockQty,
			LowStockThreshold: threshold,
		},
	}
	for _, attr := range input.Attributes {
		name := strings.TrimSpace(attr.Name)
		value := strings.TrimSpace(attr.Value)
		if name == "" || value == "" {
			return nil, NewBadRequestError("attribute name and value are required")
		}
		variant.Attributes = append(variant.Attributes, models.VariantAttribute{
			AttributeName:  name,
			AttributeValue: value,
		})
	}

	if err := s.repo.CreateVariant(ctx, variant); err != nil {
		return nil, err
	}
	return variant, nil
}

// ListStaff returns the store's staff links with user details.
func (s *CatalogService) ListStaff(ctx context.Context, storeID int64) ([]models.StoreStaff, error) {
	return s.repo.ListStaff(ctx, storeID)
}

// AddStaff links an existing user to the store with a staff role. The user
// gains the platform STAFF role; an existing link is re-enabled and its role
// updated.
func (s *CatalogService) AddStaff(ctx context.Context, storeID int64, userEmail, role string) (*models.StoreStaff, error) {
	staffRole, err := models.ParseStaffRole(role)
	if err != nil {
		return nil, NewBadRequestError("role must be MANAGER, SALES or PRODUCTS")
	}

	email := strings.ToLower(strings.TrimSpace(userEmail))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, NewNotFoundError("User not found")
	}

	if err := s.users.EnsureRole(ctx, user.ID, models.RoleStaff); err != nil {
		return nil, err
	}

	link, err := s.repo.UpsertStaff(ctx, storeID, user.ID, staffRole)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"store_id": storeID,
		"user_id":  user.ID,
		"role":     staffRole,
	}).Info("Staff link upserted")
	return link, nil
}

// StoreOrders returns the store's most recent orders.
func (s *CatalogService) StoreOrders(ctx context.Context, storeID int64) ([]models.Order, error) {
	return s.repo.ListStoreOrders(ctx, storeID, storeOrdersListCap)
}
