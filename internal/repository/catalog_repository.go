package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mall-service/internal/models"
)

// CatalogRepository handles wing, store, section, product, variant, staff
// and order reads/writes for the catalog.
type CatalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListWings returns enabled wings ordered by sort order, each with its
// ACTIVE stores.
func (r *CatalogRepository) ListWings(ctx context.Context) ([]models.Wing, error) {
	var wings []models.Wing
	err := r.db.WithContext(ctx).
		Where("status = ?", true).
		Order("sort_order asc, id asc").
		Preload("Stores", "status = ?", models.StoreActive).
		Find(&wings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list wings: %w", err)
	}
	return wings, nil
}

// GetStorefront returns the ACTIVE store with its enabled sections and
// enabled products, nil when absent or inactive.
func (r *CatalogRepository) GetStorefront(ctx context.Context, slug string) (*models.Store, error) {
	var store models.Store
	err := r.db.WithContext(ctx).
		Where("slug = ? AND status = ?", slug, models.StoreActive).
		Preload("Sections", "status = ?", true).
		Preload("Products", "status = ?", true).
		Preload("Products.Images").
		Preload("Products.Variants", "status = ?", true).
		Preload("Products.Variants.Attributes").
		Preload("Products.Variants.Inventory").
		First(&store).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get storefront: %w", err)
	}
	return &store, nil
}

// GetSellableProduct returns the product only when it is enabled and its
// store is ACTIVE.
func (r *CatalogRepository) GetSellableProduct(ctx context.Context, productID int64) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Joins("JOIN stores ON stores.id = products.store_id").
		Where("products.id = ? AND products.status = ? AND stores.status = ?",
			productID, true, models.StoreActive).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

// GetVariantWithInventory returns the enabled variant of the product with
// its inventory preloaded, nil when absent.
func (r *CatalogRepository) GetVariantWithInventory(ctx context.Context, productID, variantID int64) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := r.db.WithContext(ctx).
		Where("id = ? AND product_id = ? AND status = ?", variantID, productID, true).
		Preload("Inventory").
		First(&variant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get variant: %w", err)
	}
	return &variant, nil
}

// ListSections returns the store's sections ordered by sort order.
func (r *CatalogRepository) ListSections(ctx context.Context, storeID int64) ([]models.StoreSection, error) {
	var sections []models.StoreSection
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("sort_order asc, id asc").
		Find(&sections).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}
	return sections, nil
}

// GetSection returns one section of the store, nil when absent.
func (r *CatalogRepository) GetSection(ctx context.Context, storeID, sectionID int64) (*models.StoreSection, error) {
	var section models.StoreSection
	err := r.db.WithContext(ctx).
		Where("id = ? AND store_id = ?", sectionID, storeID).
		First(&section).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get section: %w", err)
	}
	return &section, nil
}

// CreateSection inserts a section.
func (r *CatalogRepository) CreateSection(ctx context.Context, section *models.StoreSection) error {
	if err := r.db.WithContext(ctx).Create(section).Error; err != nil {
		return fmt.Errorf("failed to create section: %w", err)
	}
	return nil
}

// ListProducts returns the store's products with images and variants.
func (r *CatalogRepository) ListProducts(ctx context.Context, storeID int64) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("created_at desc").
		Preload("Images").
		Preload("Variants").
		Preload("Variants.Inventory").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetStoreProduct returns one product of the store, nil when absent.
func (r *CatalogRepository) GetStoreProduct(ctx context.Context, storeID, productID int64) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("id = ? AND store_id = ?", productID, storeID).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get store product: %w", err)
	}
	return &product, nil
}

// CreateProduct inserts a product.
func (r *CatalogRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// ListVariants returns the product's variants with attributes and inventory.
func (r *CatalogRepository) ListVariants(ctx context.Context, productID int64) ([]models.ProductVariant, error) {
	var variants []models.ProductVariant
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Preload("Attributes").
		Preload("Inventory").
		Find(&variants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list variants: %w", err)
	}
	return variants, nil
}

// CreateVariant inserts a variant with its attributes and inventory in one
// transaction (gorm cascades the associations).
func (r *CatalogRepository) CreateVariant(ctx context.Context, variant *models.ProductVariant) error {
	if err := r.db.WithContext(ctx).Create(variant).Error; err != nil {
		return fmt.Errorf("failed to create variant: %w", err)
	}
	return nil
}

// ListStaff returns the store's staff links with user details.
func (r *CatalogRepository) ListStaff(ctx context.Context, storeID int64) ([]models.StoreStaff, error) {
	var staff []models.StoreStaff
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Preload("User").
		Order("created_at desc").
		Find(&staff).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	return staff, nil
}

// UpsertStaff creates the store/user link or, when it already exists,
// re-enables it and updates the role.
func (r *CatalogRepository) UpsertStaff(ctx context.Context, storeID, userID int64, role models.StaffRole) (*models.StoreStaff, error) {
	link := &models.StoreStaff{
		StoreID: storeID,
		UserID:  userID,
		Role:    role,
		Status:  true,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role", "status", "updated_at"}),
	}).Create(link).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert staff link: %w", err)
	}

	// Re-read to get the authoritative row after a conflict update.
	var out models.StoreStaff
	err = r.db.WithContext(ctx).
		Where("store_id = ? AND user_id = ?", storeID, userID).
		First(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load staff link: %w", err)
	}
	return &out, nil
}

// ListStoreOrders returns the store's most recent orders with items.
func (r *CatalogRepository) ListStoreOrders(ctx context.Context, storeID int64, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("created_at desc").
		Limit(limit).
		Preload("Items").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list store orders: %w", err)
	}
	return orders, nil
}
