package models

import (
	"fmt"
	"time"
)

// RoleCode is the closed set of platform-level roles. A user may hold
// several at once (many-to-many via user_roles).
type RoleCode string

const (
	RoleAdmin    RoleCode = "ADMIN"
	RoleTenant   RoleCode = "TENANT"
	RoleCustomer RoleCode = "CUSTOMER"
	RoleStaff    RoleCode = "STAFF"
)

// ParseRoleCode validates a role code coming from storage or a request.
func ParseRoleCode(s string) (RoleCode, error) {
	switch RoleCode(s) {
	case RoleAdmin, RoleTenant, RoleCustomer, RoleStaff:
		return RoleCode(s), nil
	}
	return "", fmt.Errorf("unknown role code: %q", s)
}

// StaffRole is the closed set of per-store staff roles.
type StaffRole string

const (
	StaffManager  StaffRole = "MANAGER"
	StaffSales    StaffRole = "SALES"
	StaffProducts StaffRole = "PRODUCTS"
)

// ParseStaffRole validates a staff role string.
func ParseStaffRole(s string) (StaffRole, error) {
	switch StaffRole(s) {
	case StaffManager, StaffSales, StaffProducts:
		return StaffRole(s), nil
	}
	return "", fmt.Errorf("unknown staff role: %q", s)
}

// CurrencyCode is the set of currencies stores may trade in.
type CurrencyCode string

const (
	CurrencyYER CurrencyCode = "YER"
	CurrencySAR CurrencyCode = "SAR"
	CurrencyUSD CurrencyCode = "USD"
)

// ParseCurrencyCode validates a currency string.
func ParseCurrencyCode(s string) (CurrencyCode, error) {
	switch CurrencyCode(s) {
	case CurrencyYER, CurrencySAR, CurrencyUSD:
		return CurrencyCode(s), nil
	}
	return "", fmt.Errorf("unknown currency code: %q", s)
}

// StoreStatus is the store lifecycle. Only ACTIVE stores can be purchased
// from or browsed on the public storefront.
type StoreStatus string

const (
	StoreActive    StoreStatus = "ACTIVE"
	StorePending   StoreStatus = "PENDING"
	StoreSuspended StoreStatus = "SUSPENDED"
	StoreClosed    StoreStatus = "CLOSED"
)

// OrderStatus tracks order fulfilment. Checkout always creates PENDING.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderConfirmed OrderStatus = "CONFIRMED"
	OrderShipped   OrderStatus = "SHIPPED"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// PaymentStatus tracks payment. Checkout always creates UNPAID.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "UNPAID"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// PromoType is the kind of promotion a store can submit.
type PromoType string

const (
	PromoPercent  PromoType = "PERCENT"
	PromoAmount   PromoType = "AMOUNT"
	PromoFreeship PromoType = "FREESHIP"
	PromoCoupon   PromoType = "COUPON"
)

// ParsePromoType validates a promotion type string.
func ParsePromoType(s string) (PromoType, error) {
	switch PromoType(s) {
	case PromoPercent, PromoAmount, PromoFreeship, PromoCoupon:
		return PromoType(s), nil
	}
	return "", fmt.Errorf("unknown promotion type: %q", s)
}

// PromoStatus is the moderation state machine: promotions are created
// PENDING and move to ACTIVE/REJECTED/STOPPED by admin decision only.
type PromoStatus string

const (
	PromoPending  PromoStatus = "PENDING"
	PromoActive   PromoStatus = "ACTIVE"
	PromoRejected PromoStatus = "REJECTED"
	PromoStopped  PromoStatus = "STOPPED"
)

// ParsePromoDecision validates an admin decision target state. PENDING is
// not a valid decision; transitions are one-shot.
func ParsePromoDecision(s string) (PromoStatus, error) {
	switch PromoStatus(s) {
	case PromoActive, PromoRejected, PromoStopped:
		return PromoStatus(s), nil
	}
	return "", fmt.Errorf("invalid promotion decision: %q", s)
}

// User is a platform identity. Roles are attached via user_roles.
type User struct {
	ID           int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string `json:"name" gorm:"size:120;not null"`
	Email        string `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"size:100;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Roles       []Role       `json:"roles,omitempty" gorm:"many2many:user_roles"`
	OwnedStores []Store      `json:"owned_stores,omitempty" gorm:"foreignKey:OwnerUserID"`
	StaffLinks  []StoreStaff `json:"staff_links,omitempty" gorm:"foreignKey:UserID"`
}

// Role is a platform role row (seeded once, referenced by code).
type Role struct {
	ID   int64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Code RoleCode `json:"code" gorm:"size:20;uniqueIndex;not null"`
	Name string   `json:"name" gorm:"size:80;not null"`
}

// Wing groups stores into a mall section (fashion, electronics, ...).
type Wing struct {
	ID        int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string `json:"name" gorm:"size:120;not null"`
	Slug      string `json:"slug" gorm:"size:60;uniqueIndex;not null"`
	SortOrder int    `json:"sort_order" gorm:"default:0"`
	Status    bool   `json:"status" gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Stores []Store `json:"stores,omitempty" gorm:"foreignKey:WingID"`
}

// Store is owned by exactly one tenant user and lives in one wing.
type Store struct {
	ID           int64        `json:"id" gorm:"primaryKey;autoIncrement"`
	WingID       int64        `json:"wing_id" gorm:"not null;index"`
	OwnerUserID  int64        `json:"owner_user_id" gorm:"not null;index"`
	Name         string       `json:"name" gorm:"size:160;not null"`
	Slug         string       `json:"slug" gorm:"size:60;uniqueIndex;not null"`
	Description  string       `json:"description"`
	Currency     CurrencyCode `json:"currency" gorm:"size:3;not null;default:'YER'"`
	Status       StoreStatus  `json:"status" gorm:"size:20;not null;default:'PENDING';index"`
	SignboardURL string       `json:"signboard_url"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Wing     *Wing          `json:"wing,omitempty" gorm:"foreignKey:WingID"`
	Owner    *User          `json:"owner,omitempty" gorm:"foreignKey:OwnerUserID"`
	Sections []StoreSection `json:"sections,omitempty" gorm:"foreignKey:StoreID"`
	Products []Product      `json:"products,omitempty" gorm:"foreignKey:StoreID"`
	Staff    []StoreStaff   `json:"staff,omitempty" gorm:"foreignKey:StoreID"`
}

// StoreStaff grants one user a staff role over one store. A disabled link
// (Status=false) grants no access.
type StoreStaff struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	StoreID   int64     `json:"store_id" gorm:"not null;uniqueIndex:ux_store_staff_store_user"`
	UserID    int64     `json:"user_id" gorm:"not null;uniqueIndex:ux_store_staff_store_user"`
	Role      StaffRole `json:"role" gorm:"size:20;not null"`
	Status    bool      `json:"status" gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Store *Store `json:"store,omitempty" gorm:"foreignKey:StoreID"`
	User  *User  `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// StoreSection is a named shelf inside a store.
type StoreSection struct {
	ID        int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	StoreID   int64  `json:"store_id" gorm:"not null;uniqueIndex:ux_section_store_name"`
	Name      string `json:"name" gorm:"size:120;not null;uniqueIndex:ux_section_store_name"`
	SortOrder int    `json:"sort_order" gorm:"default:0"`
	Status    bool   `json:"status" gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Product belongs to one store and optionally one section.
type Product struct {
	ID          int64        `json:"id" gorm:"primaryKey;autoIncrement"`
	StoreID     int64        `json:"store_id" gorm:"not null;index"`
	SectionID   *int64       `json:"section_id" gorm:"index"`
	Name        string       `json:"name" gorm:"size:200;not null"`
	Description string       `json:"description"`
	BasePrice   Money        `json:"base_price" gorm:"not null"`
	Currency    CurrencyCode `json:"currency" gorm:"size:3;not null;default:'YER'"`
	Status      bool         `json:"status" gorm:"default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Store    *Store           `json:"store,omitempty" gorm:"foreignKey:StoreID"`
	Section  *StoreSection    `json:"section,omitempty" gorm:"foreignKey:SectionID"`
	Images   []ProductImage   `json:"images,omitempty" gorm:"foreignKey:ProductID"`
	Variants []ProductVariant `json:"variants,omitempty" gorm:"foreignKey:ProductID"`
}

// ProductImage is an ordered product photo.
type ProductImage struct {
	ID        int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	ProductID int64  `json:"product_id" gorm:"not null;index"`
	ImageURL  string `json:"image_url" gorm:"not null"`
	SortOrder int    `json:"sort_order" gorm:"default:0"`
	CreatedAt time.Time
}

// ProductVariant optionally overrides the product price and owns exactly
// one Inventory record.
type ProductVariant struct {
	ID            int64   `json:"id" gorm:"primaryKey;autoIncrement"`
	ProductID     int64   `json:"product_id" gorm:"not null;index"`
	SKU           *string `json:"sku" gorm:"size:80"`
	PriceOverride *Money  `json:"price_override"`
	Status        bool    `json:"status" gorm:"default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Product    *Product           `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Attributes []VariantAttribute `json:"attributes,omitempty" gorm:"foreignKey:VariantID"`
	Inventory  *Inventory         `json:"inventory,omitempty" gorm:"foreignKey:VariantID"`
}

// VariantAttribute is a name/value pair describing a variant (color, size).
type VariantAttribute struct {
	ID             int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	VariantID      int64  `json:"variant_id" gorm:"not null;index"`
	AttributeName  string `json:"attribute_name" gorm:"size:80;not null"`
	AttributeValue string `json:"attribute_value" gorm:"size:160;not null"`
}

// Inventory tracks stock for one variant. The check constraint backs the
// invariant that stock never goes negative, independent of application code.
type Inventory struct {
	ID                int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	VariantID         int64 `json:"variant_id" gorm:"not null;uniqueIndex"`
	StockQty          int   `json:"stock_qty" gorm:"not null;default:0;check:stock_qty >= 0"`
	LowStockThreshold int   `json:"low_stock_threshold" gorm:"not null;default:5"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Cart is a customer's shopping cart. The partial unique index enforces at
// most one active cart per customer at the persistence layer, so concurrent
// first-add requests cannot create two.
type Cart struct {
	ID         int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	CustomerID int64 `json:"customer_id" gorm:"not null;index:ux_cart_customer_active,unique,where:status = true"`
	Status     bool  `json:"status" gorm:"default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Items []CartItem `json:"items,omitempty" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
}

// CartItem freezes the unit price and currency at add time; later catalog
// price changes never touch it.
type CartItem struct {
	ID                int64        `json:"id" gorm:"primaryKey;autoIncrement"`
	CartID            int64        `json:"cart_id" gorm:"not null;index"`
	StoreID           int64        `json:"store_id" gorm:"not null;index"`
	ProductID         int64        `json:"product_id" gorm:"not null"`
	VariantID         *int64       `json:"variant_id"`
	Qty               int          `json:"qty" gorm:"not null"`
	UnitPriceSnapshot Money        `json:"unit_price_snapshot" gorm:"not null"`
	CurrencySnapshot  CurrencyCode `json:"currency_snapshot" gorm:"size:3;not null"`
	CreatedAt         time.Time

	Product *Product        `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Variant *ProductVariant `json:"variant,omitempty" gorm:"foreignKey:VariantID"`
	Store   *Store          `json:"store,omitempty" gorm:"foreignKey:StoreID"`
}

// Order is scoped to exactly one store. Once created its items are an
// immutable snapshot; the cart flow never mutates it again.
type Order struct {
	ID            int64         `json:"id" gorm:"primaryKey;autoIncrement"`
	StoreID       int64         `json:"store_id" gorm:"not null;index"`
	CustomerID    int64         `json:"customer_id" gorm:"not null;index"`
	Currency      CurrencyCode  `json:"currency" gorm:"size:3;not null"`
	Subtotal      Money         `json:"subtotal" gorm:"not null"`
	ShippingFee   Money         `json:"shipping_fee" gorm:"not null;default:0"`
	Total         Money         `json:"total" gorm:"not null"`
	Status        OrderStatus   `json:"status" gorm:"size:20;not null;default:'PENDING';index"`
	PaymentStatus PaymentStatus `json:"payment_status" gorm:"size:20;not null;default:'UNPAID'"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Items []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

// OrderItem carries its own price snapshot plus a JSONB copy of the product
// details as sold.
type OrderItem struct {
	ID        int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID   int64  `json:"order_id" gorm:"not null;index"`
	ProductID int64  `json:"product_id" gorm:"not null"`
	VariantID *int64 `json:"variant_id"`
	Qty       int    `json:"qty" gorm:"not null"`
	UnitPrice Money  `json:"unit_price" gorm:"not null"`
	Snapshot  JSONB  `json:"snapshot" gorm:"type:jsonb;default:'{}'"`
	CreatedAt time.Time
}

// Promotion is submitted by a tenant or manager and sits PENDING until an
// admin decides. CouponCode is only kept for COUPON promotions.
type Promotion struct {
	ID           int64       `json:"id" gorm:"primaryKey;autoIncrement"`
	StoreID      int64       `json:"store_id" gorm:"not null;index"`
	Title        string      `json:"title" gorm:"size:200;not null"`
	Type         PromoType   `json:"type" gorm:"size:20;not null"`
	Value        Money       `json:"value" gorm:"not null;default:0"`
	CouponCode   *string     `json:"coupon_code" gorm:"size:60"`
	Status       PromoStatus `json:"status" gorm:"size:20;not null;default:'PENDING';index"`
	RejectReason *string     `json:"reject_reason"`
	CreatedByID  int64       `json:"created_by_id" gorm:"not null"`
	ApprovedByID *int64      `json:"approved_by_id"`
	Priority     int         `json:"priority" gorm:"default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Store     *Store `json:"store,omitempty" gorm:"foreignKey:StoreID"`
	CreatedBy *User  `json:"created_by,omitempty" gorm:"foreignKey:CreatedByID"`
}
