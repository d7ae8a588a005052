package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"mall-service/internal/middleware"
	"mall-service/internal/models"
	"mall-service/internal/services"
)

// TenantHandler serves the store-scoped management endpoints: sections,
// products, variants, staff and orders. Role and store-access gates run in
// middleware before any of these.
type TenantHandler struct {
	catalogService *services.CatalogService
	logger         *logrus.Logger
}

// NewTenantHandler creates a new tenant handler
func NewTenantHandler(catalogService *services.CatalogService, logger *logrus.Logger) *TenantHandler {
	return &TenantHandler{catalogService: catalogService, logger: logger}
}

func (h *TenantHandler) storeID(c *gin.Context) (int64, bool) {
	storeID, ok := middleware.GetStoreID(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "storeId is required", nil)
		return 0, false
	}
	return storeID, true
}

// ListSections returns the store's sections.
func (h *TenantHandler) ListSections(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}

	sections, err := h.catalogService.ListSections(c.Request.Context(), storeID)
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}

	out := make([]gin.H, len(sections))
	for i, section := range sections {
		out[i] = gin.H{
			"id":        idString(section.ID),
			"name":      section.Name,
			"sortOrder": section.SortOrder,
			"status":    section.Status,
		}
	}
	c.JSON(http.StatusOK, gin.H{"sections": out})
}

type createSectionRequest struct {
	Name      string `json:"name" binding:"required,min=2"`
	SortOrder int    `json:"sortOrder"`
}

// CreateSection adds a section to the store.
func (h *TenantHandler) CreateSection(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}

	var req createSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	section, err := h.catalogService.CreateSection(c.Request.Context(), storeID, services.CreateSectionInput{
		Name:      req.Name,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":        idString(section.ID),
		"name":      section.Name,
		"sortOrder": section.SortOrder,
	})
}

// ListProducts returns the store's products.
func (h *TenantHandler) ListProducts(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}

	products, err := h.catalogService.ListProducts(c.Request.Context(), storeID)
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}

	out := make([]gin.H, len(products))
	for i, product := range products {
		out[i] = toPublicProduct(product)
	}
	c.JSON(http.StatusOK, gin.H{"products": out})
}

type createProductRequest struct {
	SectionID   *string `json:"sectionId"`
	Name        string  `json:"name" binding:"required,min=2"`
	Description string  `json:"description"`
	BasePrice   string  `json:"basePrice" binding:"required"`
	Currency    string  `json:"currency"`
}

// CreateProduct adds a product to the store.
func (h *TenantHandler) CreateProduct(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}

	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	basePrice, err := models.ParseMoney(req.BasePrice)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "basePrice must be a decimal string with up to 2 decimals", nil)
		return
	}

	var currency models.CurrencyCode
	if req.Currency != "" {
		currency, err = models.ParseCurrencyCode(req.Currency)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "currency must be YER, SAR or USD", nil)
			return
		}
	}

	var sectionID *int64
	if req.SectionID != nil && *req.SectionID != "" {
		id, ok := parseID(*req.SectionID)
		if !ok {
			ErrorResponse(c, http.StatusBadRequest, "Invalid sectionId", nil)
			return
		}
		sectionID = &id
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), storeID, services.CreateProductInput{
		SectionID:   sectionID,
		Name:        req.Name,
		Description: req.Description,
		BasePrice:   basePrice,
		Currency:    currency,
	})
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": idString(product.ID)})
}

// ListVariants returns the variants of one product in the store.
func (h *TenantHandler) ListVariants(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}

	productID, ok := parseID(c.Query("productId"))
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "productId is required", nil)
		return
	}

	variants, err := h.catalogService.ListVariants(c.Request.Context(), storeID, productID)
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}

	out := make([]gin.H, len(variants))
	for i, variant := range variants {
		attrs := make([]gin.H, len(variant.Attributes))
		for j, attr := range variant.Attributes {
			attrs[j] = gin.H{"name": attr.AttributeName, "value": attr.AttributeValue}
		}
		entry := gin.H{
			"id":            idString(variant.ID),
			"sku":           variant.SKU,
			"priceOverride": variant.PriceOverride,
			"attributes":    attrs,
			"status":        variant.Status,
		}
		if variant.Inventory != nil {
			entry["stockQty"] = variant.Inventory.StockQty
			entry["lowStockThreshold"] = variant.Inventory.LowStockThreshold
		}
		out[i] = entry
	}
	c.JSON(http.StatusOK, gin.H{"variants": out})
}

type variantAttributeRequest struct {
	Name  string `json:"name" binding:"required"`
	Value string `json:"value" binding:"required"`
}

type createVariantRequest struct {
	ProductID         string                    `json:"productId" binding:"required"`
	SKU               *string                   `json:"sku"`
	PriceOverride     *string                   `json:"priceOverride"`
	Attributes        []variantAttributeRequest `json:"attributes"`
	StockQty          int                       `json:"stockQty"`
	LowStockThreshold *int                      `json:"lowStockThreshold"`
}

// CreateVariant adds a variant with inventory to one of the store's products.
func (h *TenantHandler) CreateVariant(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}

	var req createVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	productID, ok := parseID(req.ProductID)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "Invalid productId", nil)
		return
	}

	var priceOverride *models.Money
	if req.PriceOverride != nil && *req.PriceOverride != "" {
		parsed, err := models.ParseMoney(*req.PriceOverride)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "priceOverride must be a decimal string with up to 2 decimals", nil)
			return
		}
		priceOverride = &parsed
	}

	input := services.CreateVariantInput{
		ProductID:         productID,
		SKU:               req.SKU,
		PriceOverride:     priceOverride,
		StockQty:          req.StockQty,
		LowStockThreshold: req.LowStockThreshold,
	}
	for _, attr := range req.Attributes {
		input.Attributes = append(input.Attributes, services.VariantAttributeInput{
			Name:  attr.Name,
			Value: attr.Value,
		})
	}

	variant, err := h.catalogService.CreateVariant(c.Request.Context(), storeID, input)
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": idString(variant.ID)})
}

// ListStaff returns the store's staff links.
func (h *TenantHandler) ListStaff(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}

	staff, err := h.catalogService.ListStaff(c.Request.Context(), storeID)
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}

	out := make([]gin.H, len(staff))
	for i, link := range staff {
		entry := gin.H{
			"id":     idString(link.ID),
			"userId": idString(link.UserID),
			"role":   link.Role,
			"status": link.Status,
		}
		if link.User != nil {
			entry["user"] = gin.H{"name": link.User.Name, "email": link.User.Email}
		}
		out[i] = entry
	}
	c.JSON(http.StatusOK, gin.H{"staff": out})
}

type addStaffRequest struct {
	UserEmail string `json:"userEmail" binding:"required,email"`
	Role      string `json:"role" binding:"required"`
}

// AddStaff links a user to the store with a staff role.
func (h *TenantHandler) AddStaff(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}

	var req addStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	link, err := h.catalogService.AddStaff(c.Request.Context(), storeID, req.UserEmail, req.Role)
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": idString(link.ID)})
}

// ListOrders returns the store's most recent orders.
func (h *TenantHandler) ListOrders(c *gin.Context) {
	storeID, ok := h.storeID(c)
	if !ok {
		return
	}

	orders, err := h.catalogService.StoreOrders(c.Request.Context(), storeID)
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}

	out := make([]gin.H, len(orders))
	for i, order := range orders {
		out[i] = gin.H{
			"id":            idString(order.ID),
			"status":        order.Status,
			"paymentStatus": order.PaymentStatus,
			"currency":      order.Currency,
			"total":         order.Total,
			"itemsCount":    orderItemsCount(order),
			"createdAt":     order.CreatedAt,
		}
	}
	c.JSON(http.StatusOK, gin.H{"orders": out})
}

// orderItemsCount sums line quantities, not line rows.
func orderItemsCount(order models.Order) int {
	total := 0
	for _, item := range order.Items {
		total += item.Qty
	}
	return total
}
