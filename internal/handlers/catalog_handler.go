package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"mall-service/internal/models"
	"mall-service/internal/services"
)

// CatalogHandler serves the public storefront endpoints.
type CatalogHandler struct {
	catalogService *services.CatalogService
	logger         *logrus.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *services.CatalogService, logger *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService, logger: logger}
}

// ListWings returns the wing directory with active stores.
func (h *CatalogHandler) ListWings(c *gin.Context) {
	wings, err := h.catalogService.ListWings(c.Request.Context())
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}

	out := make([]gin.H, len(wings))
	for i, wing := range wings {
		stores := make([]gin.H, len(wing.Stores))
		for j, store := range wing.Stores {
			stores[j] = gin.H{
				"id":           idString(store.ID),
				"name":         store.Name,
				"slug":         store.Slug,
				"currency":     store.Currency,
				"signboardUrl": store.SignboardURL,
			}
		}
		out[i] = gin.H{
			"id":        idString(wing.ID),
			"name":      wing.Name,
			"slug":      wing.Slug,
			"sortOrder": wing.SortOrder,
			"stores":    stores,
		}
	}
	c.JSON(http.StatusOK, gin.H{"wings": out})
}

// Storefront returns one active store's public catalog by slug.
func (h *CatalogHandler) Storefront(c *gin.Context) {
	store, err := h.catalogService.Storefront(c.Request.Context(), c.Param("slug"))
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}

	sections := make([]gin.H, len(store.Sections))
	for i, section := range store.Sections {
		sections[i] = gin.H{
			"id":        idString(section.ID),
			"name":      section.Name,
			"sortOrder": section.SortOrder,
		}
	}

	products := make([]gin.H, len(store.Products))
	for i, product := range store.Products {
		products[i] = toPublicProduct(product)
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          idString(store.ID),
		"name":        store.Name,
		"slug":        store.Slug,
		"description": store.Description,
		"currency":    store.Currency,
		"sections":    sections,
		"products":    products,
	})
}

func toPublicProduct(product models.Product) gin.H {
	images := make([]string, len(product.Images))
	for i, image := range product.Images {
		images[i] = image.ImageURL
	}

	variants := make([]gin.H, len(product.Variants))
	for i, variant := range product.Variants {
		attrs := make([]gin.H, len(variant.Attributes))
		for j, attr := range variant.Attributes {
			attrs[j] = gin.H{"name": attr.AttributeName, "value": attr.AttributeValue}
		}
		stock := 0
		if variant.Inventory != nil {
			stock = variant.Inventory.StockQty
		}
		variants[i] = gin.H{
			"id":            idString(variant.ID),
			"sku":           variant.SKU,
			"priceOverride": variant.PriceOverride,
			"attributes":    attrs,
			"stock":         stock,
		}
	}

	return gin.H{
		"id":          idString(product.ID),
		"sectionId":   idStringPtr(product.SectionID),
		"name":        product.Name,
		"description": product.Description,
		"basePrice":   product.BasePrice,
		"currency":    product.Currency,
		"images":      images,
		"variants":    variants,
	}
}
