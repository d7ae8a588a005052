package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"mall-service/internal/middleware"
	"mall-service/internal/models"
	"mall-service/internal/services"
)

// PromotionHandler serves the store-scoped promotion endpoints.
type PromotionHandler struct {
	promotionService *services.PromotionService
	logger           *logrus.Logger
}

// NewPromotionHandler creates a new promotion handler
func NewPromotionHandler(promotionService *services.PromotionService, logger *logrus.Logger) *PromotionHandler {
	return &PromotionHandler{promotionService: promotionService, logger: logger}
}

// List returns the store's most recent promotions.
func (h *PromotionHandler) List(c *gin.Context) {
	storeID, ok := middleware.GetStoreID(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "storeId is required", nil)
		return
	}

	promos, err := h.promotionService.ListByStore(c.Request.Context(), storeID)
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}

	out := make([]gin.H, len(promos))
	for i, promo := range promos {
		out[i] = toPromotion(promo)
	}
	c.JSON(http.StatusOK, gin.H{"promotions": out})
}

type createPromotionRequest struct {
	Title      string  `json:"title" binding:"required,min=2"`
	Type       string  `json:"type" binding:"required"`
	Value      string  `json:"value"`
	CouponCode *string `json:"couponCode"`
	Priority   int     `json:"priority"`
}

// Create submits a promotion for moderation.
func (h *PromotionHandler) Create(c *gin.Context) {
	storeID, ok := middleware.GetStoreID(c)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "storeId is required", nil)
		return
	}
	identity, ok := middleware.GetAuthContext(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	var req createPromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	value := models.Money(0)
	if req.Value != "" {
		parsed, err := models.ParseMoney(req.Value)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "value must be a decimal string with up to 2 decimals", nil)
			return
		}
		value = parsed
	}

	promo, err := h.promotionService.Create(c.Request.Context(), storeID, identity.UserID, services.CreateInput{
		Title:      req.Title,
		Type:       req.Type,
		Value:      value,
		CouponCode: req.CouponCode,
		Priority:   req.Priority,
	})
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":     idString(promo.ID),
		"status": promo.Status,
	})
}

func toPromotion(promo models.Promotion) gin.H {
	entry := gin.H{
		"id":           idString(promo.ID),
		"storeId":      idString(promo.StoreID),
		"title":        promo.Title,
		"type":         promo.Type,
		"value":        promo.Value,
		"couponCode":   promo.CouponCode,
		"status":       promo.Status,
		"rejectReason": promo.RejectReason,
		"priority":     promo.Priority,
		"createdAt":    promo.CreatedAt,
	}
	if promo.Store != nil {
		entry["store"] = gin.H{"name": promo.Store.Name, "slug": promo.Store.Slug}
	}
	if promo.CreatedBy != nil {
		entry["createdBy"] = gin.H{"email": promo.CreatedBy.Email}
	}
	return entry
}
