package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"mall-service/internal/middleware"
	"mall-service/internal/services"
)

// AdminHandler serves the admin moderation endpoints.
type AdminHandler struct {
	promotionService *services.PromotionService
	logger           *logrus.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(promotionService *services.PromotionService, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{promotionService: promotionService, logger: logger}
}

// ListPromotions returns the moderation queue.
func (h *AdminHandler) ListPromotions(c *gin.Context) {
	promos, err := h.promotionService.ListForModeration(c.Request.Context())
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

type decisionRequest struct {
	Status       string  `json:"status" binding:"required"`
	RejectReason *string `json:"rejectReason"`
}

// DecidePromotion applies an admin moderation decision.
func (h *AdminHandler) DecidePromotion(c *gin.Context) {
	identity, ok := middleware.GetAuthContext(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	promoID, ok := parseID(c.Param("id"))
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "Invalid promotion id", nil)
		return
	}

	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	promo, err := h.promotionService.Decide(c.Request.Context(), identity.UserID, promoID, req.Status, req.RejectReason)
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	middleware.PromotionDecisions.WithLabelValues(string(promo.Status)).Inc()

	c.JSON(http.StatusOK, gin.H{
		"id":     idString(promo.ID),
		"status": promo.Status,
	})
}
