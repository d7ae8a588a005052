package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"mall-service/internal/middleware"
	"mall-service/internal/models"
	"mall-service/internal/services"
)

// CheckoutHandler serves the customer cart and checkout endpoints.
type CheckoutHandler struct {
	cartService     *services.CartService
	checkoutService *services.CheckoutService
	logger          *logrus.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(cartService *services.CartService, checkoutService *services.CheckoutService, logger *logrus.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		cartService:     cartService,
		checkoutService: checkoutService,
		logger:          logger,
	}
}

type addCartItemRequest struct {
	ProductID string  `json:"productId" binding:"required"`
	VariantID *string `json:"variantId"`
	Qty       int     `json:"qty" binding:"required,min=1"`
}

// AddCartItem appends a line to the caller's active cart.
func (h *CheckoutHandler) AddCartItem(c *gin.Context) {
	identity, ok := middleware.GetAuthContext(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	productID, ok := parseID(req.ProductID)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "Invalid productId", nil)
		return
	}
	var variantID *int64
	if req.VariantID != nil && *req.VariantID != "" {
		id, ok := parseID(*req.VariantID)
		if !ok {
			ErrorResponse(c, http.StatusBadRequest, "Invalid variantId", nil)
			return
		}
		variantID = &id
	}

	item, err := h.cartService.AddItem(c.Request.Context(), identity.UserID, services.AddItemInput{
		ProductID: productID,
		VariantID: variantID,
		Qty:       req.Qty,
	})
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": idString(item.ID)})
}

// ViewCart returns the active cart grouped by store.
func (h *CheckoutHandler) ViewCart(c *gin.Context) {
	identity, ok := middleware.GetAuthContext(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	view, err := h.cartService.ViewCart(c.Request.Context(), identity.UserID)
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}

	groups := make([]gin.H, len(view.Groups))
	for i, group := range view.Groups {
		items := make([]gin.H, len(group.Items))
		for j, item := range group.Items {
			entry := gin.H{
				"id":        idString(item.ID),
				"productId": idString(item.ProductID),
				"variantId": idStringPtr(item.VariantID),
				"qty":       item.Qty,
				"unitPrice": item.UnitPriceSnapshot,
			}
			if item.Product != nil {
				entry["name"] = item.Product.Name
			}
			items[j] = entry
		}
		groups[i] = gin.H{
			"storeId":   idString(group.StoreID),
			"storeName": group.StoreName,
			"storeSlug": group.StoreSlug,
			"currency":  group.Currency,
			"items":     items,
			"subtotal":  group.Subtotal,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"cartId": idString(view.CartID),
		"groups": groups,
	})
}

type checkoutRequest struct {
	ShippingFeePerStore map[string]string `json:"shippingFeePerStore"`
}

// Checkout converts the active cart into one order per store.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	identity, ok := middleware.GetAuthContext(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	// An empty body means no shipping fees; only a malformed one is rejected.
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	fees := make(map[int64]models.Money, len(req.ShippingFeePerStore))
	for rawStoreID, rawFee := range req.ShippingFeePerStore {
		storeID, ok := parseID(rawStoreID)
		if !ok {
			ErrorResponse(c, http.StatusBadRequest, "Invalid storeId in shippingFeePerStore", nil)
			return
		}
		fee, err := models.ParseMoney(rawFee)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "Shipping fee must be a decimal string with up to 2 decimals", nil)
			return
		}
		fees[storeID] = fee
	}

	orders, err := h.checkoutService.Checkout(c.Request.Context(), identity.UserID, services.CheckoutInput{
		ShippingFeePerStore: fees,
	})
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}
	middleware.OrdersCreated.Add(float64(len(orders)))

	out := make([]gin.H, len(orders))
	for i, order := range orders {
		out[i] = gin.H{
			"id":       idString(order.ID),
			"storeId":  idString(order.StoreID),
			"total":    order.Total,
			"currency": order.Currency,
		}
	}
	c.JSON(http.StatusCreated, gin.H{"orders": out})
}
