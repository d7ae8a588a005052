package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"mall-service/internal/middleware"
	"mall-service/internal/models"
	"mall-service/internal/services"
)

// AuthHandler handles register, login and profile HTTP requests
type AuthHandler struct {
	authService *services.AuthService
	logger      *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required,min=2"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type authUserResponse struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// Register creates an account and returns a token.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	result, err := h.authService.Register(c.Request.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": result.Token,
		"user":  toAuthUser(result.User),
	})
}

// Login verifies credentials and returns a token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": result.Token,
		"user":  toAuthUser(result.User),
	})
}

// Me returns the caller's profile with roles, owned stores and staff links.
func (h *AuthHandler) Me(c *gin.Context) {
	identity, ok := middleware.GetAuthContext(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	user, err := h.authService.Profile(c.Request.Context(), identity.UserID)
	if err != nil {
		HandleServiceError(c, h.logger, err)
		return
	}

	roles := make([]string, len(user.Roles))
	for i, role := range user.Roles {
		roles[i] = string(role.Code)
	}

	ownedStores := make([]gin.H, len(user.OwnedStores))
	for i, store := range user.OwnedStores {
		ownedStores[i] = gin.H{
			"id":     idString(store.ID),
			"name":   store.Name,
			"slug":   store.Slug,
			"status": store.Status,
		}
	}

	staffStores := make([]gin.H, len(user.StaffLinks))
	for i, link := range user.StaffLinks {
		entry := gin.H{
			"storeId": idString(link.StoreID),
			"role":    link.Role,
		}
		if link.Store != nil {
			entry["store"] = gin.H{"name": link.Store.Name, "slug": link.Store.Slug}
		}
		staffStores[i] = entry
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          idString(user.ID),
		"name":        user.Name,
		"email":       user.Email,
		"roles":       roles,
		"ownedStores": ownedStores,
		"staffStores": staffStores,
	})
}

func toAuthUser(identity *models.AuthContext) authUserResponse {
	return authUserResponse{
		ID:    idString(identity.UserID),
		Name:  identity.Name,
		Email: identity.Email,
		Roles: identity.RoleStrings(),
	}
}
