package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"mall-service/internal/models"
)

const (
	authContextKey = "auth_context"
	storeIDKey     = "store_id"
)

// TokenValidator verifies a bearer token and returns the user id it was
// issued for.
type TokenValidator interface {
	ValidateToken(tokenString string) (int64, error)
}

// IdentityResolver loads the caller's roles, owned stores and active staff
// links. Returns nil when the user does not exist.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, userID int64) (*models.AuthContext, error)
}

// RequireAuth validates the bearer token and attaches the resolved
// AuthContext to the request. Roles and store grants come from the database
// on every request, so revoked access takes effect immediately.
func RequireAuth(tokens TokenValidator, identities IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header"})
			return
		}

		userID, err := tokens.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		identity, err := identities.ResolveIdentity(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}
		if identity == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(authContextKey, identity)
		c.Next()
	}
}

// GetAuthContext returns the AuthContext attached by RequireAuth.
func GetAuthContext(c *gin.Context) (*models.AuthContext, bool) {
	value, exists := c.Get(authContextKey)
	if !exists {
		return nil, false
	}
	identity, ok := value.(*models.AuthContext)
	return identity, ok
}

// RequireRole allows the request through when the caller holds any of the
// given platform roles.
func RequireRole(roles ...models.RoleCode) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetAuthContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		if !identity.HasRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
			return
		}
		c.Next()
	}
}

// RequireStoreAccess gates a request on the caller's relationship to the
// target store. The store id comes from the path param, then the JSON body,
// then the query string. Precedence of the checks matters: ADMIN bypasses
// everything, ownership bypasses staff-role restrictions, and a staff link
// is the most restrictive path.
func RequireStoreAccess(staffRoles ...models.StaffRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetAuthContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		storeID, ok := extractStoreID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "storeId is required"})
			return
		}
		c.Set(storeIDKey, storeID)

		if identity.HasRole(models.RoleAdmin) {
			c.Next()
			return
		}
		if identity.OwnsStore(storeID) {
			c.Next()
			return
		}
		if staffRole, linked := identity.StaffRoleFor(storeID); linked {
			if len(staffRoles) == 0 {
				c.Next()
				return
			}
			for _, permitted := range staffRoles {
				if staffRole == permitted {
					c.Next()
					return
				}
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Staff role not permitted for this action"})
			return
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "No access to this store"})
	}
}

// GetStoreID returns the store id resolved by RequireStoreAccess.
func GetStoreID(c *gin.Context) (int64, bool) {
	value, exists := c.Get(storeIDKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(int64)
	return id, ok
}

// extractStoreID finds the target store id: path param, then body, then
// query; first non-empty wins.
func extractStoreID(c *gin.Context) (int64, bool) {
	if raw := c.Param("storeId"); raw != "" {
		return parseStoreID(raw)
	}
	if raw, found := peekBodyStoreID(c); found {
		return parseStoreID(raw)
	}
	if raw := c.Query("storeId"); raw != "" {
		return parseStoreID(raw)
	}
	return 0, false
}

func parseStoreID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// peekBodyStoreID reads a storeId field out of a JSON body without consuming
// it; the body is restored so binding in the handler still works.
func peekBodyStoreID(c *gin.Context) (string, bool) {
	if c.Request.Body == nil {
		return "", false
	}
	if ct := c.ContentType(); ct != "" && ct != "application/json" {
		return "", false
	}

	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", false
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(data))

	var body struct {
		StoreID json.Number `json:"storeId"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return "", false
	}
	if body.StoreID.String() == "" {
		return "", false
	}
	return body.StoreID.String(), true
}
