package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mall-service/internal/models"
)

type fakeTokens struct {
	userID int64
	err    error
}

func (f fakeTokens) ValidateToken(string) (int64, error) {
	return f.userID, f.err
}

type fakeIdentities struct {
	identity *models.AuthContext
}

func (f fakeIdentities) ResolveIdentity(context.Context, int64) (*models.AuthContext, error) {
	return f.identity, nil
}

func okHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	identity := &models.AuthContext{UserID: 7, Roles: []models.RoleCode{models.RoleCustomer}}

	cases := []struct {
		name       string
		header     string
		tokens     fakeTokens
		identities fakeIdentities
		wantStatus int
	}{
		{"missing header", "", fakeTokens{userID: 7}, fakeIdentities{identity}, http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", fakeTokens{userID: 7}, fakeIdentities{identity}, http.StatusUnauthorized},
		{"invalid token", "Bearer bad", fakeTokens{err: errors.New("expired")}, fakeIdentities{identity}, http.StatusUnauthorized},
		{"unknown user", "Bearer good", fakeTokens{userID: 7}, fakeIdentities{nil}, http.StatusUnauthorized},
		{"valid", "Bearer good", fakeTokens{userID: 7}, fakeIdentities{identity}, http.StatusOK},
		{"lowercase bearer", "bearer good", fakeTokens{userID: 7}, fakeIdentities{identity}, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/probe", RequireAuth(tc.tokens, tc.identities), okHandler)

			req := httptest.NewRequest(http.MethodGet, "/probe", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}

func TestRequireAuth_AttachesContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	identity := &models.AuthContext{UserID: 7, Email: "u@mall.com"}
	router := gin.New()
	router.GET("/probe", RequireAuth(fakeTokens{userID: 7}, fakeIdentities{identity}), func(c *gin.Context) {
		got, ok := GetAuthContext(c)
		require.True(t, ok)
		assert.Equal(t, int64(7), got.UserID)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	staff := &models.AuthContext{UserID: 7, Roles: []models.RoleCode{models.RoleStaff}}
	router := gin.New()
	router.GET("/probe",
		RequireAuth(fakeTokens{userID: 7}, fakeIdentities{staff}),
		RequireRole(models.RoleAdmin, models.RoleTenant),
		okHandler)
	router.GET("/allowed",
		RequireAuth(fakeTokens{userID: 7}, fakeIdentities{staff}),
		RequireRole(models.RoleStaff),
		okHandler)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/allowed", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func storeAccessRouter(identity *models.AuthContext, staffRoles ...models.StaffRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	auth := RequireAuth(fakeTokens{userID: identity.UserID}, fakeIdentities{identity})
	router.GET("/stores/:storeId/probe", auth, RequireStoreAccess(staffRoles...), okHandler)
	router.POST("/probe", auth, RequireStoreAccess(staffRoles...), okHandler)
	return router
}

func doStoreRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRequireStoreAccess_AdminBypassesEverything(t *testing.T) {
	admin := &models.AuthContext{UserID: 1, Roles: []models.RoleCode{models.RoleAdmin}}
	router := storeAccessRouter(admin, models.StaffManager)

	rec := doStoreRequest(router, http.MethodGet, "/stores/42/probe", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireStoreAccess_OwnerBypassesStaffRestriction(t *testing.T) {
	owner := &models.AuthContext{
		UserID:        2,
		Roles:         []models.RoleCode{models.RoleTenant},
		OwnedStoreIDs: []int64{42},
	}
	router := storeAccessRouter(owner, models.StaffManager)

	rec := doStoreRequest(router, http.MethodGet, "/stores/42/probe", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doStoreRequest(router, http.MethodGet, "/stores/43/probe", "")
	assert.Equal(t, http.StatusForbidden, rec.Code, "owning store 42 grants nothing on store 43")
}

func TestRequireStoreAccess_StaffRoleRestriction(t *testing.T) {
	sales := &models.AuthContext{
		UserID:     3,
		Roles:      []models.RoleCode{models.RoleStaff},
		StaffLinks: []models.StaffLinkRef{{StoreID: 42, Role: models.StaffSales}},
	}

	restricted := storeAccessRouter(sales, models.StaffManager, models.StaffProducts)
	rec := doStoreRequest(restricted, http.MethodGet, "/stores/42/probe", "")
	assert.Equal(t, http.StatusForbidden, rec.Code, "SALES is not in the permitted set")

	unrestricted := storeAccessRouter(sales)
	rec = doStoreRequest(unrestricted, http.MethodGet, "/stores/42/probe", "")
	assert.Equal(t, http.StatusOK, rec.Code, "any active link passes when no restriction is given")

	rec = doStoreRequest(unrestricted, http.MethodGet, "/stores/43/probe", "")
	assert.Equal(t, http.StatusForbidden, rec.Code, "no link to store 43")
}

func TestRequireStoreAccess_StoreIDSources(t *testing.T) {
	owner := &models.AuthContext{UserID: 2, OwnedStoreIDs: []int64{42}}
	router := storeAccessRouter(owner)

	rec := doStoreRequest(router, http.MethodPost, "/probe", `{"storeId":"42"}`)
	assert.Equal(t, http.StatusOK, rec.Code, "storeId from JSON body")

	rec = doStoreRequest(router, http.MethodPost, "/probe", `{"storeId":42}`)
	assert.Equal(t, http.StatusOK, rec.Code, "numeric storeId in body")

	rec = doStoreRequest(router, http.MethodPost, "/probe?storeId=42", "")
	assert.Equal(t, http.StatusOK, rec.Code, "storeId from query")

	rec = doStoreRequest(router, http.MethodPost, "/probe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "missing storeId")
}

func TestRequireStoreAccess_BodyStillReadable(t *testing.T) {
	owner := &models.AuthContext{UserID: 2, OwnedStoreIDs: []int64{42}}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/probe",
		RequireAuth(fakeTokens{userID: 2}, fakeIdentities{owner}),
		RequireStoreAccess(),
		func(c *gin.Context) {
			var body struct {
				StoreID string `json:"storeId"`
				Name    string `json:"name"`
			}
			require.NoError(t, c.ShouldBindJSON(&body), "body survives the middleware peek")
			assert.Equal(t, "shirt", body.Name)
			c.Status(http.StatusOK)
		})

	rec := doStoreRequest(router, http.MethodPost, "/probe", `{"storeId":"42","name":"shirt"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}
