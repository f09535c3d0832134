package routes_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shashiranjanraj/kirana/app/models"
	"github.com/shashiranjanraj/kirana/app/routes"
	"github.com/shashiranjanraj/kirana/pkg/auth"
	"github.com/shashiranjanraj/kirana/pkg/router"
	"github.com/shashiranjanraj/kirana/pkg/ws"
)

type api struct {
	t       *testing.T
	db      *gorm.DB
	handler http.Handler
}

func newAPI(t *testing.T) *api {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Category{}, &models.Product{},
		&models.Order{}, &models.OrderItem{},
	))

	r := router.New()
	require.NoError(t, routes.RegisterAPI(r, db, ws.NewHub()))

	return &api{t: t, db: db, handler: r.Handler()}
}

func (a *api) user(email, role string) (models.User, string) {
	a.t.Helper()

	hash, err := auth.HashPassword("secret-password")
	require.NoError(a.t, err)

	u := models.User{Name: "Someone", Email: email, Password: hash, Role: role}
	require.NoError(a.t, a.db.Create(&u).Error)

	token, err := auth.GenerateToken(u.ID, u.Role)
	require.NoError(a.t, err)
	return u, token
}

func (a *api) product(name, price string, stock int) models.Product {
	a.t.Helper()

	category := models.Category{Name: name + " category"}
	require.NoError(a.t, a.db.Create(&category).Error)

	p := models.Product{
		Name:       name,
		Price:      decimal.RequireFromString(price),
		CategoryID: category.ID,
		Stock:      stock,
		IsActive:   true,
	}
	require.NoError(a.t, a.db.Create(&p).Error)
	return p
}

func (a *api) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func TestRegisterAndLoginFlow(t *testing.T) {
	a := newAPI(t)

	rec := a.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Asha", "email": "asha@example.com", "password": "hunter2hunter2",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = a.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Asha", "email": "not-an-email", "password": "hunter2hunter2",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = a.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "asha@example.com", "password": "hunter2hunter2",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "asha@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOrderEndpointsRequireAuth(t *testing.T) {
	a := newAPI(t)

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/api/orders", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/api/orders", "garbage-token", nil).Code)
}

func TestPlaceAndCancelOrderOverHTTP(t *testing.T) {
	a := newAPI(t)
	_, token := a.user("buyer@example.com", models.RoleUser)
	product := a.product("Widget", "100.00", 10)

	rec := a.do(http.MethodPost, "/api/orders", token, map[string]interface{}{
		"shipping_address": "12 Main Street",
		"phone_number":     "5551234567",
		"items":            []map[string]interface{}{{"product_id": product.ID, "quantity": 3}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Data struct {
			ID          uint   `json:"id"`
			Status      string `json:"status"`
			TotalAmount string `json:"total_amount"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, models.OrderPending, created.Data.Status)
	assert.True(t, decimal.RequireFromString(created.Data.TotalAmount).Equal(decimal.RequireFromString("300")))

	cancelPath := fmt.Sprintf("/api/orders/%d/cancel", created.Data.ID)
	assert.Equal(t, http.StatusOK, a.do(http.MethodPatch, cancelPath, token, nil).Code)

	// Cancelling again is a client error, not a server one.
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPatch, cancelPath, token, nil).Code)
}

func TestPlaceOrderInsufficientStockReturns400(t *testing.T) {
	a := newAPI(t)
	_, token := a.user("buyer@example.com", models.RoleUser)
	product := a.product("Scarce", "10.00", 2)

	rec := a.do(http.MethodPost, "/api/orders", token, map[string]interface{}{
		"shipping_address": "12 Main Street",
		"phone_number":     "5551234567",
		"items":            []map[string]interface{}{{"product_id": product.ID, "quantity": 5}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "insufficient stock")
}

func TestForeignOrderIsHidden(t *testing.T) {
	a := newAPI(t)
	_, ownerToken := a.user("owner@example.com", models.RoleUser)
	_, strangerToken := a.user("stranger@example.com", models.RoleUser)
	product := a.product("Widget", "10.00", 10)

	rec := a.do(http.MethodPost, "/api/orders", ownerToken, map[string]interface{}{
		"shipping_address": "12 Main Street",
		"phone_number":     "5551234567",
		"items":            []map[string]interface{}{{"product_id": product.ID, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Data struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	path := fmt.Sprintf("/api/orders/%d", created.Data.ID)

	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, path, ownerToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, path, strangerToken, nil).Code)
}

func TestStatusUpdateIsStaffOnly(t *testing.T) {
	a := newAPI(t)
	_, buyerToken := a.user("buyer@example.com", models.RoleUser)
	_, staffToken := a.user("staff@example.com", models.RoleStaff)
	product := a.product("Widget", "10.00", 10)

	rec := a.do(http.MethodPost, "/api/orders", buyerToken, map[string]interface{}{
		"shipping_address": "12 Main Street",
		"phone_number":     "5551234567",
		"items":            []map[string]interface{}{{"product_id": product.ID, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Data struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	path := fmt.Sprintf("/api/orders/%d/status", created.Data.ID)

	rec = a.do(http.MethodPatch, path, buyerToken, map[string]string{"status": models.OrderShipped})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(http.MethodPatch, path, staffToken, map[string]string{"status": models.OrderShipped})
	assert.Equal(t, http.StatusOK, rec.Code)

	// Shipped → processing is not a legal move.
	rec = a.do(http.MethodPatch, path, staffToken, map[string]string{"status": models.OrderProcessing})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCatalogueWritesAreAdminOnly(t *testing.T) {
	a := newAPI(t)
	_, userToken := a.user("buyer@example.com", models.RoleUser)
	_, adminToken := a.user("admin@example.com", models.RoleAdmin)

	payload := map[string]string{"name": "Gadgets", "description": "Bits and bobs"}

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPost, "/api/categories", "", payload).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/api/categories", userToken, payload).Code)
	assert.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/api/categories", adminToken, payload).Code)

	// Public read works without a token.
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/categories", "", nil).Code)
}

func TestCategoryDeleteConflictsWhileInUse(t *testing.T) {
	a := newAPI(t)
	_, adminToken := a.user("admin@example.com", models.RoleAdmin)
	product := a.product("Widget", "10.00", 5)

	path := fmt.Sprintf("/api/categories/%d", product.CategoryID)
	assert.Equal(t, http.StatusConflict, a.do(http.MethodDelete, path, adminToken, nil).Code)

	require.NoError(t, a.db.Model(&models.Product{}).
		Where("id = ?", product.ID).
		Update("is_active", false).Error)
	assert.Equal(t, http.StatusOK, a.do(http.MethodDelete, path, adminToken, nil).Code)
}

func TestProductListingIsPaginated(t *testing.T) {
	a := newAPI(t)

	category := models.Category{Name: "Bulk"}
	require.NoError(t, a.db.Create(&category).Error)
	for i := 0; i < 30; i++ {
		p := models.Product{
			Name:       fmt.Sprintf("Widget %02d", i),
			Price:      decimal.RequireFromString("10.00"),
			CategoryID: category.ID,
			Stock:      1,
			IsActive:   true,
		}
		require.NoError(t, a.db.Create(&p).Error)
	}

	var got struct {
		Data struct {
			Items      []json.RawMessage `json:"items"`
			Pagination struct {
				Page    int   `json:"page"`
				PerPage int   `json:"per_page"`
				Total   int64 `json:"total"`
			} `json:"pagination"`
		} `json:"data"`
	}

	rec := a.do(http.MethodGet, "/api/products?page=1&per_page=5", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got.Data.Items, 5)
	assert.Equal(t, 1, got.Data.Pagination.Page)
	assert.Equal(t, 5, got.Data.Pagination.PerPage)
	assert.EqualValues(t, 30, got.Data.Pagination.Total)

	// The last page is short.
	rec = a.do(http.MethodGet, "/api/products?page=2&per_page=25", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got.Data.Items, 5)
	assert.EqualValues(t, 30, got.Data.Pagination.Total)

	// Garbage paging parameters fall back to the defaults.
	rec = a.do(http.MethodGet, "/api/products?page=abc&per_page=-1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got.Data.Items, 20)
	assert.Equal(t, 1, got.Data.Pagination.Page)
	assert.Equal(t, 20, got.Data.Pagination.PerPage)
}

func TestGraphQLCatalogueQuery(t *testing.T) {
	a := newAPI(t)
	a.product("Widget", "10.00", 5)

	rec := a.do(http.MethodPost, "/api/graphql", "", map[string]string{
		"query": `{ products { name price inStock } }`,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Widget")
	assert.Contains(t, rec.Body.String(), "10.00")
}

func TestHealthz(t *testing.T) {
	a := newAPI(t)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/healthz", "", nil).Code)
}
