package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mini-shop/bootstrap"
	"mini-shop/config"
	"mini-shop/controllers"
	"mini-shop/models"
	"mini-shop/repositories/memory"
	"mini-shop/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type apiHarness struct {
	t      *testing.T
	router *gin.Engine
	store  *memory.Store
	jwt    *utils.JWTAuthenticator
}

func newHarness(t *testing.T) *apiHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour, StoreDriver: config.DriverMemory}
	store := memory.New()
	app := bootstrap.NewWithStore(cfg, zap.NewNop(), store, nil)
	t.Cleanup(app.Close)

	return &apiHarness{
		t:      t,
		router: app.Router,
		store:  store,
		jwt:    utils.NewJWTAuthenticator(cfg.JWTSecret, cfg.JWTExpiry),
	}
}

func (h *apiHarness) token(userID int, role string) string {
	h.t.Helper()
	token, err := h.jwt.GenerateToken(userID, role)
	require.NoError(h.t, err)
	return token
}

func (h *apiHarness) product(name, price string, stock int) *models.Product {
	h.t.Helper()
	p := &models.Product{Name: name, Price: decimal.RequireFromString(price), Stock: stock}
	require.NoError(h.t, h.store.Products().Create(context.Background(), p))
	return p
}

func (h *apiHarness) do(method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	h.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		require.NoError(h.t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func TestStatusFor(t *testing.T) {
	cases := map[models.ErrorKind]int{
		models.KindNotFound:          http.StatusNotFound,
		models.KindAccessDenied:      http.StatusForbidden,
		models.KindInsufficientStock: http.StatusBadRequest,
		models.KindOutOfStock:        http.StatusBadRequest,
		models.KindEmptyCart:         http.StatusBadRequest,
		models.KindValidation:        http.StatusUnprocessableEntity,
		models.KindConflict:          http.StatusConflict,
		models.KindUnauthorized:      http.StatusUnauthorized,
		models.KindInternal:          http.StatusInternalServerError,
	}
	for kind, want := range cases {
		t.Run(kind.String(), func(t *testing.T) {
			assert.Equal(t, want, controllers.StatusFor(kind))
		})
	}
}

func TestCartRequiresAuth(t *testing.T) {
	h := newHarness(t)

	w, _ := h.do(http.MethodGet, "/api/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = h.do(http.MethodGet, "/api/cart", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCartAndOrderFlow(t *testing.T) {
	h := newHarness(t)
	token := h.token(1, models.RoleCustomer)
	p := h.product("P", "10.00", 5)

	w, _ := h.do(http.MethodGet, "/api/cart", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body := h.do(http.MethodPost, "/api/cart/items", token, gin.H{"product_id": p.ID, "quantity": 2})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, body["success"])

	w, _ = h.do(http.MethodPost, "/api/cart/items", token, gin.H{"product_id": p.ID, "quantity": 1})
	require.Equal(t, http.StatusOK, w.Code)

	w, body = h.do(http.MethodGet, "/api/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "30", body["total"])

	w, body = h.do(http.MethodPost, "/api/orders", token, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	order := body["data"].(map[string]any)
	assert.Equal(t, "30", order["total"])
	assert.Equal(t, "pending", order["status"])
	orderID := int(order["id"].(float64))

	w, body = h.do(http.MethodPost, "/api/orders", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Cart is empty", body["message"])

	w, body = h.do(http.MethodGet, "/api/orders", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["data"], 1)

	w, _ = h.do(http.MethodGet, fmt.Sprintf("/api/orders/%d", orderID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = h.do(http.MethodGet, fmt.Sprintf("/api/orders/%d", orderID), h.token(2, models.RoleCustomer), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddItemErrors(t *testing.T) {
	h := newHarness(t)
	token := h.token(1, models.RoleCustomer)
	p := h.product("Scarce", "1.00", 1)

	w, body := h.do(http.MethodPost, "/api/cart/items", token, gin.H{"product_id": p.ID, "quantity": 0})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.NotEmpty(t, body["details"])

	w, _ = h.do(http.MethodPost, "/api/cart/items", token, gin.H{"product_id": 999, "quantity": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body = h.do(http.MethodPost, "/api/cart/items", token, gin.H{"product_id": p.ID, "quantity": 2})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Insufficient stock for Scarce", body["message"])
}

func TestUpdateItemToZeroReportsRemoval(t *testing.T) {
	h := newHarness(t)
	token := h.token(1, models.RoleCustomer)
	p := h.product("P", "1.00", 5)

	_, body := h.do(http.MethodPost, "/api/cart/items", token, gin.H{"product_id": p.ID, "quantity": 2})
	itemID := int(body["data"].(map[string]any)["id"].(float64))
	path := fmt.Sprintf("/api/cart/items/%d", itemID)

	w, _ := h.do(http.MethodPut, path, h.token(2, models.RoleCustomer), gin.H{"quantity": 1})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body = h.do(http.MethodPut, path, token, gin.H{"quantity": 0})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Item removed from cart", body["message"])
	assert.Nil(t, body["data"])

	w, _ = h.do(http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductAdminRoutes(t *testing.T) {
	h := newHarness(t)
	admin := h.token(1, models.RoleAdmin)
	customer := h.token(2, models.RoleCustomer)

	payload := gin.H{"name": "Lamp", "price": "12.50", "stock": 3}

	w, _ := h.do(http.MethodPost, "/api/products", customer, payload)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, body := h.do(http.MethodPost, "/api/products", admin, payload)
	require.Equal(t, http.StatusCreated, w.Code)
	id := int(body["data"].(map[string]any)["id"].(float64))

	w, body = h.do(http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["data"], 1)

	w, _ = h.do(http.MethodPut, fmt.Sprintf("/api/products/%d", id), admin, gin.H{"stock": 10})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = h.do(http.MethodDelete, fmt.Sprintf("/api/products/%d", id), admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = h.do(http.MethodGet, fmt.Sprintf("/api/products/%d", id), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = h.do(http.MethodGet, "/api/products/abc", "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCreateProductRequiresPrice(t *testing.T) {
	h := newHarness(t)
	admin := h.token(1, models.RoleAdmin)

	w, body := h.do(http.MethodPost, "/api/products", admin, gin.H{"name": "Free", "stock": 1})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	details := body["details"].([]any)
	require.Len(t, details, 1)
	assert.Equal(t, "price", details[0].(map[string]any)["field"])

	w, body = h.do(http.MethodPost, "/api/products", admin, gin.H{"name": "Odd", "price": "3.999", "stock": 1})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	details = body["details"].([]any)
	assert.Equal(t, "price must have at most 2 decimal places", details[0].(map[string]any)["message"])

	w, body = h.do(http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, body["data"])
}

func TestAuthEndpoints(t *testing.T) {
	h := newHarness(t)
	creds := gin.H{"email": "carol@example.com", "password": "s3cret!"}

	w, body := h.do(http.MethodPost, "/api/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, w.Code)
	token := body["data"].(map[string]any)["token"].(string)

	w, _ = h.do(http.MethodPost, "/api/auth/register", "", creds)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = h.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "carol@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body = h.do(http.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "carol@example.com", body["data"].(map[string]any)["email"])

	w, _ = h.do(http.MethodPost, "/api/auth/register", "", gin.H{"email": "not-an-email"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestHealth(t *testing.T) {
	h := newHarness(t)

	w, body := h.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
