package handler

import (
	"bytes"
	"context"
	"database/sql/driver"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aether-industries/storefront-api/internal/repository"
	"github.com/aether-industries/storefront-api/internal/service"
)

type memCartStore struct {
	data map[string][]byte
}

func (s *memCartStore) Load(_ context.Context, sessionID string) ([]byte, error) {
	return s.data[sessionID], nil
}

func (s *memCartStore) Save(_ context.Context, sessionID string, data []byte) error {
	s.data[sessionID] = data
	return nil
}

func (s *memCartStore) Delete(_ context.Context, sessionID string) error {
	delete(s.data, sessionID)
	return nil
}

var productColumns = []string{
	"id", "slug", "name", "category", "refrigerant_type", "application",
	"primary_image_url", "other_image_urls", "legacy_images",
	"short_description", "long_description", "application_notes",
	"technical_specs", "safety_information",
	"price", "is_purchasable", "requires_certification", "availability", "sku",
	"created_at", "updated_at",
}

func productRow(id string, price interface{}, purchasable bool) []driver.Value {
	now := time.Now()
	return []driver.Value{
		id, "slug-" + id, "Product " + id, "Refrigerants", "HFC", nil,
		"https://img/p.png", []byte(`[]`), nil,
		"Short description here", "Long description goes here", nil,
		[]byte(`{}`), []byte(`{}`),
		price, purchasable, false, "In Stock", "SKU-" + id,
		now, now,
	}
}

func newCartRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	productRepo := repository.NewProductRepository(sqlx.NewDb(db, "postgres"))
	catalogSvc := service.NewCatalogService(productRepo, nil)
	cartSvc := service.NewCartService(&memCartStore{data: make(map[string][]byte)})
	h := NewCartHandler(cartSvc, catalogSvc)

	router := gin.New()
	router.GET("/v1/cart", h.GetCart)
	router.POST("/v1/cart/items", h.AddItem)
	router.PUT("/v1/cart/items/:productId", h.UpdateItem)
	router.DELETE("/v1/cart/items/:productId", h.RemoveItem)
	router.DELETE("/v1/cart", h.ClearCart)
	return router, mock
}

func doCartRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Cart-Session", "test-session")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type cartResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Items     []map[string]interface{} `json:"items"`
		ItemCount int                      `json:"itemCount"`
		Subtotal  string                   `json:"subtotal"`
	} `json:"data"`
}

func decodeCart(t *testing.T, w *httptest.ResponseRecorder) cartResponse {
	t.Helper()
	var resp cartResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetCartRequiresSessionHeader(t *testing.T) {
	router, _ := newCartRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/cart", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "CART_SESSION_MISSING")
}

func TestGetCartEmpty(t *testing.T) {
	router, _ := newCartRouter(t)

	w := doCartRequest(router, http.MethodGet, "/v1/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeCart(t, w)
	assert.True(t, resp.Success)
	assert.Empty(t, resp.Data.Items)
	assert.Equal(t, 0, resp.Data.ItemCount)
	assert.Equal(t, "0.00", resp.Data.Subtotal)
}

func TestAddItemSnapshotsProduct(t *testing.T) {
	router, mock := newCartRouter(t)

	mock.ExpectQuery("SELECT (.+) FROM products WHERE id =").
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(productColumns).AddRow(productRow("p1", "19.99", true)...))

	w := doCartRequest(router, http.MethodPost, "/v1/cart/items", gin.H{
		"productId": "p1", "quantity": 2,
	})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeCart(t, w)
	require.Len(t, resp.Data.Items, 1)
	assert.Equal(t, 2, resp.Data.ItemCount)
	assert.Equal(t, "39.98", resp.Data.Subtotal)
	assert.Equal(t, false, resp.Data.Items[0]["isQuoteItem"])
}

func TestAddItemUnknownProduct(t *testing.T) {
	router, mock := newCartRouter(t)

	mock.ExpectQuery("SELECT (.+) FROM products WHERE id =").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(productColumns))

	w := doCartRequest(router, http.MethodPost, "/v1/cart/items", gin.H{
		"productId": "missing", "quantity": 1,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddItemRejectsZeroQuantity(t *testing.T) {
	router, _ := newCartRouter(t)

	w := doCartRequest(router, http.MethodPost, "/v1/cart/items", gin.H{
		"productId": "p1", "quantity": 0,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuoteItemExcludedFromSubtotal(t *testing.T) {
	router, mock := newCartRouter(t)

	mock.ExpectQuery("SELECT (.+) FROM products WHERE id =").
		WithArgs("q1").
		WillReturnRows(sqlmock.NewRows(productColumns).AddRow(productRow("q1", nil, false)...))

	w := doCartRequest(router, http.MethodPost, "/v1/cart/items", gin.H{
		"productId": "q1", "quantity": 3,
	})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeCart(t, w)
	require.Len(t, resp.Data.Items, 1)
	assert.Equal(t, true, resp.Data.Items[0]["isQuoteItem"])
	assert.Equal(t, 3, resp.Data.ItemCount)
	assert.Equal(t, "0.00", resp.Data.Subtotal)
}

func TestUpdateItemToZeroRemoves(t *testing.T) {
	router, mock := newCartRouter(t)

	mock.ExpectQuery("SELECT (.+) FROM products WHERE id =").
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(productColumns).AddRow(productRow("p1", "10.00", true)...))

	w := doCartRequest(router, http.MethodPost, "/v1/cart/items", gin.H{
		"productId": "p1", "quantity": 2,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doCartRequest(router, http.MethodPut, "/v1/cart/items/p1", gin.H{"quantity": 0})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeCart(t, w)
	assert.Empty(t, resp.Data.Items)
}

func TestClearCart(t *testing.T) {
	router, mock := newCartRouter(t)

	mock.ExpectQuery("SELECT (.+) FROM products WHERE id =").
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(productColumns).AddRow(productRow("p1", "10.00", true)...))

	w := doCartRequest(router, http.MethodPost, "/v1/cart/items", gin.H{
		"productId": "p1", "quantity": 1,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doCartRequest(router, http.MethodDelete, "/v1/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doCartRequest(router, http.MethodGet, "/v1/cart", nil)
	resp := decodeCart(t, w)
	assert.Empty(t, resp.Data.Items)
}
