package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bazar/internal/app/bazar/entity"
	"bazar/internal/app/bazar/repository"
	"bazar/internal/app/bazar/repository/mocks"
	"bazar/internal/app/bazar/service"
	"bazar/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.InitWithWriter("bazar-service-test", "error", io.Discard)
}

type handlerMocks struct {
	productRepo *mocks.MockProductRepository
	saleRepo    *mocks.MockSaleRepository
	cache       *mocks.MockProductCache
	producer    *mocks.MockMessagePublisher
}

// setupTestRouter собирает роутер с реальным сервисом поверх моков
func setupTestRouter(t *testing.T) (*gin.Engine, *handlerMocks) {
	t.Helper()

	m := &handlerMocks{
		productRepo: new(mocks.MockProductRepository),
		saleRepo:    new(mocks.MockSaleRepository),
		cache:       new(mocks.MockProductCache),
		producer:    new(mocks.MockMessagePublisher),
	}

	catalogService := service.NewCatalogService(m.productRepo, m.saleRepo, m.cache, m.producer, 50)
	catalogHandler := NewCatalogHandler(catalogService)

	router := gin.New()
	api := router.Group("/api")
	{
		api.GET("", catalogHandler.Status)
		api.GET("/items", catalogHandler.SearchItems)
		api.GET("/items/:id", catalogHandler.GetItem)
		api.POST("/addSale", catalogHandler.AddSale)
		api.GET("/sales", catalogHandler.GetSales)
	}

	return router, m
}

func performRequest(router *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewBuffer(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ==================== SearchItems Tests ====================

func TestSearchItems_WithQuery(t *testing.T) {
	router, m := setupTestRouter(t)
	m.productRepo.On("Search", mock.Anything, "gaming", 50).
		Return([]entity.Product{{ID: 1, Title: "Laptop Gamer Pro 15"}}, nil)

	w := performRequest(router, http.MethodGet, "/api/items?q=gaming", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var response entity.SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Total)
	require.Len(t, response.Items, 1)
	assert.Equal(t, "Laptop Gamer Pro 15", response.Items[0].Title)
}

func TestSearchItems_NoQueryReturnsFullCatalog(t *testing.T) {
	router, m := setupTestRouter(t)
	catalog := []entity.Product{{ID: 1}, {ID: 2}, {ID: 3}}
	m.cache.On("GetProducts", mock.Anything).Return(catalog, nil)

	w := performRequest(router, http.MethodGet, "/api/items", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var response entity.SearchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 3, response.Total)
}

func TestSearchItems_ServiceError(t *testing.T) {
	router, m := setupTestRouter(t)
	m.productRepo.On("Search", mock.Anything, "gaming", 50).Return(nil, errors.New("db error"))

	w := performRequest(router, http.MethodGet, "/api/items?q=gaming", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to search products")
}

// ==================== GetItem Tests ====================

func TestGetItem_Success(t *testing.T) {
	router, m := setupTestRouter(t)
	product := &entity.Product{ID: 1, Title: "Laptop Gamer Pro 15", Price: 1299.99}
	m.productRepo.On("GetByID", mock.Anything, int64(1)).Return(product, nil)

	w := performRequest(router, http.MethodGet, "/api/items/1", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var result entity.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, int64(1), result.ID)
	assert.Equal(t, "Laptop Gamer Pro 15", result.Title)
}

func TestGetItem_InvalidID(t *testing.T) {
	router, m := setupTestRouter(t)

	w := performRequest(router, http.MethodGet, "/api/items/abc", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid product ID")
	m.productRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestGetItem_NotFound(t *testing.T) {
	router, m := setupTestRouter(t)
	m.productRepo.On("GetByID", mock.Anything, int64(999)).Return(nil, repository.ErrProductNotFound)

	w := performRequest(router, http.MethodGet, "/api/items/999", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Product not found")
}

// ==================== AddSale Tests ====================

func TestAddSale_Success(t *testing.T) {
	// Arrange
	router, m := setupTestRouter(t)
	m.saleRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Sale")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*entity.Sale).ID = 1
		}).
		Return(nil)
	m.producer.On("PublishMessage", mock.Anything, "1", mock.Anything).Return(nil)

	body := []byte(`{"product_id": 1, "product_title": "Laptop Gamer Pro 15", "quantity": 2, "total_price": 2599.98}`)

	// Act
	w := performRequest(router, http.MethodPost, "/api/addSale", body)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)

	var response entity.RecordSaleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Success)
	assert.Equal(t, int64(1), response.SaleID)
	m.saleRepo.AssertExpectations(t)
}

func TestAddSale_MalformedBody(t *testing.T) {
	router, m := setupTestRouter(t)

	w := performRequest(router, http.MethodPost, "/api/addSale", []byte(`{not json`))

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response entity.RecordSaleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.False(t, response.Success)
	assert.Equal(t, "Invalid request body", response.Message)
	m.saleRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAddSale_MissingRequiredFields(t *testing.T) {
	router, m := setupTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "empty object", body: `{}`},
		{name: "missing product_id", body: `{"total_price": 10.0}`},
		{name: "missing total_price", body: `{"product_id": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, http.MethodPost, "/api/addSale", []byte(tt.body))

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var response entity.RecordSaleResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.False(t, response.Success)
			assert.Equal(t, "product_id and total_price are required", response.Message)
		})
	}

	m.saleRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAddSale_NegativeTotalPrice(t *testing.T) {
	router, m := setupTestRouter(t)

	w := performRequest(router, http.MethodPost, "/api/addSale", []byte(`{"product_id": 1, "total_price": -5.0}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response entity.RecordSaleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.False(t, response.Success)
	m.saleRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAddSale_RepoError(t *testing.T) {
	router, m := setupTestRouter(t)
	m.saleRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db error"))

	w := performRequest(router, http.MethodPost, "/api/addSale", []byte(`{"product_id": 1, "total_price": 10.0}`))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var response entity.RecordSaleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.False(t, response.Success)
	assert.Equal(t, "Failed to record sale", response.Message)
}

// ==================== GetSales Tests ====================

func TestGetSales_Success(t *testing.T) {
	router, m := setupTestRouter(t)
	sales := []entity.Sale{
		{ID: 2, ProductID: 1, ProductTitle: "Laptop Gamer Pro 15", TotalPrice: 1299.99},
		{ID: 1, ProductID: 2, ProductTitle: "Auriculares ANC", TotalPrice: 89.5},
	}
	m.saleRepo.On("GetAll", mock.Anything).Return(sales, nil)

	w := performRequest(router, http.MethodGet, "/api/sales", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var result []entity.Sale
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result, 2)
	assert.Equal(t, int64(2), result[0].ID)
	assert.Equal(t, int64(1), result[1].ID)
}

func TestGetSales_EmptyLedger(t *testing.T) {
	router, m := setupTestRouter(t)
	m.saleRepo.On("GetAll", mock.Anything).Return([]entity.Sale{}, nil)

	w := performRequest(router, http.MethodGet, "/api/sales", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

// ==================== Status Tests ====================

func TestStatus(t *testing.T) {
	router, _ := setupTestRouter(t)

	w := performRequest(router, http.MethodGet, "/api", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var response entity.StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "active", response.Status)
	assert.NotEmpty(t, response.Timestamp)
}
