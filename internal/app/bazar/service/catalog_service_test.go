package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"bazar/internal/app/bazar/entity"
	"bazar/internal/app/bazar/repository"
	"bazar/internal/app/bazar/repository/mocks"
	"bazar/pkg/logger"
)

func init() {
	logger.InitWithWriter("bazar-service-test", "error", io.Discard)
}

func newTestService(t *testing.T) (*CatalogService, *mocks.MockProductRepository, *mocks.MockSaleRepository, *mocks.MockProductCache, *mocks.MockMessagePublisher) {
	t.Helper()

	productRepo := new(mocks.MockProductRepository)
	saleRepo := new(mocks.MockSaleRepository)
	cache := new(mocks.MockProductCache)
	producer := new(mocks.MockMessagePublisher)

	svc := NewCatalogService(productRepo, saleRepo, cache, producer, 50)
	return svc, productRepo, saleRepo, cache, producer
}

// ==================== SearchProducts Tests ====================

func TestSearchProducts_BlankQuery_CacheHit(t *testing.T) {
	// Arrange
	svc, productRepo, _, cache, _ := newTestService(t)
	catalog := []entity.Product{{ID: 1, Title: "Laptop Gamer"}, {ID: 2, Title: "Sofa"}}
	cache.On("GetProducts", mock.Anything).Return(catalog, nil)

	// Act
	response, err := svc.SearchProducts(context.Background(), "")

	// Assert - репозиторий не должен вызываться при попадании в кеш
	require.NoError(t, err)
	assert.Equal(t, 2, response.Total)
	assert.Equal(t, catalog, response.Items)
	productRepo.AssertNotCalled(t, "GetAll", mock.Anything)
	cache.AssertExpectations(t)
}

func TestSearchProducts_BlankQuery_CacheMissFallsBackToRepo(t *testing.T) {
	// Arrange - промах кеша, каталог читается из репозитория и кешируется
	svc, productRepo, _, cache, _ := newTestService(t)
	catalog := []entity.Product{{ID: 1, Title: "Laptop Gamer"}}
	cache.On("GetProducts", mock.Anything).Return(nil, nil)
	productRepo.On("GetAll", mock.Anything).Return(catalog, nil)
	cache.On("SetProducts", mock.Anything, catalog, time.Hour).Return(nil)

	// Act
	response, err := svc.SearchProducts(context.Background(), "   ")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, response.Total)
	productRepo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestSearchProducts_BlankQuery_CacheErrorNotFatal(t *testing.T) {
	// Ошибка Redis не должна ломать выдачу каталога
	svc, productRepo, _, cache, _ := newTestService(t)
	catalog := []entity.Product{{ID: 1, Title: "Laptop Gamer"}}
	cache.On("GetProducts", mock.Anything).Return(nil, errors.New("redis down"))
	productRepo.On("GetAll", mock.Anything).Return(catalog, nil)
	cache.On("SetProducts", mock.Anything, catalog, time.Hour).Return(errors.New("redis down"))

	response, err := svc.SearchProducts(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, 1, response.Total)
}

func TestSearchProducts_QueryDelegatesToRepoWithLimit(t *testing.T) {
	svc, productRepo, _, cache, _ := newTestService(t)
	matches := []entity.Product{{ID: 1, Title: "Laptop Gamer"}}
	productRepo.On("Search", mock.Anything, "gaming", 50).Return(matches, nil)

	response, err := svc.SearchProducts(context.Background(), "  gaming  ")

	require.NoError(t, err)
	assert.Equal(t, 1, response.Total)
	assert.Equal(t, matches, response.Items)
	cache.AssertNotCalled(t, "GetProducts", mock.Anything)
	productRepo.AssertExpectations(t)
}

func TestSearchProducts_NoMatchesReturnsEmptySlice(t *testing.T) {
	svc, productRepo, _, _, _ := newTestService(t)
	productRepo.On("Search", mock.Anything, "sofa", 50).Return(nil, nil)

	response, err := svc.SearchProducts(context.Background(), "sofa")

	require.NoError(t, err)
	assert.NotNil(t, response.Items)
	assert.Empty(t, response.Items)
	assert.Equal(t, 0, response.Total)
}

func TestSearchProducts_RepoError(t *testing.T) {
	svc, productRepo, _, _, _ := newTestService(t)
	productRepo.On("Search", mock.Anything, "gaming", 50).Return(nil, errors.New("db error"))

	response, err := svc.SearchProducts(context.Background(), "gaming")

	assert.Error(t, err)
	assert.Nil(t, response)
}

// ==================== GetProduct Tests ====================

func TestGetProduct_Success(t *testing.T) {
	svc, productRepo, _, _, _ := newTestService(t)
	product := &entity.Product{ID: 1, Title: "Laptop Gamer"}
	productRepo.On("GetByID", mock.Anything, int64(1)).Return(product, nil)

	result, err := svc.GetProduct(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, product, result)
}

func TestGetProduct_NotFound(t *testing.T) {
	svc, productRepo, _, _, _ := newTestService(t)
	productRepo.On("GetByID", mock.Anything, int64(999)).Return(nil, repository.ErrProductNotFound)

	result, err := svc.GetProduct(context.Background(), 999)

	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Nil(t, result)
}

// ==================== RecordSale Tests ====================

func validSaleRequest() *entity.RecordSaleRequest {
	productID := int64(1)
	quantity := 2
	totalPrice := 2599.98
	return &entity.RecordSaleRequest{
		ProductID:    &productID,
		ProductTitle: "Laptop Gamer Pro 15",
		Quantity:     &quantity,
		TotalPrice:   &totalPrice,
	}
}

func TestRecordSale_Success(t *testing.T) {
	// Arrange
	svc, _, saleRepo, _, producer := newTestService(t)
	saleRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Sale")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*entity.Sale).ID = 1
		}).
		Return(nil)
	producer.On("PublishMessage", mock.Anything, "1", mock.Anything).Return(nil)

	// Act
	sale, err := svc.RecordSale(context.Background(), validSaleRequest())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(1), sale.ID)
	assert.Equal(t, int64(1), sale.ProductID)
	assert.Equal(t, 2, sale.Quantity)
	assert.Equal(t, 2599.98, sale.TotalPrice)
	assert.False(t, sale.SaleDate.IsZero())
	saleRepo.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestRecordSale_QuantityDefaultsToOne(t *testing.T) {
	svc, _, saleRepo, _, producer := newTestService(t)
	saleRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Sale")).Return(nil)
	producer.On("PublishMessage", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	req := validSaleRequest()
	req.Quantity = nil

	sale, err := svc.RecordSale(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 1, sale.Quantity)
}

func TestRecordSale_InvalidInput(t *testing.T) {
	svc, _, saleRepo, _, _ := newTestService(t)

	negativePrice := -10.0
	zeroQuantity := 0

	tests := []struct {
		name   string
		mutate func(req *entity.RecordSaleRequest) *entity.RecordSaleRequest
	}{
		{name: "nil request", mutate: func(req *entity.RecordSaleRequest) *entity.RecordSaleRequest { return nil }},
		{name: "missing product_id", mutate: func(req *entity.RecordSaleRequest) *entity.RecordSaleRequest {
			req.ProductID = nil
			return req
		}},
		{name: "missing total_price", mutate: func(req *entity.RecordSaleRequest) *entity.RecordSaleRequest {
			req.TotalPrice = nil
			return req
		}},
		{name: "negative total_price", mutate: func(req *entity.RecordSaleRequest) *entity.RecordSaleRequest {
			req.TotalPrice = &negativePrice
			return req
		}},
		{name: "non-positive quantity", mutate: func(req *entity.RecordSaleRequest) *entity.RecordSaleRequest {
			req.Quantity = &zeroQuantity
			return req
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sale, err := svc.RecordSale(context.Background(), tt.mutate(validSaleRequest()))

			assert.ErrorIs(t, err, ErrInvalidSaleInput)
			assert.Nil(t, sale)
		})
	}

	// Невалидный ввод не должен доходить до репозитория
	saleRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRecordSale_RepoError(t *testing.T) {
	svc, _, saleRepo, _, producer := newTestService(t)
	saleRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db error"))

	sale, err := svc.RecordSale(context.Background(), validSaleRequest())

	assert.Error(t, err)
	assert.Nil(t, sale)
	producer.AssertNotCalled(t, "PublishMessage", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordSale_KafkaErrorNotFatal(t *testing.T) {
	// Продажа уже записана, ошибка отправки события не должна ломать ответ
	svc, _, saleRepo, _, producer := newTestService(t)
	saleRepo.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			args.Get(1).(*entity.Sale).ID = 7
		}).
		Return(nil)
	producer.On("PublishMessage", mock.Anything, "7", mock.Anything).Return(errors.New("kafka down"))

	sale, err := svc.RecordSale(context.Background(), validSaleRequest())

	require.NoError(t, err)
	assert.Equal(t, int64(7), sale.ID)
}

// ==================== GetAllSales Tests ====================

func TestGetAllSales_Success(t *testing.T) {
	svc, _, saleRepo, _, _ := newTestService(t)
	sales := []entity.Sale{
		{ID: 2, ProductID: 1, TotalPrice: 1299.99},
		{ID: 1, ProductID: 2, TotalPrice: 89.5},
	}
	saleRepo.On("GetAll", mock.Anything).Return(sales, nil)

	result, err := svc.GetAllSales(context.Background())

	require.NoError(t, err)
	assert.Equal(t, sales, result)
}

func TestGetAllSales_EmptyLedgerReturnsEmptySlice(t *testing.T) {
	svc, _, saleRepo, _, _ := newTestService(t)
	saleRepo.On("GetAll", mock.Anything).Return(nil, nil)

	result, err := svc.GetAllSales(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Empty(t, result)
}

// ==================== WarmCatalogCache Tests ====================

func TestWarmCatalogCache_Success(t *testing.T) {
	svc, productRepo, _, cache, _ := newTestService(t)
	catalog := []entity.Product{{ID: 1, Title: "Laptop Gamer"}}
	productRepo.On("GetAll", mock.Anything).Return(catalog, nil)
	cache.On("SetProducts", mock.Anything, catalog, time.Hour).Return(nil)

	err := svc.WarmCatalogCache(context.Background())

	require.NoError(t, err)
	cache.AssertExpectations(t)
}

func TestWarmCatalogCache_CacheError(t *testing.T) {
	svc, productRepo, _, cache, _ := newTestService(t)
	productRepo.On("GetAll", mock.Anything).Return([]entity.Product{}, nil)
	cache.On("SetProducts", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis down"))

	err := svc.WarmCatalogCache(context.Background())

	assert.Error(t, err)
}
