package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"bazar/internal/app/bazar/entity"
	"bazar/internal/app/bazar/repository"
	"bazar/internal/app/bazar/util"
	"bazar/pkg/logger"
	"bazar/pkg/metrics"

	"github.com/google/uuid"
)

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrProductNotFound  = errors.New("product not found")
	ErrInvalidSaleInput = errors.New("product_id and total_price are required")
)

// TTL кеша каталога: каталог неизменяемый, запись просто истекает и прогревается заново
const productsCacheTTL = time.Hour

// CatalogService обрабатывает бизнес-логику каталога и журнала продаж
// Координирует работу репозиториев, Redis кеша и Kafka producer
type CatalogService struct {
	productRepo   repository.ProductRepository
	saleRepo      repository.SaleRepository
	cache         util.ProductCache
	kafkaProducer util.MessagePublisher
	maxResults    int // Ограничение результатов поиска, <= 0 означает без ограничения
}

// NewCatalogService создает новый сервис каталога с внедрением зависимостей
func NewCatalogService(
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	cache util.ProductCache,
	kafkaProducer util.MessagePublisher,
	maxResults int,
) *CatalogService {
	return &CatalogService{
		productRepo:   productRepo,
		saleRepo:      saleRepo,
		cache:         cache,
		kafkaProducer: kafkaProducer,
		maxResults:    maxResults,
	}
}

// SearchProducts ищет товары по подстроке без учета регистра
// Пустой или пробельный запрос означает "весь каталог" и обслуживается
// через Redis кеш, минуя матчер; total всегда равен len(items)
func (s *CatalogService) SearchProducts(ctx context.Context, query string) (*entity.SearchResponse, error) {
	query = strings.TrimSpace(query)

	if query == "" {
		metrics.ProductSearches.WithLabelValues("browse").Inc()

		products, err := s.allProductsCached(ctx)
		if err != nil {
			return nil, err
		}
		return &entity.SearchResponse{Items: products, Total: len(products)}, nil
	}

	metrics.ProductSearches.WithLabelValues("query").Inc()

	products, err := s.productRepo.Search(ctx, query, s.maxResults)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	if products == nil {
		products = []entity.Product{}
	}

	return &entity.SearchResponse{Items: products, Total: len(products)}, nil
}

// GetProduct получает товар по id
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// RecordSale регистрирует продажу в журнале
// product_id и total_price обязательны; quantity по умолчанию 1
// Существование товара в каталоге не проверяется, stock не уменьшается
// После записи отправляется событие SALE_RECORDED в Kafka
func (s *CatalogService) RecordSale(ctx context.Context, req *entity.RecordSaleRequest) (*entity.Sale, error) {
	if req == nil || req.ProductID == nil || req.TotalPrice == nil {
		return nil, ErrInvalidSaleInput
	}
	if *req.TotalPrice < 0 {
		return nil, ErrInvalidSaleInput
	}

	quantity := 1
	if req.Quantity != nil {
		if *req.Quantity <= 0 {
			return nil, ErrInvalidSaleInput
		}
		quantity = *req.Quantity
	}

	sale := &entity.Sale{
		ProductID:    *req.ProductID,
		ProductTitle: req.ProductTitle,
		Quantity:     quantity,
		TotalPrice:   *req.TotalPrice,
		SaleDate:     time.Now(),
	}

	// Репозиторий присваивает уникальный возрастающий id
	if err := s.saleRepo.Create(ctx, sale); err != nil {
		return nil, fmt.Errorf("failed to record sale: %w", err)
	}

	metrics.SalesRecorded.Inc()
	metrics.SalesTotalAmount.Add(sale.TotalPrice)

	// Продажа уже записана, проблемы с Kafka не критичны для основной операции
	if err := s.publishSaleEvent(ctx, sale); err != nil {
		logger.Warn().Err(err).Int64("sale_id", sale.ID).Msg("Failed to publish sale event")
	}

	return sale, nil
}

// GetAllSales возвращает журнал продаж от самой новой к самой старой
func (s *CatalogService) GetAllSales(ctx context.Context) ([]entity.Sale, error) {
	sales, err := s.saleRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get sales: %w", err)
	}
	if sales == nil {
		sales = []entity.Sale{}
	}

	return sales, nil
}

// WarmCatalogCache прогревает кеш каталога (вызывается по расписанию cron)
func (s *CatalogService) WarmCatalogCache(ctx context.Context) error {
	products, err := s.productRepo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	if err := s.cache.SetProducts(ctx, products, productsCacheTTL); err != nil {
		return fmt.Errorf("failed to warm catalog cache: %w", err)
	}

	return nil
}

// allProductsCached возвращает весь каталог, используя Redis кеш
// Промах и ошибки кеша приводят к чтению из репозитория; ошибки кеша не критичны
func (s *CatalogService) allProductsCached(ctx context.Context) ([]entity.Product, error) {
	products, err := s.cache.GetProducts(ctx)
	if err == nil && products != nil {
		metrics.RecordCacheHit("bazar-service", "catalog")
		return products, nil
	}
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read catalog cache")
	}
	metrics.RecordCacheMiss("bazar-service", "catalog")

	products, err = s.productRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	if products == nil {
		products = []entity.Product{}
	}

	if err := s.cache.SetProducts(ctx, products, productsCacheTTL); err != nil {
		logger.Warn().Err(err).Msg("Failed to cache catalog")
	}

	return products, nil
}

// publishSaleEvent отправляет событие о продаже в Kafka
// Key - это id продажи для партиционирования
func (s *CatalogService) publishSaleEvent(ctx context.Context, sale *entity.Sale) error {
	event := entity.SaleEvent{
		EventID:      uuid.New(),
		EventType:    "SALE_RECORDED",
		SaleID:       sale.ID,
		ProductID:    sale.ProductID,
		ProductTitle: sale.ProductTitle,
		Quantity:     sale.Quantity,
		TotalPrice:   sale.TotalPrice,
		Timestamp:    sale.SaleDate,
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal sale event: %w", err)
	}

	if err := s.kafkaProducer.PublishMessage(ctx, strconv.FormatInt(sale.ID, 10), eventData); err != nil {
		return fmt.Errorf("failed to publish to kafka: %w", err)
	}

	return nil
}
