package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"bazar/internal/app/bazar/entity"
	"bazar/internal/app/bazar/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// CatalogHandler обрабатывает HTTP запросы каталога и журнала продаж
type CatalogHandler struct {
	catalogService *service.CatalogService
	validator      *validator.Validate
}

// NewCatalogHandler создает новый обработчик каталога
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		validator:      validator.New(),
	}
}

// SearchItems обрабатывает GET /api/items?q=
// Пустой запрос возвращает весь каталог
func (h *CatalogHandler) SearchItems(c *gin.Context) {
	query := c.Query("q")

	result, err := h.catalogService.SearchProducts(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search products"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetItem обрабатывает GET /api/items/:id
func (h *CatalogHandler) GetItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get product"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// AddSale обрабатывает POST /api/addSale
// Любой отказ возвращается как {success:false, message}, наружу не поднимается
func (h *CatalogHandler) AddSale(c *gin.Context) {
	var req entity.RecordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.RecordSaleResponse{
			Success: false,
			Message: "Invalid request body",
		})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, entity.RecordSaleResponse{
			Success: false,
			Message: formatValidationError(err),
		})
		return
	}

	sale, err := h.catalogService.RecordSale(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSaleInput) {
			c.JSON(http.StatusBadRequest, entity.RecordSaleResponse{
				Success: false,
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, entity.RecordSaleResponse{
			Success: false,
			Message: "Failed to record sale",
		})
		return
	}

	c.JSON(http.StatusOK, entity.RecordSaleResponse{
		Success: true,
		SaleID:  sale.ID,
	})
}

// GetSales обрабатывает GET /api/sales
// Возвращает полный журнал продаж от самой новой к самой старой
func (h *CatalogHandler) GetSales(c *gin.Context) {
	sales, err := h.catalogService.GetAllSales(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get sales"})
		return
	}

	c.JSON(http.StatusOK, sales)
}

// Status обрабатывает GET /api
func (h *CatalogHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, entity.StatusResponse{
		Message:   "Bazar API is running",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Status:    "active",
	})
}

// formatValidationError форматирует ошибки валидации
func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		if validationErrors[0].Tag() == "required" {
			return "product_id and total_price are required"
		}
		return validationErrors[0].Field() + " validation failed"
	}
	return "Validation failed"
}
