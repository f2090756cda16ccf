package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bazar/pkg/logger"
	"bazar/pkg/metrics"
)

// SetupRoutes настраивает все маршруты Bazar Service с использованием Gin
// Пути повторяют API исходного бэкенда: /api/items, /api/addSale, /api/sales
func SetupRoutes(catalogHandler *CatalogHandler) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(logger.GinLoggerMiddleware())
	router.Use(metrics.GinPrometheusMiddleware("bazar-service"))

	// Фронтенд ходит с credentials с любого origin
	router.Use(cors.New(cors.Config{
		AllowOriginFunc:  func(origin string) bool { return true },
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "bazar-service",
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("", catalogHandler.Status)
		api.GET("/items", catalogHandler.SearchItems)  // Поиск по каталогу
		api.GET("/items/:id", catalogHandler.GetItem)  // Товар по ID
		api.POST("/addSale", catalogHandler.AddSale)   // Регистрация продажи
		api.GET("/sales", catalogHandler.GetSales)     // Журнал продаж
	}

	return router
}
