package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"bazar/internal/app/bazar/config"
	"bazar/internal/app/bazar/handler"
	"bazar/internal/app/bazar/processor"
	"bazar/internal/app/bazar/repository"
	"bazar/internal/app/bazar/seed"
	"bazar/internal/app/bazar/service"
	"bazar/internal/app/bazar/util"
	"bazar/pkg/logger"
	"bazar/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logger.Init("bazar-service", logLevel)

	logstashAddr := os.Getenv("LOGSTASH_ADDR")
	if logstashAddr != "" {
		if err := logger.InitLogstash(logstashAddr, "bazar-service", logLevel); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Logstash, using stdout only")
		} else {
			logger.Info().Str("logstash_addr", logstashAddr).Msg("Connected to Logstash")
		}
	}

	// === ВЫБОР БЭКЕНДА ХРАНЕНИЯ ===
	// Бизнес-логика одна и та же, отличается только реализация репозиториев
	var productRepo repository.ProductRepository
	var saleRepo repository.SaleRepository

	switch cfg.Storage.Backend {
	case config.StorageBackendPostgres:
		db, err := connectDB(cfg.Database)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to database")
		}
		if err := repository.Migrate(db); err != nil {
			logger.Fatal().Err(err).Msg("Failed to run migrations")
		}
		productRepo = repository.NewPostgresProductRepository(db)
		saleRepo = repository.NewPostgresSaleRepository(db)
		logger.Info().
			Str("host", cfg.Database.Host).
			Str("database", cfg.Database.DBName).
			Msg("Connected to PostgreSQL")
	default:
		productRepo = repository.NewMemoryProductRepository()
		saleRepo = repository.NewMemorySaleRepository()
		logger.Info().Msg("Using in-memory storage")
	}

	// === ЗАГРУЗКА КАТАЛОГА ===
	seedCatalog(cfg.Catalog.SeedPath, productRepo)

	// === ПОДКЛЮЧЕНИЕ К REDIS ===
	// Redis используется для кеширования полного списка товаров
	redisClient, err := util.NewRedisClient(
		cfg.Redis.Address(),
		cfg.Redis.Password,
		cfg.Redis.DB,
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()
	logger.Info().Str("addr", cfg.Redis.Address()).Msg("Connected to Redis")

	// === ИНИЦИАЛИЗАЦИЯ KAFKA PRODUCER ===
	// Producer отправляет события SALE_RECORDED в топик sale_events
	kafkaProducer := util.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer kafkaProducer.Close()
	logger.Info().Str("topic", cfg.Kafka.Topic).Msg("Initialized Kafka producer")

	// === БИЗНЕС-ЛОГИКА И HTTP ===
	catalogService := service.NewCatalogService(
		productRepo,
		saleRepo,
		redisClient,
		kafkaProducer,
		cfg.Catalog.MaxResults,
	)

	cronScheduler := processor.NewCronScheduler(catalogService)
	if err := cronScheduler.Start(context.Background(), cfg.Cron.WarmCache); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start cron scheduler")
	}
	defer cronScheduler.Stop()

	catalogHandler := handler.NewCatalogHandler(catalogService)
	router := handler.SetupRoutes(catalogHandler)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("address", cfg.Server.Address()).Msg("Starting Bazar Service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// === GRACEFUL SHUTDOWN ===
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Bazar Service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Bazar Service stopped gracefully")
}

// connectDB устанавливает соединение с PostgreSQL через GORM
// Использует retry logic с 10 попытками для устойчивости при запуске в Docker
func connectDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
		if err == nil {
			return db, nil
		}
		logger.Warn().Err(err).Int("attempt", i+1).Msg("Failed to connect to database, retrying")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}

// seedCatalog загружает каталог из seed-файла, если хранилище еще пустое
// Дубликаты id и битые записи пропускаются, загрузка не прерывается
func seedCatalog(path string, productRepo repository.ProductRepository) {
	ctx := context.Background()

	count, err := productRepo.Count(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to check catalog size")
	}
	if count > 0 {
		logger.Info().Int64("products", count).Msg("Catalog already loaded")
		metrics.CatalogProducts.Set(float64(count))
		return
	}

	file, err := os.Open(path)
	if err != nil {
		logger.Fatal().Err(err).Str("path", path).Msg("Failed to open seed file")
	}
	defer file.Close()

	products, malformed, err := seed.Load(file)
	if err != nil {
		logger.Fatal().Err(err).Str("path", path).Msg("Failed to load seed data")
	}

	inserted, err := productRepo.Seed(ctx, products)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to seed catalog")
	}

	metrics.CatalogProducts.Set(float64(inserted))
	logger.Info().
		Int("loaded", inserted).
		Int("duplicates", len(products)-inserted).
		Int("malformed", malformed).
		Str("path", path).
		Msg("Catalog loaded")
}
