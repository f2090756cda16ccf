package config

import (
	"fmt"
	"os"
	"strconv"
)

// Бэкенды хранения каталога и журнала продаж
const (
	StorageBackendMemory   = "memory"
	StorageBackendPostgres = "postgres"
)

// Config содержит все настройки приложения Bazar Service
// Включает конфигурацию для HTTP сервера, хранилища, Redis, Kafka и каталога
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Catalog  CatalogConfig
	Cron     CronConfig
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Host string // Адрес хоста (по умолчанию 0.0.0.0)
	Port string // Порт сервера (по умолчанию 3001, как у исходного бэкенда)
}

// StorageConfig - выбор бэкенда хранения
// memory: каталог и журнал в памяти процесса (данные живут до рестарта)
// postgres: долговременное хранение, требует DatabaseConfig
type StorageConfig struct {
	Backend string
}

// DatabaseConfig - настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig - настройки подключения к Redis
// Используется для кеширования полного списка товаров каталога
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// KafkaConfig - настройки Kafka для отправки событий
// События SALE_RECORDED отправляются при каждой зарегистрированной продаже
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// CatalogConfig - настройки каталога
type CatalogConfig struct {
	SeedPath   string // Путь к JSON файлу с товарами
	MaxResults int    // Ограничение результатов поиска, <= 0 отключает ограничение
}

// CronConfig - расписания фоновых задач
type CronConfig struct {
	WarmCache string // Расписание прогрева кеша каталога
}

// Load загружает конфигурацию из переменных окружения
// Возвращает ошибку, если не удалось распарсить значения
func Load() (*Config, error) {
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB value: %w", err)
	}

	maxResults, err := strconv.Atoi(getEnv("CATALOG_MAX_RESULTS", "50"))
	if err != nil {
		return nil, fmt.Errorf("invalid CATALOG_MAX_RESULTS value: %w", err)
	}

	backend := getEnv("STORAGE_BACKEND", StorageBackendMemory)
	if backend != StorageBackendMemory && backend != StorageBackendPostgres {
		return nil, fmt.Errorf("invalid STORAGE_BACKEND value: %q", backend)
	}

	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "3001"),
		},
		Storage: StorageConfig{
			Backend: backend,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "bazar"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Topic:   getEnv("KAFKA_TOPIC", "sale_events"),
		},
		Catalog: CatalogConfig{
			SeedPath:   getEnv("SEED_PATH", "./data/products.json"),
			MaxResults: maxResults,
		},
		Cron: CronConfig{
			WarmCache: getEnv("CRON_WARM_CACHE", "@every 10m"),
		},
	}, nil
}

// DSN возвращает строку подключения к PostgreSQL в формате libpq
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Address возвращает адрес сервера в формате host:port для HTTP сервера
func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// Address возвращает адрес Redis в формате host:port для подключения
func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
