package util

import (
	"context"
	"time"

	"bazar/internal/app/bazar/entity"
)

// ProductCache интерфейс для кеширования каталога
// Используется для dependency injection и упрощения тестирования
type ProductCache interface {
	SetProducts(ctx context.Context, products []entity.Product, ttl time.Duration) error
	GetProducts(ctx context.Context) ([]entity.Product, error)
	DeleteProducts(ctx context.Context) error
	Close() error
}

// MessagePublisher интерфейс для отправки сообщений в очередь (Kafka)
// Используется для dependency injection и упрощения тестирования
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}
