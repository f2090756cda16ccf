package repository

import (
	"context"
	"sync"

	"bazar/internal/app/bazar/entity"
)

// memoryProductRepository хранит каталог в памяти процесса
// Порядок товаров совпадает с порядком загрузки seed
type memoryProductRepository struct {
	mu       sync.RWMutex
	products []entity.Product
	byID     map[int64]int // id -> индекс в products
}

// NewMemoryProductRepository создает in-memory репозиторий товаров
func NewMemoryProductRepository() ProductRepository {
	return &memoryProductRepository{
		byID: make(map[int64]int),
	}
}

// Seed загружает нормализованные товары в каталог
// Дубликат id отбрасывается молча: первая запись выигрывает
func (r *memoryProductRepository) Seed(ctx context.Context, products []entity.Product) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inserted := 0
	for _, product := range products {
		if _, exists := r.byID[product.ID]; exists {
			continue
		}
		r.byID[product.ID] = len(r.products)
		r.products = append(r.products, product)
		inserted++
	}

	return inserted, nil
}

// GetByID получает товар по точному совпадению id
func (r *memoryProductRepository) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, exists := r.byID[id]
	if !exists {
		return nil, ErrProductNotFound
	}

	product := r.products[idx]
	return &product, nil
}

// Search возвращает товары, совпадающие с запросом, в порядке каталога
// limit <= 0 означает отсутствие ограничения
func (r *memoryProductRepository) Search(ctx context.Context, query string, limit int) ([]entity.Product, error) {
	normalized := normalizeQuery(query)
	if normalized == "" {
		return r.GetAll(ctx)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := []entity.Product{}
	for _, product := range r.products {
		if !matchesQuery(&product, normalized) {
			continue
		}
		matches = append(matches, product)
		if limit > 0 && len(matches) >= limit {
			break
		}
	}

	return matches, nil
}

// GetAll возвращает весь каталог в порядке загрузки
func (r *memoryProductRepository) GetAll(ctx context.Context) ([]entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]entity.Product, len(r.products))
	copy(products, r.products)
	return products, nil
}

// Count возвращает количество товаров в каталоге
func (r *memoryProductRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.products)), nil
}
