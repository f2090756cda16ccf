package repository

import (
	"context"
	"errors"
	"strings"

	"bazar/internal/app/bazar/entity"
)

var (
	// Стандартные ошибки репозиториев для обработки в service layer
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository отвечает за хранение каталога товаров
// Каталог наполняется один раз через Seed и после этого только читается
type ProductRepository interface {
	Seed(ctx context.Context, products []entity.Product) (int, error)
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	Search(ctx context.Context, query string, limit int) ([]entity.Product, error)
	GetAll(ctx context.Context) ([]entity.Product, error)
	Count(ctx context.Context) (int64, error)
}

// SaleRepository отвечает за журнал продаж
// Журнал append-only: Create присваивает уникальный возрастающий id
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	GetAll(ctx context.Context) ([]entity.Sale, error)
}

// matchesQuery проверяет товар на совпадение с поисковым запросом
// Запрос должен быть уже обрезан и приведён к нижнему регистру
// Совпадение: подстрока в title, description, category, brand или в одном из tags
func matchesQuery(p *entity.Product, query string) bool {
	if strings.Contains(strings.ToLower(p.Title), query) {
		return true
	}
	if strings.Contains(strings.ToLower(p.Description), query) {
		return true
	}
	if strings.Contains(strings.ToLower(p.Category), query) {
		return true
	}
	if strings.Contains(strings.ToLower(p.Brand), query) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

// normalizeQuery приводит поисковый запрос к канонической форме
func normalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}
