package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"bazar/internal/app/bazar/entity"
	"bazar/pkg/metrics"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// productRow представляет строку товара в PostgreSQL
// Коллекции (tags, dimensions, reviews, meta) хранятся как JSON-текст,
// рейтинг разложен на два столбца - та же схема, что и в products исходного бэкенда
type productRow struct {
	ID                   int64   `gorm:"primaryKey;autoIncrement:false"`
	Position             int64   `gorm:"not null;index"` // Порядок загрузки каталога
	Title                string  `gorm:"not null"`
	Price                float64 `gorm:"not null"`
	Description          string
	Category             string
	Image                string
	RatingRate           float64
	RatingCount          int
	Brand                string
	Stock                int
	DiscountPercentage   float64
	Tags                 string `gorm:"default:'[]'"`
	SKU                  string `gorm:"column:sku"`
	Weight               float64
	Dimensions           string `gorm:"default:'{}'"`
	WarrantyInformation  string
	ShippingInformation  string
	AvailabilityStatus   string
	Reviews              string `gorm:"default:'[]'"`
	ReturnPolicy         string
	MinimumOrderQuantity int
	Meta                 string `gorm:"default:'{}'"`
	Thumbnail            string
}

// TableName указывает имя таблицы для GORM
func (productRow) TableName() string {
	return "products"
}

func newProductRow(position int64, p *entity.Product) (*productRow, error) {
	tags, err := json.Marshal(p.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tags: %w", err)
	}
	dimensions, err := json.Marshal(p.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal dimensions: %w", err)
	}
	reviews, err := json.Marshal(p.Reviews)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal reviews: %w", err)
	}
	meta, err := json.Marshal(p.Meta)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal meta: %w", err)
	}

	return &productRow{
		ID:                   p.ID,
		Position:             position,
		Title:                p.Title,
		Price:                p.Price,
		Description:          p.Description,
		Category:             p.Category,
		Image:                p.Image,
		RatingRate:           p.Rating.Rate,
		RatingCount:          p.Rating.Count,
		Brand:                p.Brand,
		Stock:                p.Stock,
		DiscountPercentage:   p.DiscountPercentage,
		Tags:                 string(tags),
		SKU:                  p.SKU,
		Weight:               p.Weight,
		Dimensions:           string(dimensions),
		WarrantyInformation:  p.WarrantyInformation,
		ShippingInformation:  p.ShippingInformation,
		AvailabilityStatus:   p.AvailabilityStatus,
		Reviews:              string(reviews),
		ReturnPolicy:         p.ReturnPolicy,
		MinimumOrderQuantity: p.MinimumOrderQuantity,
		Meta:                 string(meta),
		Thumbnail:            p.Thumbnail,
	}, nil
}

func (row *productRow) toProduct() entity.Product {
	product := entity.Product{
		ID:                   row.ID,
		Title:                row.Title,
		Price:                row.Price,
		Description:          row.Description,
		Category:             row.Category,
		Image:                row.Image,
		Rating:               entity.Rating{Rate: row.RatingRate, Count: row.RatingCount},
		Brand:                row.Brand,
		Stock:                row.Stock,
		DiscountPercentage:   row.DiscountPercentage,
		Tags:                 []string{},
		SKU:                  row.SKU,
		Weight:               row.Weight,
		Dimensions:           map[string]float64{},
		WarrantyInformation:  row.WarrantyInformation,
		ShippingInformation:  row.ShippingInformation,
		AvailabilityStatus:   row.AvailabilityStatus,
		Reviews:              []json.RawMessage{},
		ReturnPolicy:         row.ReturnPolicy,
		MinimumOrderQuantity: row.MinimumOrderQuantity,
		Meta:                 map[string]any{},
		Thumbnail:            row.Thumbnail,
	}

	// Битый JSON в столбце оставляет пустую коллекцию
	if row.Tags != "" {
		_ = json.Unmarshal([]byte(row.Tags), &product.Tags)
	}
	if row.Dimensions != "" {
		_ = json.Unmarshal([]byte(row.Dimensions), &product.Dimensions)
	}
	if row.Reviews != "" {
		_ = json.Unmarshal([]byte(row.Reviews), &product.Reviews)
	}
	if row.Meta != "" {
		_ = json.Unmarshal([]byte(row.Meta), &product.Meta)
	}

	return product
}

type postgresProductRepository struct {
	db *gorm.DB
}

// NewPostgresProductRepository создает PostgreSQL репозиторий товаров
func NewPostgresProductRepository(db *gorm.DB) ProductRepository {
	return &postgresProductRepository{db: db}
}

// Seed загружает товары в таблицу products
// Дубликат id пропускается через ON CONFLICT DO NOTHING: первая запись выигрывает
func (r *postgresProductRepository) Seed(ctx context.Context, products []entity.Product) (int, error) {
	timer := metrics.NewDbTimer("bazar-service", metrics.DbOpInsert, "products")
	defer timer.ObserveDuration()

	inserted := 0
	for i := range products {
		row, err := newProductRow(int64(i+1), &products[i])
		if err != nil {
			return inserted, err
		}

		result := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(row)
		if result.Error != nil {
			metrics.RecordDbError("bazar-service", metrics.DbOpInsert)
			return inserted, result.Error
		}

		inserted += int(result.RowsAffected)
	}

	return inserted, nil
}

// GetByID получает товар по id
func (r *postgresProductRepository) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	timer := metrics.NewDbTimer("bazar-service", metrics.DbOpSelect, "products")
	defer timer.ObserveDuration()

	var row productRow
	result := r.db.WithContext(ctx).First(&row, "id = ?", id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		metrics.RecordDbError("bazar-service", metrics.DbOpSelect)
		return nil, result.Error
	}

	product := row.toProduct()
	return &product, nil
}

// Search ищет товары по подстроке без учета регистра
// SQL LIKE служит префильтром (по столбцу tags он сравнивает JSON-текст),
// поэтому кандидаты перепроверяются общим матчером по элементам tags
func (r *postgresProductRepository) Search(ctx context.Context, query string, limit int) ([]entity.Product, error) {
	normalized := normalizeQuery(query)
	if normalized == "" {
		return r.GetAll(ctx)
	}

	timer := metrics.NewDbTimer("bazar-service", metrics.DbOpSelect, "products")
	defer timer.ObserveDuration()

	pattern := "%" + strings.ReplaceAll(strings.ReplaceAll(normalized, "%", `\%`), "_", `\_`) + "%"

	var rows []productRow
	result := r.db.WithContext(ctx).
		Where(
			"lower(title) LIKE ? OR lower(description) LIKE ? OR lower(category) LIKE ? OR lower(brand) LIKE ? OR lower(tags) LIKE ?",
			pattern, pattern, pattern, pattern, pattern,
		).
		Order("position ASC").
		Find(&rows)

	if result.Error != nil {
		metrics.RecordDbError("bazar-service", metrics.DbOpSelect)
		return nil, result.Error
	}

	matches := []entity.Product{}
	for i := range rows {
		product := rows[i].toProduct()
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
func (r *postgresProductRepository) GetAll(ctx context.Context) ([]entity.Product, error) {
	timer := metrics.NewDbTimer("bazar-service", metrics.DbOpSelect, "products")
	defer timer.ObserveDuration()

	var rows []productRow
	result := r.db.WithContext(ctx).Order("position ASC").Find(&rows)

	if result.Error != nil {
		metrics.RecordDbError("bazar-service", metrics.DbOpSelect)
		return nil, result.Error
	}

	products := make([]entity.Product, 0, len(rows))
	for i := range rows {
		products = append(products, rows[i].toProduct())
	}

	return products, nil
}

// Count возвращает количество товаров в каталоге
func (r *postgresProductRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&productRow{}).Count(&count)

	if result.Error != nil {
		metrics.RecordDbError("bazar-service", metrics.DbOpSelect)
		return 0, result.Error
	}

	return count, nil
}
