package repository

import (
	"context"
	"time"

	"bazar/internal/app/bazar/entity"
	"bazar/pkg/metrics"

	"gorm.io/gorm"
)

// saleRow представляет строку продажи в PostgreSQL
// id присваивает БД (BIGSERIAL), что гарантирует уникальность
// и возрастание при конкурентных вставках
type saleRow struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	ProductID    int64     `gorm:"not null"`
	ProductTitle string    `gorm:"not null"`
	Quantity     int       `gorm:"not null;default:1"`
	TotalPrice   float64   `gorm:"not null"`
	SaleDate     time.Time `gorm:"not null;index"`
}

// TableName указывает имя таблицы для GORM
func (saleRow) TableName() string {
	return "sales"
}

type postgresSaleRepository struct {
	db *gorm.DB
}

// NewPostgresSaleRepository создает PostgreSQL репозиторий продаж
func NewPostgresSaleRepository(db *gorm.DB) SaleRepository {
	return &postgresSaleRepository{db: db}
}

// Create добавляет продажу в журнал, id присваивает БД
func (r *postgresSaleRepository) Create(ctx context.Context, sale *entity.Sale) error {
	timer := metrics.NewDbTimer("bazar-service", metrics.DbOpInsert, "sales")
	defer timer.ObserveDuration()

	row := saleRow{
		ProductID:    sale.ProductID,
		ProductTitle: sale.ProductTitle,
		Quantity:     sale.Quantity,
		TotalPrice:   sale.TotalPrice,
		SaleDate:     sale.SaleDate,
	}

	result := r.db.WithContext(ctx).Create(&row)
	if result.Error != nil {
		metrics.RecordDbError("bazar-service", metrics.DbOpInsert)
		return result.Error
	}

	sale.ID = row.ID
	return nil
}

// GetAll возвращает продажи от самой новой к самой старой
// При одинаковой дате позже вставленная запись (больший id) идет первой
func (r *postgresSaleRepository) GetAll(ctx context.Context) ([]entity.Sale, error) {
	timer := metrics.NewDbTimer("bazar-service", metrics.DbOpSelect, "sales")
	defer timer.ObserveDuration()

	var rows []saleRow
	result := r.db.WithContext(ctx).Order("sale_date DESC, id DESC").Find(&rows)

	if result.Error != nil {
		metrics.RecordDbError("bazar-service", metrics.DbOpSelect)
		return nil, result.Error
	}

	sales := make([]entity.Sale, 0, len(rows))
	for _, row := range rows {
		sales = append(sales, entity.Sale{
			ID:           row.ID,
			ProductID:    row.ProductID,
			ProductTitle: row.ProductTitle,
			Quantity:     row.Quantity,
			TotalPrice:   row.TotalPrice,
			SaleDate:     row.SaleDate,
		})
	}

	return sales, nil
}

// Migrate создает таблицы каталога и журнала продаж
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&productRow{}, &saleRow{})
}
