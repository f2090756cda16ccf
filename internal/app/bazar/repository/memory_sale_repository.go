package repository

import (
	"context"
	"sync"

	"bazar/internal/app/bazar/entity"
)

// memorySaleRepository хранит журнал продаж в памяти процесса
// Единственная мутация (append) сериализуется мьютексом, поэтому два
// конкурентных Create никогда не получат одинаковый id
type memorySaleRepository struct {
	mu     sync.Mutex
	sales  []entity.Sale
	lastID int64
}

// NewMemorySaleRepository создает in-memory репозиторий продаж
func NewMemorySaleRepository() SaleRepository {
	return &memorySaleRepository{}
}

// Create добавляет продажу в журнал и присваивает ей id = максимальный + 1
func (r *memorySaleRepository) Create(ctx context.Context, sale *entity.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID++
	sale.ID = r.lastID
	r.sales = append(r.sales, *sale)

	return nil
}

// GetAll возвращает продажи от самой новой к самой старой
// sale_date монотонно не убывает в порядке вставки, поэтому обратный
// порядок журнала совпадает с сортировкой по дате, а для одинаковых дат
// более поздняя вставка оказывается раньше
func (r *memorySaleRepository) GetAll(ctx context.Context) ([]entity.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sales := make([]entity.Sale, 0, len(r.sales))
	for i := len(r.sales) - 1; i >= 0; i-- {
		sales = append(sales, r.sales[i])
	}

	return sales, nil
}
