package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Rating представляет оценку товара
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Product представляет нормализованный товар каталога
// Каталог загружается один раз при старте из seed и дальше только читается
// Все поля гарантированно заполнены значением (см. нормализацию в пакете seed)
type Product struct {
	ID                   int64              `json:"id"`
	Title                string             `json:"title"`
	Price                float64            `json:"price"`
	Description          string             `json:"description"`
	Category             string             `json:"category"`
	Image                string             `json:"image"`
	Rating               Rating             `json:"rating"`
	Brand                string             `json:"brand"`
	Stock                int                `json:"stock"` // Информационное поле, при продаже не уменьшается
	DiscountPercentage   float64            `json:"discountPercentage"`
	Tags                 []string           `json:"tags"`
	SKU                  string             `json:"sku"`
	Weight               float64            `json:"weight"`
	Dimensions           map[string]float64 `json:"dimensions"`
	WarrantyInformation  string             `json:"warrantyInformation"`
	ShippingInformation  string             `json:"shippingInformation"`
	AvailabilityStatus   string             `json:"availabilityStatus"`
	Reviews              []json.RawMessage  `json:"reviews"` // Отзывы хранятся как непрозрачные записи
	ReturnPolicy         string             `json:"returnPolicy"`
	MinimumOrderQuantity int                `json:"minimumOrderQuantity"`
	Meta                 map[string]any     `json:"meta"`
	Thumbnail            string             `json:"thumbnail"`
}

// Sale представляет запись о продаже в журнале продаж
// Журнал append-only: продажи не обновляются и не удаляются
type Sale struct {
	ID           int64     `json:"id"`
	ProductID    int64     `json:"product_id"`    // Ссылка по значению, существование товара не проверяется
	ProductTitle string    `json:"product_title"` // Название передаёт клиент, с каталогом не сверяется
	Quantity     int       `json:"quantity"`
	TotalPrice   float64   `json:"total_price"` // Передаётся клиентом, не пересчитывается из цены товара
	SaleDate     time.Time `json:"sale_date"`
}

// SaleEvent представляет событие о продаже для Kafka
type SaleEvent struct {
	EventID      uuid.UUID `json:"event_id"`
	EventType    string    `json:"event_type"` // SALE_RECORDED
	SaleID       int64     `json:"sale_id"`
	ProductID    int64     `json:"product_id"`
	ProductTitle string    `json:"product_title"`
	Quantity     int       `json:"quantity"`
	TotalPrice   float64   `json:"total_price"`
	Timestamp    time.Time `json:"timestamp"`
}
