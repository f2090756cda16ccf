package seed

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"bazar/internal/app/bazar/entity"
)

var ErrInvalidSeed = errors.New("invalid seed data")

// RawProduct представляет запись товара из seed-источника
// Источник нетипизированный: любое поле может отсутствовать
// Указатели используются там, где явный ноль должен отличаться от отсутствия
type RawProduct struct {
	ID                   *int64             `json:"id"`
	Title                string             `json:"title"`
	Price                float64            `json:"price"`
	Description          string             `json:"description"`
	Category             string             `json:"category"`
	Image                string             `json:"image"`
	Images               []string           `json:"images"`
	Rating               float64            `json:"rating"`
	RatingCount          *int               `json:"rating_count"`
	Brand                string             `json:"brand"`
	Stock                int                `json:"stock"`
	DiscountPercentage   float64            `json:"discountPercentage"`
	Tags                 []string           `json:"tags"`
	SKU                  string             `json:"sku"`
	Weight               float64            `json:"weight"`
	Dimensions           map[string]float64 `json:"dimensions"`
	WarrantyInformation  string             `json:"warrantyInformation"`
	ShippingInformation  string             `json:"shippingInformation"`
	AvailabilityStatus   string             `json:"availabilityStatus"`
	Reviews              []json.RawMessage  `json:"reviews"`
	ReturnPolicy         string             `json:"returnPolicy"`
	MinimumOrderQuantity *int               `json:"minimumOrderQuantity"`
	Meta                 map[string]any     `json:"meta"`
	Thumbnail            string             `json:"thumbnail"`
}

// Load читает seed-источник и возвращает нормализованные товары в порядке записи
// Принимает как обёртку {"products": [...]}, так и простой массив записей
// Некорректные записи пропускаются (возвращается их количество), загрузка не прерывается
func Load(r io.Reader) ([]entity.Product, int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read seed data: %w", err)
	}

	records, err := splitRecords(data)
	if err != nil {
		return nil, 0, err
	}

	products := make([]entity.Product, 0, len(records))
	skipped := 0

	for _, record := range records {
		var raw RawProduct
		if err := json.Unmarshal(record, &raw); err != nil || raw.ID == nil {
			// Битая запись или запись без id не должна прерывать загрузку каталога
			skipped++
			continue
		}
		products = append(products, Normalize(raw))
	}

	return products, skipped, nil
}

// splitRecords извлекает отдельные записи товаров из seed-документа
func splitRecords(data []byte) ([]json.RawMessage, error) {
	var wrapper struct {
		Products []json.RawMessage `json:"products"`
	}
	if err := json.Unmarshal(data, &wrapper); err == nil && wrapper.Products != nil {
		return wrapper.Products, nil
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}

	return nil, ErrInvalidSeed
}

// Normalize приводит сырую запись к каноническому товару
// Правила подстановки значений по умолчанию: явное поле или ноль/пустое значение,
// отсутствующие коллекции становятся пустыми, но никогда не nil
func Normalize(raw RawProduct) entity.Product {
	product := entity.Product{
		ID:                  *raw.ID,
		Title:               raw.Title,
		Price:               raw.Price,
		Description:         raw.Description,
		Category:            raw.Category,
		Image:               normalizeImage(raw),
		Rating:              entity.Rating{Rate: raw.Rating},
		Brand:               raw.Brand,
		Stock:               raw.Stock,
		DiscountPercentage:  raw.DiscountPercentage,
		Tags:                raw.Tags,
		SKU:                 raw.SKU,
		Weight:              raw.Weight,
		Dimensions:          raw.Dimensions,
		WarrantyInformation: raw.WarrantyInformation,
		ShippingInformation: raw.ShippingInformation,
		AvailabilityStatus:  raw.AvailabilityStatus,
		Reviews:             raw.Reviews,
		ReturnPolicy:        raw.ReturnPolicy,
		Meta:                raw.Meta,
		Thumbnail:           raw.Thumbnail,
	}

	// rating.count: явное поле, иначе количество отзывов, иначе 0
	if raw.RatingCount != nil {
		product.Rating.Count = *raw.RatingCount
	} else {
		product.Rating.Count = len(raw.Reviews)
	}

	// Минимальный заказ по умолчанию 1
	if raw.MinimumOrderQuantity != nil {
		product.MinimumOrderQuantity = *raw.MinimumOrderQuantity
	} else {
		product.MinimumOrderQuantity = 1
	}

	if product.Tags == nil {
		product.Tags = []string{}
	}
	if product.Dimensions == nil {
		product.Dimensions = map[string]float64{}
	}
	if product.Reviews == nil {
		product.Reviews = []json.RawMessage{}
	}
	if product.Meta == nil {
		product.Meta = map[string]any{}
	}

	return product
}

// normalizeImage выбирает картинку товара: image, первая из images, thumbnail
func normalizeImage(raw RawProduct) string {
	if raw.Image != "" {
		return raw.Image
	}
	if len(raw.Images) > 0 {
		return raw.Images[0]
	}
	return raw.Thumbnail
}
