package service

import (
	"context"

	"bazar/internal/app/bazar/entity"
)

type CatalogServiceInterface interface {
	SearchProducts(ctx context.Context, query string) (*entity.SearchResponse, error)
	GetProduct(ctx context.Context, id int64) (*entity.Product, error)
	RecordSale(ctx context.Context, req *entity.RecordSaleRequest) (*entity.Sale, error)
	GetAllSales(ctx context.Context) ([]entity.Sale, error)
	WarmCatalogCache(ctx context.Context) error
}
