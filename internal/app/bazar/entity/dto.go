package entity

type RecordSaleRequest struct {
	ProductID    *int64   `json:"product_id" validate:"required"`
	ProductTitle string   `json:"product_title"`
	Quantity     *int     `json:"quantity" validate:"omitempty,gt=0"`
	TotalPrice   *float64 `json:"total_price" validate:"required,gte=0"`
}

type RecordSaleResponse struct {
	Success bool   `json:"success"`
	SaleID  int64  `json:"sale_id,omitempty"`
	Message string `json:"message,omitempty"`
}

type SearchResponse struct {
	Items []Product `json:"items"`
	Total int       `json:"total"`
}

type StatusResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Status    string `json:"status"`
}
