package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          uuid.UUID       `json:"id"          redis:"id"`
	Name        string          `json:"name"        redis:"name"`
	Description string          `json:"description" redis:"description"`
	Category    string          `json:"category"    redis:"category"`
	Brand       string          `json:"brand"       redis:"brand"`
	Price       decimal.Decimal `json:"price"       redis:"price"`
	Stock       int32           `json:"stock"       redis:"stock"`
	ImageUrls   []string        `json:"image_urls"  redis:"image_urls"`
	IsActive    bool            `json:"is_active"   redis:"is_active"`
	CreatedAt   time.Time       `json:"created_at"  redis:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"  redis:"updated_at"`
}

type ProductPage struct {
	Products    []Product `json:"products"`
	Total       int64     `json:"total"`
	TotalPages  int64     `json:"total_pages"`
	CurrentPage int32     `json:"current_page"`
}
