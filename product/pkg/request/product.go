package request

import (
	"github.com/shopspring/decimal"
)

type Product struct {
	Name        string          `validate:"required"       json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Brand       string          `json:"brand"`
	Price       decimal.Decimal `validate:"required"       json:"price"`
	Stock       int32           `validate:"gte=0"          json:"stock"`
	ImageUrls   []string        `json:"image_urls"`
}

type UpdateProduct struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Brand       string           `json:"brand"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int32           `validate:"omitempty,gte=0" json:"stock"`
	ImageUrls   []string         `json:"image_urls"`
	IsActive    *bool            `json:"is_active"`
}

type FindProducts struct {
	Category string           `json:"category"`
	MinPrice *decimal.Decimal `json:"min_price"`
	MaxPrice *decimal.Decimal `json:"max_price"`
	Search   string           `json:"search"`
	Page     int32            `validate:"gte=1"        json:"page"`
	Limit    int32            `validate:"gte=1,lte=100" json:"limit"`
}
