package repository

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	cartResponse "github.com/Alturino/storefront/cart/pkg/response"
	productResponse "github.com/Alturino/storefront/product/pkg/response"
	userResponse "github.com/Alturino/storefront/user/pkg/response"
)

func (p Product) Response() productResponse.Product {
	return productResponse.Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Brand:       p.Brand,
		Price:       decimal.NewFromBigInt(p.Price.Int, p.Price.Exp),
		Stock:       p.Stock,
		ImageUrls:   p.ImageUrls,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt.Time,
		UpdatedAt:   p.UpdatedAt.Time,
	}
}

func (u User) Response() userResponse.User {
	return userResponse.User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt.Time,
		UpdatedAt: u.UpdatedAt.Time,
	}
}

func (f FindCartWithItemsByUserIdRow) Response() (cartResponse.Cart, error) {
	cartItems := []cartResponse.CartItem{}
	err := json.Unmarshal(f.CartItems, &cartItems)
	if err != nil {
		return cartResponse.Cart{}, err
	}
	return cartResponse.Cart{
		ID:        f.ID,
		UserID:    f.UserID,
		CartItems: cartItems,
		Total:     decimal.NewFromBigInt(f.Total.Int, f.Total.Exp),
		CreatedAt: f.CreatedAt.Time,
		UpdatedAt: f.UpdatedAt.Time,
	}, nil
}
