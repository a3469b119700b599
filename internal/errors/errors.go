package errors

import (
	"errors"
)

var (
	ErrEmptyAuth     = errors.New("missing authorization")
	ErrEmptySubject  = errors.New("missing subject")
	ErrTokenInvalid  = errors.New("invalid token")
	ErrAdminOnly     = errors.New("access denied, admin only")
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailTaken    = errors.New("email is already registered")
	ErrWrongPassword = errors.New("password mismatch")

	ErrProductNotFound   = errors.New("product not found")
	ErrProductInCart     = errors.New("product is referenced by a cart")
	ErrInvalidQuantity   = errors.New("quantity must be a positive integer")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrCartNotFound      = errors.New("cart not found")
	ErrCartItemNotFound  = errors.New("item not found in cart")
)
