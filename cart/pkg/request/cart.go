package request

import (
	"github.com/google/uuid"
)

type AddItem struct {
	ProductId uuid.UUID `validate:"required" json:"product_id"`
	Quantity  int32     `validate:"required,gte=1" json:"quantity"`
}

// UpdateItemQuantity carries no lower bound on purpose: a quantity of zero or
// less removes the line item instead of failing.
type UpdateItemQuantity struct {
	Quantity int32 `json:"quantity"`
}
