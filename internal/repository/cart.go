package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const upsertCart = `
INSERT INTO carts (user_id)
VALUES ($1)
ON CONFLICT (user_id) DO UPDATE SET user_id = excluded.user_id
RETURNING id, user_id, total, created_at, updated_at
`

// UpsertCart returns the existing cart for the user or lazily creates an empty
// one. The conflict arm writes nothing observable, so repeated calls with no
// intervening mutation return the same row.
func (q *Queries) UpsertCart(c context.Context, userId uuid.UUID) (Cart, error) {
	row := q.db.QueryRow(c, upsertCart, userId)
	var cart Cart
	err := row.Scan(
		&cart.ID,
		&cart.UserID,
		&cart.Total,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	return cart, err
}

const findCartByUserIdForUpdate = `
SELECT id, user_id, total, created_at, updated_at
FROM carts
WHERE user_id = $1
FOR UPDATE
`

// FindCartByUserIdForUpdate takes a row lock so concurrent mutations of the
// same cart serialize instead of last-writer-wins on the whole document.
func (q *Queries) FindCartByUserIdForUpdate(c context.Context, userId uuid.UUID) (Cart, error) {
	row := q.db.QueryRow(c, findCartByUserIdForUpdate, userId)
	var cart Cart
	err := row.Scan(
		&cart.ID,
		&cart.UserID,
		&cart.Total,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	return cart, err
}

const findCartWithItemsByUserId = `
SELECT c.id,
       c.user_id,
       c.total,
       c.created_at,
       c.updated_at,
       coalesce(
           jsonb_agg(
               jsonb_build_object(
                   'id', ci.id,
                   'cart_id', ci.cart_id,
                   'product_id', ci.product_id,
                   'product_name', p.name,
                   'quantity', ci.quantity,
                   'price', ci.price,
                   'created_at', ci.created_at,
                   'updated_at', ci.updated_at
               )
               ORDER BY ci.created_at
           ) FILTER (WHERE ci.id IS NOT NULL),
           '[]'
       ) AS cart_items
FROM carts c
LEFT JOIN cart_items ci ON ci.cart_id = c.id
LEFT JOIN products p ON p.id = ci.product_id
WHERE c.user_id = $1
GROUP BY c.id
`

type FindCartWithItemsByUserIdRow struct {
	ID        uuid.UUID          `json:"id"`
	UserID    uuid.UUID          `json:"user_id"`
	Total     pgtype.Numeric     `json:"total"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
	CartItems []byte             `json:"cart_items"`
}

func (q *Queries) FindCartWithItemsByUserId(
	c context.Context,
	userId uuid.UUID,
) (FindCartWithItemsByUserIdRow, error) {
	row := q.db.QueryRow(c, findCartWithItemsByUserId, userId)
	var r FindCartWithItemsByUserIdRow
	err := row.Scan(
		&r.ID,
		&r.UserID,
		&r.Total,
		&r.CreatedAt,
		&r.UpdatedAt,
		&r.CartItems,
	)
	return r, err
}

const upsertCartItem = `
INSERT INTO cart_items (cart_id, product_id, quantity, price)
VALUES ($1, $2, $3, $4)
ON CONFLICT (cart_id, product_id)
DO UPDATE SET quantity = cart_items.quantity + excluded.quantity, updated_at = now()
RETURNING id, cart_id, product_id, quantity, price, created_at, updated_at
`

type UpsertCartItemParams struct {
	CartID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
	Price     pgtype.Numeric
}

// UpsertCartItem merges quantities for an already present product and keeps
// the original price snapshot; a new product gets a fresh line item.
func (q *Queries) UpsertCartItem(c context.Context, arg UpsertCartItemParams) (CartItem, error) {
	row := q.db.QueryRow(c, upsertCartItem, arg.CartID, arg.ProductID, arg.Quantity, arg.Price)
	var item CartItem
	err := row.Scan(
		&item.ID,
		&item.CartID,
		&item.ProductID,
		&item.Quantity,
		&item.Price,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	return item, err
}

const findCartItemById = `
SELECT id, cart_id, product_id, quantity, price, created_at, updated_at
FROM cart_items
WHERE id = $1 AND cart_id = $2
`

type FindCartItemByIdParams struct {
	ID     uuid.UUID
	CartID uuid.UUID
}

func (q *Queries) FindCartItemById(
	c context.Context,
	arg FindCartItemByIdParams,
) (CartItem, error) {
	row := q.db.QueryRow(c, findCartItemById, arg.ID, arg.CartID)
	var item CartItem
	err := row.Scan(
		&item.ID,
		&item.CartID,
		&item.ProductID,
		&item.Quantity,
		&item.Price,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	return item, err
}

const updateCartItemQuantity = `
UPDATE cart_items
SET quantity = $3, updated_at = now()
WHERE id = $1 AND cart_id = $2
RETURNING id, cart_id, product_id, quantity, price, created_at, updated_at
`

type UpdateCartItemQuantityParams struct {
	ID       uuid.UUID
	CartID   uuid.UUID
	Quantity int32
}

func (q *Queries) UpdateCartItemQuantity(
	c context.Context,
	arg UpdateCartItemQuantityParams,
) (CartItem, error) {
	row := q.db.QueryRow(c, updateCartItemQuantity, arg.ID, arg.CartID, arg.Quantity)
	var item CartItem
	err := row.Scan(
		&item.ID,
		&item.CartID,
		&item.ProductID,
		&item.Quantity,
		&item.Price,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	return item, err
}

const deleteCartItemById = `
DELETE FROM cart_items
WHERE id = $1 AND cart_id = $2
`

type DeleteCartItemByIdParams struct {
	ID     uuid.UUID
	CartID uuid.UUID
}

// DeleteCartItemById reports how many rows were removed; deleting an absent
// item is not an error.
func (q *Queries) DeleteCartItemById(
	c context.Context,
	arg DeleteCartItemByIdParams,
) (int64, error) {
	tag, err := q.db.Exec(c, deleteCartItemById, arg.ID, arg.CartID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const recomputeCartTotal = `
UPDATE carts
SET total = coalesce(
        (SELECT sum(price * quantity) FROM cart_items WHERE cart_id = $1),
        0
    ),
    updated_at = now()
WHERE id = $1
RETURNING total
`

// RecomputeCartTotal re-derives the stored total from the current line items
// so a cart is never persisted with a stale total.
func (q *Queries) RecomputeCartTotal(c context.Context, cartId uuid.UUID) (pgtype.Numeric, error) {
	row := q.db.QueryRow(c, recomputeCartTotal, cartId)
	var total pgtype.Numeric
	err := row.Scan(&total)
	return total, err
}
