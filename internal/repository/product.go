package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const insertProduct = `
INSERT INTO products (name, description, category, brand, price, stock, image_urls)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, name, description, category, brand, price, stock, image_urls, is_active, created_at, updated_at
`

type InsertProductParams struct {
	Name        string
	Description string
	Category    string
	Brand       string
	Price       pgtype.Numeric
	Stock       int32
	ImageUrls   []string
}

func (q *Queries) InsertProduct(c context.Context, arg InsertProductParams) (Product, error) {
	row := q.db.QueryRow(
		c,
		insertProduct,
		arg.Name,
		arg.Description,
		arg.Category,
		arg.Brand,
		arg.Price,
		arg.Stock,
		arg.ImageUrls,
	)
	var p Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Category,
		&p.Brand,
		&p.Price,
		&p.Stock,
		&p.ImageUrls,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

const updateProduct = `
UPDATE products
SET name        = coalesce(nullif($2, ''), name),
    description = coalesce(nullif($3, ''), description),
    category    = coalesce(nullif($4, ''), category),
    brand       = coalesce(nullif($5, ''), brand),
    price       = coalesce($6, price),
    stock       = coalesce($7, stock),
    image_urls  = coalesce($8, image_urls),
    is_active   = coalesce($9, is_active),
    updated_at  = now()
WHERE id = $1
RETURNING id, name, description, category, brand, price, stock, image_urls, is_active, created_at, updated_at
`

type UpdateProductParams struct {
	ID          uuid.UUID
	Name        string
	Description string
	Category    string
	Brand       string
	Price       pgtype.Numeric
	Stock       *int32
	ImageUrls   []string
	IsActive    *bool
}

func (q *Queries) UpdateProduct(c context.Context, arg UpdateProductParams) (Product, error) {
	row := q.db.QueryRow(
		c,
		updateProduct,
		arg.ID,
		arg.Name,
		arg.Description,
		arg.Category,
		arg.Brand,
		arg.Price,
		arg.Stock,
		arg.ImageUrls,
		arg.IsActive,
	)
	var p Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Category,
		&p.Brand,
		&p.Price,
		&p.Stock,
		&p.ImageUrls,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

const deleteProductById = `
DELETE FROM products WHERE id = $1
RETURNING id, name, description, category, brand, price, stock, image_urls, is_active, created_at, updated_at
`

func (q *Queries) DeleteProductById(c context.Context, id uuid.UUID) (Product, error) {
	row := q.db.QueryRow(c, deleteProductById, id)
	var p Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Category,
		&p.Brand,
		&p.Price,
		&p.Stock,
		&p.ImageUrls,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

const findProductById = `
SELECT id, name, description, category, brand, price, stock, image_urls, is_active, created_at, updated_at
FROM products
WHERE id = $1
`

func (q *Queries) FindProductById(c context.Context, id uuid.UUID) (Product, error) {
	row := q.db.QueryRow(c, findProductById, id)
	var p Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Category,
		&p.Brand,
		&p.Price,
		&p.Stock,
		&p.ImageUrls,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

const findProducts = `
SELECT id, name, description, category, brand, price, stock, image_urls, is_active, created_at, updated_at
FROM products
WHERE (is_active OR $7)
  AND ($1 = '' OR category = $1)
  AND ($2::numeric IS NULL OR price >= $2)
  AND ($3::numeric IS NULL OR price <= $3)
  AND ($4 = '' OR name ILIKE '%' || $4 || '%' OR description ILIKE '%' || $4 || '%')
ORDER BY created_at DESC
LIMIT $5 OFFSET $6
`

type FindProductsParams struct {
	Category string
	MinPrice pgtype.Numeric
	MaxPrice pgtype.Numeric
	Search   string
	Limit    int32
	Offset   int32
	// IncludeInactive lifts the is_active filter for the admin listing.
	IncludeInactive bool
}

func (q *Queries) FindProducts(c context.Context, arg FindProductsParams) ([]Product, error) {
	rows, err := q.db.Query(
		c,
		findProducts,
		arg.Category,
		arg.MinPrice,
		arg.MaxPrice,
		arg.Search,
		arg.Limit,
		arg.Offset,
		arg.IncludeInactive,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	products := []Product{}
	for rows.Next() {
		var p Product
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.Category,
			&p.Brand,
			&p.Price,
			&p.Stock,
			&p.ImageUrls,
			&p.IsActive,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

const countProducts = `
SELECT count(*)
FROM products
WHERE (is_active OR $5)
  AND ($1 = '' OR category = $1)
  AND ($2::numeric IS NULL OR price >= $2)
  AND ($3::numeric IS NULL OR price <= $3)
  AND ($4 = '' OR name ILIKE '%' || $4 || '%' OR description ILIKE '%' || $4 || '%')
`

type CountProductsParams struct {
	Category        string
	MinPrice        pgtype.Numeric
	MaxPrice        pgtype.Numeric
	Search          string
	IncludeInactive bool
}

func (q *Queries) CountProducts(c context.Context, arg CountProductsParams) (int64, error) {
	row := q.db.QueryRow(
		c,
		countProducts,
		arg.Category,
		arg.MinPrice,
		arg.MaxPrice,
		arg.Search,
		arg.IncludeInactive,
	)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countProductsByActive = `
SELECT count(*) FROM products WHERE is_active = $1
`

func (q *Queries) CountProductsByActive(c context.Context, isActive bool) (int64, error) {
	row := q.db.QueryRow(c, countProductsByActive, isActive)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countAllProducts = `
SELECT count(*) FROM products
`

func (q *Queries) CountAllProducts(c context.Context) (int64, error) {
	row := q.db.QueryRow(c, countAllProducts)
	var count int64
	err := row.Scan(&count)
	return count, err
}
