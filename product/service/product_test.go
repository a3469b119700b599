package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/product/pkg/request"
	"github.com/Alturino/storefront/product/pkg/response"
)

var (
	laptopId      = uuid.MustParse("5b7a3f1e-9d42-4c18-8a6f-2e0b1c9d7f30")
	phoneId       = uuid.MustParse("8c1d4e2a-6f35-47b9-b0d8-3a9e5c2f1b64")
	hammerId      = uuid.MustParse("1f9b6d3c-2a58-4e07-9c41-7d0e8b5a3f92")
	screwdriverId = uuid.MustParse("4a2c8e5f-7b13-4d69-a58e-0c6f9d1b2e47")
	lampId        = uuid.MustParse("9e5f1a7b-3c26-48d4-b7a0-5d8c2e6f0b13")
)

func testContext() context.Context {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339Nano}).
		WithContext(context.Background())
}

func productNames(page response.ProductPage) []string {
	names := make([]string, len(page.Products))
	for i, p := range page.Products {
		names[i] = p.Name
	}
	return names
}

func TestFindProductsPagination(t *testing.T) {
	c := testContext()
	redisClient, pool, pgContainer, redisContainer, _, productService := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	first, err := productService.FindProducts(c, request.FindProducts{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"Laptop", "Phone"}, productNames(first), "newest products come first")
	require.Len(t, first.Products, 2)
	assert.Equal(t, laptopId, first.Products[0].ID)
	assert.Equal(t, phoneId, first.Products[1].ID)
	assert.EqualValues(t, 4, first.Total)
	assert.EqualValues(t, 2, first.TotalPages)
	assert.EqualValues(t, 1, first.CurrentPage)

	second, err := productService.FindProducts(c, request.FindProducts{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hammer", "Screwdriver"}, productNames(second))
	assert.EqualValues(t, 2, second.CurrentPage)
}

func TestFindProductsByCategory(t *testing.T) {
	c := testContext()
	redisClient, pool, pgContainer, redisContainer, _, productService := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	page, err := productService.FindProducts(
		c,
		request.FindProducts{Category: "tools", Page: 1, Limit: 10},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hammer", "Screwdriver"}, productNames(page))
	assert.EqualValues(t, 2, page.Total)

	empty, err := productService.FindProducts(
		c,
		request.FindProducts{Category: "groceries", Page: 1, Limit: 10},
	)
	require.NoError(t, err)
	assert.Empty(t, empty.Products)
	assert.Zero(t, empty.Total)
}

func TestFindProductsByPriceRange(t *testing.T) {
	c := testContext()
	redisClient, pool, pgContainer, redisContainer, _, productService := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	minPrice := decimal.RequireFromString("10.00")
	maxPrice := decimal.RequireFromString("100.00")
	page, err := productService.FindProducts(
		c,
		request.FindProducts{MinPrice: &minPrice, MaxPrice: &maxPrice, Page: 1, Limit: 10},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hammer"}, productNames(page))

	cheap, err := productService.FindProducts(
		c,
		request.FindProducts{MaxPrice: &minPrice, Page: 1, Limit: 10},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"Screwdriver"}, productNames(cheap))
}

func TestFindProductsSearch(t *testing.T) {
	c := testContext()
	redisClient, pool, pgContainer, redisContainer, _, productService := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	byName, err := productService.FindProducts(
		c,
		request.FindProducts{Search: "screw", Page: 1, Limit: 10},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"Screwdriver"}, productNames(byName))

	byDescription, err := productService.FindProducts(
		c,
		request.FindProducts{Search: "smartphone", Page: 1, Limit: 10},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"Phone"}, productNames(byDescription), "search should also match descriptions")
}

func TestFindProductsHidesInactive(t *testing.T) {
	c := testContext()
	redisClient, pool, pgContainer, redisContainer, _, productService := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	page, err := productService.FindProducts(c, request.FindProducts{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 4, page.Total)
	assert.NotContains(t, productNames(page), "Vintage Lamp")
}

func TestFindAllProductsIncludesInactive(t *testing.T) {
	c := testContext()
	redisClient, pool, pgContainer, redisContainer, _, productService := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	page, err := productService.FindAllProducts(c, request.FindProducts{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 5, page.Total)
	assert.Contains(t, productNames(page), "Vintage Lamp")

	minPrice := decimal.RequireFromString("10.00")
	maxPrice := decimal.RequireFromString("100.00")
	filtered, err := productService.FindAllProducts(
		c,
		request.FindProducts{MinPrice: &minPrice, MaxPrice: &maxPrice, Page: 1, Limit: 10},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hammer", "Vintage Lamp"}, productNames(filtered))
}

func TestFindProductByIdInactive(t *testing.T) {
	c := testContext()
	redisClient, pool, pgContainer, redisContainer, _, productService := setup(t)(c)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	_, err := productService.FindProductById(c, lampId)
	assert.ErrorIs(t, err, errors.ErrProductNotFound, "inactive products are hidden from the catalog")

	product, err := productService.FindProductById(c, hammerId)
	require.NoError(t, err)
	assert.Equal(t, "Hammer", product.Name)
}

func TestDeleteProductReferencedByCart(t *testing.T) {
	c := testContext()
	redisClient, pool, pgContainer, redisContainer, queries, productService := setup(t)(
		c,
		filepath.Join("seed", "users.seed.sql"),
		filepath.Join("seed", "carts.seed.sql"),
	)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	_, err := productService.DeleteProduct(c, hammerId)
	assert.ErrorIs(t, err, errors.ErrProductInCart)

	product, err := queries.FindProductById(c, hammerId)
	require.NoError(t, err)
	assert.Equal(t, "Hammer", product.Name, "failed delete should leave the product in place")

	_, err = productService.DeleteProduct(c, screwdriverId)
	require.NoError(t, err, "a product no cart references can be deleted")

	_, err = productService.FindProductById(c, screwdriverId)
	assert.ErrorIs(t, err, errors.ErrProductNotFound)
}
