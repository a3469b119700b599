package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/storefront/cart/internal/cache"
	"github.com/Alturino/storefront/cart/pkg/request"
	"github.com/Alturino/storefront/cart/pkg/response"
	"github.com/Alturino/storefront/internal/config"
	"github.com/Alturino/storefront/internal/errors"
)

var (
	customerId      = uuid.MustParse("964a4d1c-4cf5-4061-8899-f4c1a94f0f27")
	otherCustomerId = uuid.MustParse("0b9ff06e-6c57-4f66-a0e4-b22ecba86dcb")
	widgetId        = uuid.MustParse("0d9f5f36-0c0e-4f39-9ad1-1f3f1c9b7a01")
	gadgetId        = uuid.MustParse("7c6cbd43-2b8b-4f1e-a3fd-0b62be4b9f3e")
)

func testContext() context.Context {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339Nano}).
		WithContext(context.Background())
}

func assertTotalMatchesItems(t *testing.T, cart response.Cart) {
	t.Helper()
	assert.True(
		t,
		cart.Total.Equal(response.ItemTotal(cart.CartItems)),
		"cart total=%s should equal the sum of its items=%s",
		cart.Total,
		response.ItemTotal(cart.CartItems),
	)
}

func TestGetOrCreateCartIdempotent(t *testing.T) {
	c := testContext()
	redisClient, pool, pgContainer, redisContainer, _, cartService := setup(t)(
		c,
		config.Application{},
		filepath.Join("seed", "products.seed.sql"),
	)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	first, err := cartService.GetOrCreateCart(c, customerId)
	require.NoError(t, err)
	assert.Equal(t, customerId, first.UserID)
	assert.Empty(t, first.CartItems, "new cart should have no items")
	assert.True(t, first.Total.IsZero(), "new cart total should be zero")

	second, err := cartService.GetOrCreateCart(c, customerId)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "repeated calls should return the same cart")

	other, err := cartService.GetOrCreateCart(c, otherCustomerId)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID, "each user should get their own cart")
}

func TestAddItemMergesSameProduct(t *testing.T) {
	c := testContext()
	redisClient, pool, pgContainer, redisContainer, _, cartService := setup(t)(
		c,
		config.Application{},
		filepath.Join("seed", "products.seed.sql"),
	)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	cart, err := cartService.AddItem(c, customerId, request.AddItem{ProductId: widgetId, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, cart.CartItems, 1)
	assert.EqualValues(t, 2, cart.CartItems[0].Quantity)

	cart, err = cartService.AddItem(c, customerId, request.AddItem{ProductId: widgetId, Quantity: 3})
	require.NoError(t, err)
	require.Len(t, cart.CartItems, 1, "same product should merge into one line item")
	assert.EqualValues(t, 5, cart.CartItems[0].Quantity)
	assert.True(t, cart.CartItems[0].Price.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, cart.Total.Equal(decimal.RequireFromString("50.00")))
	assertTotalMatchesItems(t, cart)
}

func TestAddItemInvalidQuantity(t *testing.T) {
	c := testContext()
	redisClient, pool, pgContainer, redisContainer, _, cartService := setup(t)(
		c,
		config.Application{},
		filepath.Join("seed", "products.seed.sql"),
	)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	_, err := cartService.AddItem(c, customerId, request.AddItem{ProductId: widgetId, Quantity: 0})
	assert.ErrorIs(t, err, errors.ErrInvalidQuantity)

	_, err = cartService.AddItem(c, customerId, request.AddItem{ProductId: widgetId, Quantity: -3})
	assert.ErrorIs(t, err, errors.ErrInvalidQuantity)
}

func TestAddItemProductNotFound(t *testing.T) {
	c := testContext()
	redisClient, pool, pgContainer, redisContainer, _, cartService := setup(t)(
		c,
		config.Application{},
		filepath.Join("seed", "products.seed.sql"),
	)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	_, err := cartService.AddItem(
		c,
		customerId,
		request.AddItem{ProductId: uuid.New(), Quantity: 1},
	)
	assert.ErrorIs(t, err, errors.ErrProductNotFound)
}

func TestAddItemInsufficientStock(t *testing.T) {
	c := testContext()
	redisClient, pool, pgContainer, redisContainer, _, cartService := setup(t)(
		c,
		config.Application{},
		filepath.Join("seed", "products.seed.sql"),
	)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	_, err := cartService.AddItem(c, customerId, request.AddItem{ProductId: widgetId, Quantity: 6})
	assert.ErrorIs(t, err, errors.ErrInsufficientStock)

	cart, err := cartService.GetOrCreateCart(c, customerId)
	require.NoError(t, err)
	assert.Empty(t, cart.CartItems, "rejected add should leave the cart unchanged")
	assert.True(t, cart.Total.IsZero())
}

func TestUpdateItemQuantity(t *testing.T) {
	c := testContext()
	redisClient, pool, pgContainer, redisContainer, _, cartService := setup(t)(
		c,
		config.Application{},
		filepath.Join("seed", "products.seed.sql"),
	)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	cart, err := cartService.AddItem(c, customerId, request.AddItem{ProductId: gadgetId, Quantity: 4})
	require.NoError(t, err)
	require.Len(t, cart.CartItems, 1)
	cartItemId := cart.CartItems[0].ID

	cart, err = cartService.UpdateItemQuantity(
		c,
		customerId,
		cartItemId,
		request.UpdateItemQuantity{Quantity: 7},
	)
	require.NoError(t, err)
	require.Len(t, cart.CartItems, 1)
	assert.EqualValues(t, 7, cart.CartItems[0].Quantity)
	assert.True(t, cart.Total.Equal(decimal.RequireFromString("17.50")))
	assertTotalMatchesItems(t, cart)

	cart, err = cartService.UpdateItemQuantity(
		c,
		customerId,
		cartItemId,
		request.UpdateItemQuantity{Quantity: 0},
	)
	require.NoError(t, err)
	assert.Empty(t, cart.CartItems, "updating quantity to zero should remove the item")
	assert.True(t, cart.Total.IsZero())
}

func TestUpdateItemQuantityUnknownItem(t *testing.T) {
	c := testContext()
	redisClient, pool, pgContainer, redisContainer, _, cartService := setup(t)(
		c,
		config.Application{},
		filepath.Join("seed", "products.seed.sql"),
	)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	_, err := cartService.UpdateItemQuantity(
		c,
		customerId,
		uuid.New(),
		request.UpdateItemQuantity{Quantity: 1},
	)
	assert.ErrorIs(t, err, errors.ErrCartNotFound, "user without a cart has nothing to update")

	_, err = cartService.GetOrCreateCart(c, customerId)
	require.NoError(t, err)

	_, err = cartService.UpdateItemQuantity(
		c,
		customerId,
		uuid.New(),
		request.UpdateItemQuantity{Quantity: 1},
	)
	assert.ErrorIs(t, err, errors.ErrCartItemNotFound)
}

func TestUpdateItemQuantityEnforceStock(t *testing.T) {
	c := testContext()
	redisClient, pool, pgContainer, redisContainer, _, cartService := setup(t)(
		c,
		config.Application{EnforceStockOnUpdate: true},
		filepath.Join("seed", "products.seed.sql"),
	)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	cart, err := cartService.AddItem(c, customerId, request.AddItem{ProductId: widgetId, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, cart.CartItems, 1)
	cartItemId := cart.CartItems[0].ID

	_, err = cartService.UpdateItemQuantity(
		c,
		customerId,
		cartItemId,
		request.UpdateItemQuantity{Quantity: 6},
	)
	assert.ErrorIs(t, err, errors.ErrInsufficientStock)

	cart, err = cartService.GetOrCreateCart(c, customerId)
	require.NoError(t, err)
	require.Len(t, cart.CartItems, 1)
	assert.EqualValues(t, 2, cart.CartItems[0].Quantity, "rejected update should leave the item unchanged")
}

func TestRemoveItemIdempotent(t *testing.T) {
	c := testContext()
	redisClient, pool, pgContainer, redisContainer, _, cartService := setup(t)(
		c,
		config.Application{},
		filepath.Join("seed", "products.seed.sql"),
	)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	cart, err := cartService.AddItem(c, customerId, request.AddItem{ProductId: gadgetId, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, cart.CartItems, 1)
	cartItemId := cart.CartItems[0].ID

	cart, err = cartService.RemoveItem(c, customerId, cartItemId)
	require.NoError(t, err)
	assert.Empty(t, cart.CartItems)
	assert.True(t, cart.Total.IsZero())

	cart, err = cartService.RemoveItem(c, customerId, cartItemId)
	require.NoError(t, err, "removing an already removed item should not fail")
	assert.Empty(t, cart.CartItems)
	assert.True(t, cart.Total.IsZero())
}

func TestAddItemCacheRefreshFailureFallsBackToDelete(t *testing.T) {
	c := testContext()
	redisClient, pool, pgContainer, redisContainer, _, cartService := setup(t)(
		c,
		config.Application{},
		filepath.Join("seed", "products.seed.sql"),
	)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	// With maxmemory below the baseline usage and the default noeviction
	// policy, writes are rejected with OOM while DEL still goes through.
	require.NoError(t, redisClient.ConfigSet(c, "maxmemory", "1").Err())

	logBuffer := &bytes.Buffer{}
	c = zerolog.New(logBuffer).WithContext(c)

	cart, err := cartService.AddItem(c, customerId, request.AddItem{ProductId: widgetId, Quantity: 2})
	require.NoError(t, err, "cache refresh failure should not fail the mutation")
	require.Len(t, cart.CartItems, 1)
	assert.True(t, cart.Total.Equal(decimal.RequireFromString("20.00")))

	logs := logBuffer.String()
	assert.Contains(t, logs, "deleted stale cart cache")
	assert.NotContains(
		t,
		logs,
		"refreshed cart cache",
		"a failed refresh should not be reported as refreshed",
	)

	cacheKey := fmt.Sprintf(cache.KEY_CARTS_BY_USER_ID, customerId.String())
	err = redisClient.Get(c, cacheKey).Err()
	assert.ErrorIs(t, err, redis.Nil, "stale cart cache should be gone")
}

func TestCartLifecycle(t *testing.T) {
	c := testContext()
	redisClient, pool, pgContainer, redisContainer, _, cartService := setup(t)(
		c,
		config.Application{},
		filepath.Join("seed", "products.seed.sql"),
	)
	defer teardown(t)(redisClient, pool, pgContainer, redisContainer)

	cart, err := cartService.AddItem(c, customerId, request.AddItem{ProductId: widgetId, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, cart.CartItems, 1)
	assert.EqualValues(t, 2, cart.CartItems[0].Quantity)
	assert.True(t, cart.Total.Equal(decimal.RequireFromString("20.00")))
	assertTotalMatchesItems(t, cart)
	cartItemId := cart.CartItems[0].ID

	cart, err = cartService.AddItem(c, customerId, request.AddItem{ProductId: widgetId, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, cart.CartItems, 1)
	assert.Equal(t, cartItemId, cart.CartItems[0].ID, "merged line item should keep its id")
	assert.EqualValues(t, 3, cart.CartItems[0].Quantity)
	assert.True(t, cart.Total.Equal(decimal.RequireFromString("30.00")))
	assertTotalMatchesItems(t, cart)

	cart, err = cartService.UpdateItemQuantity(
		c,
		customerId,
		cartItemId,
		request.UpdateItemQuantity{Quantity: 1},
	)
	require.NoError(t, err)
	require.Len(t, cart.CartItems, 1)
	assert.EqualValues(t, 1, cart.CartItems[0].Quantity)
	assert.True(t, cart.Total.Equal(decimal.RequireFromString("10.00")))
	assertTotalMatchesItems(t, cart)

	cart, err = cartService.RemoveItem(c, customerId, cartItemId)
	require.NoError(t, err)
	assert.Empty(t, cart.CartItems)
	assert.True(t, cart.Total.IsZero())
}
