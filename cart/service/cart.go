package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alturino/storefront/cart/internal/cache"
	"github.com/Alturino/storefront/cart/internal/otel"
	"github.com/Alturino/storefront/cart/pkg/request"
	"github.com/Alturino/storefront/cart/pkg/response"
	"github.com/Alturino/storefront/internal/config"
	inErrors "github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/log"
	inOtel "github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/repository"
)

type CartService struct {
	pool    *pgxpool.Pool
	queries *repository.Queries
	cache   *redis.Client
	config  config.Application
}

func NewCartService(
	pool *pgxpool.Pool,
	queries *repository.Queries,
	cache *redis.Client,
	config config.Application,
) CartService {
	return CartService{pool: pool, queries: queries, cache: cache, config: config}
}

func (s CartService) GetOrCreateCart(
	c context.Context,
	userId uuid.UUID,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService GetOrCreateCart")
	defer span.End()

	cacheKey := fmt.Sprintf(cache.KEY_CARTS_BY_USER_ID, userId.String())

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService GetOrCreateCart").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding cart in cache").Logger()
	logger.Info().Msg("finding cart in cache")
	jsonCache, err := s.cache.Get(c, cacheKey).Result()
	if err == nil && jsonCache != "" {
		logger.Info().Msg("found cart in cache")

		logger = logger.With().Str(log.KeyProcess, "unmarshaling cache").Logger()
		cart := response.Cart{}
		err = json.Unmarshal([]byte(jsonCache), &cart)
		if err == nil {
			logger.Info().Msg("unmarshaled cache")
			return cart, nil
		}
		err = fmt.Errorf("failed unmarshaling cache with error=%w", err)
		logger.Info().Err(err).Msg(err.Error())
	}

	logger = logger.With().Str(log.KeyProcess, "finding cart in db").Logger()
	logger.Info().Msg("finding cart in db")
	cartRow, err := s.queries.FindCartWithItemsByUserId(c, userId)
	if errors.Is(err, pgx.ErrNoRows) {
		logger = logger.With().Str(log.KeyProcess, "creating empty cart").Logger()
		logger.Info().Msg("cart not found, creating empty cart")
		_, err = s.queries.UpsertCart(c, userId)
		if err != nil {
			err = fmt.Errorf("failed creating cart with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Cart{}, err
		}
		logger.Info().Msg("created empty cart")

		cartRow, err = s.queries.FindCartWithItemsByUserId(c, userId)
	}
	if err != nil {
		err = fmt.Errorf("failed finding cart in db with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("found cart in db")

	logger = logger.With().Str(log.KeyProcess, "mapping cart").Logger()
	cart, err := cartRow.Response()
	if err != nil {
		err = fmt.Errorf("failed mapping cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger = logger.With().Any(log.KeyCartResponse, cart).Logger()
	logger.Info().Msg("mapped cart")

	logger = logger.With().Str(log.KeyProcess, "inserting cart to cache").Logger()
	logger.Info().Msg("inserting cart to cache")
	err = s.insertCartToCache(c, cacheKey, cart)
	if err != nil {
		err = fmt.Errorf("failed inserting cart to cache with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("inserted cart to cache")

	return cart, nil
}

func (s CartService) AddItem(
	c context.Context,
	userId uuid.UUID,
	param request.AddItem,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService AddItem").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyProductID, param.ProductId.String()).
		Int32(log.KeyQuantity, param.Quantity).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "validating quantity").Logger()
	logger.Info().Msg("validating quantity")
	if param.Quantity < 1 {
		err := fmt.Errorf(
			"failed validating quantity=%d with error=%w",
			param.Quantity,
			inErrors.ErrInvalidQuantity,
		)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("validated quantity")

	logger = logger.With().Str(log.KeyProcess, "finding product").Logger()
	logger.Info().Msg("finding product")
	product, err := s.queries.FindProductById(c, param.ProductId)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf(
				"failed finding productId=%s with error=%w",
				param.ProductId.String(),
				inErrors.ErrProductNotFound,
			)
		} else {
			err = fmt.Errorf("failed finding product with error=%w", err)
		}
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger = logger.With().Any(log.KeyProduct, product).Logger()
	logger.Info().Msg("found product")

	logger = logger.With().Str(log.KeyProcess, "checking stock").Logger()
	logger.Info().Msg("checking stock")
	if product.Stock < param.Quantity {
		err = fmt.Errorf(
			"failed adding quantity=%d of productId=%s stock=%d with error=%w",
			param.Quantity,
			param.ProductId.String(),
			product.Stock,
			inErrors.ErrInsufficientStock,
		)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("checked stock")

	logger = logger.With().Str(log.KeyProcess, "initializing transaction").Logger()
	logger.Info().Msg("initializing transaction")
	tx, err := s.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		err = fmt.Errorf("failed initializing transaction with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	defer s.rollback(c, tx, span)
	logger.Info().Msg("initialized transaction")
	qtx := s.queries.WithTx(tx)

	logger = logger.With().Str(log.KeyProcess, "upserting cart").Logger()
	logger.Info().Msg("upserting cart")
	cart, err := qtx.UpsertCart(c, userId)
	if err != nil {
		err = fmt.Errorf("failed upserting cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger = logger.With().Str(log.KeyCartID, cart.ID.String()).Logger()
	logger.Info().Msg("upserted cart")

	logger = logger.With().Str(log.KeyProcess, "merging cart item").Logger()
	logger.Info().Msg("merging cart item")
	item, err := qtx.UpsertCartItem(c, repository.UpsertCartItemParams{
		CartID:    cart.ID,
		ProductID: param.ProductId,
		Quantity:  param.Quantity,
		Price: pgtype.Numeric{
			Exp:              product.Price.Exp,
			InfinityModifier: pgtype.Finite,
			Int:              product.Price.Int,
			NaN:              false,
			Valid:            true,
		},
	})
	if err != nil {
		err = fmt.Errorf("failed merging cart item with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger = logger.With().
		Str(log.KeyCartItemID, item.ID.String()).
		Int32(log.KeyQuantity, item.Quantity).
		Logger()
	logger.Info().Msgf("merged cart item to quantity=%d", item.Quantity)

	cart2, err := s.finishMutation(c, tx, qtx, cart.ID, userId)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	return cart2, nil
}

func (s CartService) UpdateItemQuantity(
	c context.Context,
	userId uuid.UUID,
	cartItemId uuid.UUID,
	param request.UpdateItemQuantity,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService UpdateItemQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService UpdateItemQuantity").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyCartItemID, cartItemId.String()).
		Int32(log.KeyQuantity, param.Quantity).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing transaction").Logger()
	logger.Info().Msg("initializing transaction")
	tx, err := s.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		err = fmt.Errorf("failed initializing transaction with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	defer s.rollback(c, tx, span)
	logger.Info().Msg("initialized transaction")
	qtx := s.queries.WithTx(tx)

	logger = logger.With().Str(log.KeyProcess, "finding cart").Logger()
	logger.Info().Msg("finding cart")
	cart, err := qtx.FindCartByUserIdForUpdate(c, userId)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf(
				"failed finding cart for userId=%s with error=%w",
				userId.String(),
				inErrors.ErrCartNotFound,
			)
		} else {
			err = fmt.Errorf("failed finding cart with error=%w", err)
		}
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger = logger.With().Str(log.KeyCartID, cart.ID.String()).Logger()
	logger.Info().Msg("found cart")

	logger = logger.With().Str(log.KeyProcess, "finding cart item").Logger()
	logger.Info().Msg("finding cart item")
	item, err := qtx.FindCartItemById(
		c,
		repository.FindCartItemByIdParams{ID: cartItemId, CartID: cart.ID},
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf(
				"failed finding cartItemId=%s with error=%w",
				cartItemId.String(),
				inErrors.ErrCartItemNotFound,
			)
		} else {
			err = fmt.Errorf("failed finding cart item with error=%w", err)
		}
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("found cart item")

	if param.Quantity < 1 {
		logger = logger.With().Str(log.KeyProcess, "removing cart item").Logger()
		logger.Info().Msg("quantity below one, removing cart item")
		_, err = qtx.DeleteCartItemById(
			c,
			repository.DeleteCartItemByIdParams{ID: cartItemId, CartID: cart.ID},
		)
		if err != nil {
			err = fmt.Errorf("failed removing cart item with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Cart{}, err
		}
		logger.Info().Msg("removed cart item")
	} else {
		if s.config.EnforceStockOnUpdate {
			logger = logger.With().Str(log.KeyProcess, "checking stock").Logger()
			logger.Info().Msg("checking stock")
			product, err := qtx.FindProductById(c, item.ProductID)
			if err != nil {
				err = fmt.Errorf("failed finding product with error=%w", err)
				inOtel.RecordError(err, span)
				logger.Error().Err(err).Msg(err.Error())
				return response.Cart{}, err
			}
			if product.Stock < param.Quantity {
				err = fmt.Errorf(
					"failed updating quantity=%d of productId=%s stock=%d with error=%w",
					param.Quantity,
					item.ProductID.String(),
					product.Stock,
					inErrors.ErrInsufficientStock,
				)
				inOtel.RecordError(err, span)
				logger.Error().Err(err).Msg(err.Error())
				return response.Cart{}, err
			}
			logger.Info().Msg("checked stock")
		}

		logger = logger.With().Str(log.KeyProcess, "updating cart item quantity").Logger()
		logger.Info().Msg("updating cart item quantity")
		_, err = qtx.UpdateCartItemQuantity(c, repository.UpdateCartItemQuantityParams{
			ID:       cartItemId,
			CartID:   cart.ID,
			Quantity: param.Quantity,
		})
		if err != nil {
			err = fmt.Errorf("failed updating cart item quantity with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Cart{}, err
		}
		logger.Info().Msg("updated cart item quantity")
	}

	cart2, err := s.finishMutation(c, tx, qtx, cart.ID, userId)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	return cart2, nil
}

func (s CartService) RemoveItem(
	c context.Context,
	userId uuid.UUID,
	cartItemId uuid.UUID,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService RemoveItem").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyCartItemID, cartItemId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing transaction").Logger()
	logger.Info().Msg("initializing transaction")
	tx, err := s.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		err = fmt.Errorf("failed initializing transaction with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	defer s.rollback(c, tx, span)
	logger.Info().Msg("initialized transaction")
	qtx := s.queries.WithTx(tx)

	logger = logger.With().Str(log.KeyProcess, "finding cart").Logger()
	logger.Info().Msg("finding cart")
	cart, err := qtx.FindCartByUserIdForUpdate(c, userId)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf(
				"failed finding cart for userId=%s with error=%w",
				userId.String(),
				inErrors.ErrCartNotFound,
			)
		} else {
			err = fmt.Errorf("failed finding cart with error=%w", err)
		}
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger = logger.With().Str(log.KeyCartID, cart.ID.String()).Logger()
	logger.Info().Msg("found cart")

	logger = logger.With().Str(log.KeyProcess, "removing cart item").Logger()
	logger.Info().Msg("removing cart item")
	removed, err := qtx.DeleteCartItemById(
		c,
		repository.DeleteCartItemByIdParams{ID: cartItemId, CartID: cart.ID},
	)
	if err != nil {
		err = fmt.Errorf("failed removing cart item with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	// removing an absent item is a no-op, not a failure
	logger.Info().Msgf("removed %d cart item", removed)

	cart2, err := s.finishMutation(c, tx, qtx, cart.ID, userId)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	return cart2, nil
}

// finishMutation re-derives the stored total from the current line items,
// commits, refreshes the cache and returns the populated cart. Every mutating
// path ends here so the persisted total is never stale relative to the items.
func (s CartService) finishMutation(
	c context.Context,
	tx pgx.Tx,
	qtx *repository.Queries,
	cartId uuid.UUID,
	userId uuid.UUID,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService finishMutation")
	defer span.End()

	cacheKey := fmt.Sprintf(cache.KEY_CARTS_BY_USER_ID, userId.String())

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService finishMutation").
		Str(log.KeyCartID, cartId.String()).
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "recomputing cart total").Logger()
	logger.Info().Msg("recomputing cart total")
	total, err := qtx.RecomputeCartTotal(c, cartId)
	if err != nil {
		return response.Cart{}, fmt.Errorf("failed recomputing cart total with error=%w", err)
	}
	logger = logger.With().
		Str(log.KeyTotal, decimal.NewFromBigInt(total.Int, total.Exp).String()).
		Logger()
	logger.Info().Msg("recomputed cart total")

	logger = logger.With().Str(log.KeyProcess, "finding cart by user id").Logger()
	logger.Info().Msg("finding cart by user id")
	cartRow, err := qtx.FindCartWithItemsByUserId(c, userId)
	if err != nil {
		return response.Cart{}, fmt.Errorf("failed finding cart by user id with error=%w", err)
	}
	logger.Info().Msg("found cart by user id")

	logger = logger.With().Str(log.KeyProcess, "mapping cart").Logger()
	cart, err := cartRow.Response()
	if err != nil {
		return response.Cart{}, fmt.Errorf("failed mapping cart with error=%w", err)
	}
	logger = logger.With().Any(log.KeyCartResponse, cart).Logger()
	logger.Info().Msg("mapped cart")

	logger = logger.With().Str(log.KeyProcess, "committing transaction").Logger()
	logger.Info().Msg("committing transaction")
	err = tx.Commit(c)
	if err != nil {
		return response.Cart{}, fmt.Errorf("failed committing transaction with error=%w", err)
	}
	logger.Info().Msg("committed transaction")

	logger = logger.With().Str(log.KeyProcess, "refreshing cart cache").Logger()
	logger.Info().Msg("refreshing cart cache")
	err = s.insertCartToCache(c, cacheKey, cart)
	if err != nil {
		err = fmt.Errorf("failed refreshing cart cache with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())

		logger = logger.With().Str(log.KeyProcess, "deleting stale cart cache").Logger()
		logger.Info().Msg("deleting stale cart cache")
		if delErr := s.cache.Del(c, cacheKey).Err(); delErr != nil {
			delErr = fmt.Errorf("failed deleting stale cart cache with error=%w", delErr)
			inOtel.RecordError(delErr, span)
			logger.Error().Err(delErr).Msg(delErr.Error())
			return response.Cart{}, errors.Join(err, delErr)
		}
		logger.Info().Msg("deleted stale cart cache")
		return cart, nil
	}
	logger.Info().Msg("refreshed cart cache")

	return cart, nil
}

func (s CartService) insertCartToCache(
	c context.Context,
	cacheKey string,
	cart response.Cart,
) error {
	cartJson, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed marshaling cart with error=%w", err)
	}
	return s.cache.Set(c, cacheKey, cartJson, time.Hour*1).Err()
}

func (s CartService) rollback(c context.Context, tx pgx.Tx, span trace.Span) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService rollback").
		Str(log.KeyProcess, "rolling back transaction").
		Logger()

	err := tx.Rollback(c)
	if err != nil {
		if errors.Is(err, pgx.ErrTxClosed) {
			return
		}
		err = fmt.Errorf("failed rolling back transaction with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("rolled back transaction")
}
