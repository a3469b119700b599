package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	inErrors "github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/log"
	inOtel "github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/repository"
	"github.com/Alturino/storefront/product/internal/cache"
	"github.com/Alturino/storefront/product/internal/otel"
	"github.com/Alturino/storefront/product/pkg/request"
	"github.com/Alturino/storefront/product/pkg/response"
)

type ProductService struct {
	queries *repository.Queries
	cache   *redis.Client
}

func NewProductService(
	queries *repository.Queries,
	cache *redis.Client,
) ProductService {
	return ProductService{queries: queries, cache: cache}
}

func numericFromDecimal(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{
		Exp:              d.Exponent(),
		InfinityModifier: pgtype.Finite,
		Int:              d.Coefficient(),
		NaN:              false,
		Valid:            true,
	}
}

func numericFromOptionalDecimal(d *decimal.Decimal) pgtype.Numeric {
	if d == nil {
		return pgtype.Numeric{}
	}
	return numericFromDecimal(*d)
}

func (svc ProductService) InsertProduct(
	c context.Context,
	param request.Product,
) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService InsertProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService InsertProduct").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "inserting product to database").Logger()
	logger.Info().Msg("inserting product to database")
	product, err := svc.queries.InsertProduct(
		c,
		repository.InsertProductParams{
			Name:        param.Name,
			Description: param.Description,
			Category:    param.Category,
			Brand:       param.Brand,
			Price:       numericFromDecimal(param.Price),
			Stock:       param.Stock,
			ImageUrls:   param.ImageUrls,
		},
	)
	if err != nil {
		err = fmt.Errorf("failed to insert product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger = logger.With().Any(log.KeyProduct, product).Logger()
	logger.Info().Msg("inserted product to database")

	cacheKey := cache.KEY_PRODUCTS + product.ID.String()
	logger = logger.With().
		Str(log.KeyProcess, "inserting product to cache").
		Str(log.KeyCacheKey, cacheKey).
		Logger()
	logger.Info().Msg("inserting product to cache")
	err = svc.cache.JSONSet(c, cacheKey, "$", product.Response()).Err()
	if err != nil {
		err = fmt.Errorf("failed to inserting product to cache with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger.Info().Msg("inserted product to cache")

	return product.Response(), nil
}

// FindProducts lists the public catalog: inactive products are hidden.
func (svc ProductService) FindProducts(
	c context.Context,
	param request.FindProducts,
) (response.ProductPage, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindProducts")
	defer span.End()
	return svc.findProducts(c, param, false)
}

// FindAllProducts lists the whole catalog including inactive products, so an
// admin can still reach a product after deactivating it.
func (svc ProductService) FindAllProducts(
	c context.Context,
	param request.FindProducts,
) (response.ProductPage, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindAllProducts")
	defer span.End()
	return svc.findProducts(c, param, true)
}

func (svc ProductService) findProducts(
	c context.Context,
	param request.FindProducts,
	includeInactive bool,
) (response.ProductPage, error) {
	c, span := otel.Tracer.Start(c, "ProductService findProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService findProducts").
		Logger()

	page := param.Page
	if page < 1 {
		page = 1
	}
	limit := param.Limit
	if limit < 1 {
		limit = 10
	}

	logger = logger.With().Str(log.KeyProcess, "finding products in database").Logger()
	logger.Info().Msg("finding products in database")
	products, err := svc.queries.FindProducts(c, repository.FindProductsParams{
		Category:        param.Category,
		MinPrice:        numericFromOptionalDecimal(param.MinPrice),
		MaxPrice:        numericFromOptionalDecimal(param.MaxPrice),
		Search:          param.Search,
		Limit:           limit,
		Offset:          (page - 1) * limit,
		IncludeInactive: includeInactive,
	})
	if err != nil {
		err = fmt.Errorf("failed to find products in database with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.ProductPage{}, err
	}
	logger.Info().Msgf("found %d products in database", len(products))

	logger = logger.With().Str(log.KeyProcess, "counting products").Logger()
	logger.Info().Msg("counting products")
	total, err := svc.queries.CountProducts(c, repository.CountProductsParams{
		Category:        param.Category,
		MinPrice:        numericFromOptionalDecimal(param.MinPrice),
		MaxPrice:        numericFromOptionalDecimal(param.MaxPrice),
		Search:          param.Search,
		IncludeInactive: includeInactive,
	})
	if err != nil {
		err = fmt.Errorf("failed to count products with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.ProductPage{}, err
	}
	logger.Info().Msgf("counted %d products", total)

	mapped := make([]response.Product, len(products))
	for i, p := range products {
		mapped[i] = p.Response()
	}
	totalPages := total / int64(limit)
	if total%int64(limit) != 0 {
		totalPages++
	}

	return response.ProductPage{
		Products:    mapped,
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: page,
	}, nil
}

func (svc ProductService) FindProductById(
	c context.Context,
	id uuid.UUID,
) (product response.Product, err error) {
	c, span := otel.Tracer.Start(c, "ProductService FindProductById")
	defer span.End()

	cacheKey := cache.KEY_PRODUCTS + id.String()
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService FindProductById").
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product in cache").Logger()
	logger.Trace().Msg("finding product in cache")
	jsonCache, err := svc.cache.JSONGet(c, cacheKey).Result()
	if err != nil || jsonCache == "" {
		logger.Info().Msg("product not found in cache")

		logger = logger.With().Str(log.KeyProcess, "finding product in database").Logger()
		logger.Info().Msg("finding product in database")
		productDb, err := svc.queries.FindProductById(c, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				err = fmt.Errorf(
					"failed finding productId=%s with error=%w",
					id.String(),
					inErrors.ErrProductNotFound,
				)
			} else {
				err = fmt.Errorf("failed to find product in database with error=%w", err)
			}
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Product{}, err
		}
		if !productDb.IsActive {
			err = fmt.Errorf(
				"productId=%s is inactive with error=%w",
				id.String(),
				inErrors.ErrProductNotFound,
			)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Product{}, err
		}
		logger = logger.With().Any(log.KeyProduct, productDb).Logger()
		logger.Info().Msg("found product in database")

		logger = logger.With().Str(log.KeyProcess, "inserting product to cache").Logger()
		logger.Info().Msg("inserting product to cache")
		err = svc.cache.JSONSet(c, cacheKey, "$", productDb.Response()).Err()
		if err != nil {
			err = fmt.Errorf("failed inserting product to cache with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Product{}, err
		}
		logger.Info().Msg("inserted product to cache")

		return productDb.Response(), nil
	}
	logger = logger.With().Str(log.KeyJsonCache, jsonCache).Logger()
	logger.Debug().Msg("found product in cache")

	logger = logger.With().Str(log.KeyProcess, "unmarshaling product from cache").Logger()
	err = json.Unmarshal([]byte(jsonCache), &product)
	if err != nil {
		err = fmt.Errorf("failed to unmarshal jsonCache with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger.Info().Msg("found product in cache")

	return product, nil
}

func (svc ProductService) UpdateProduct(
	c context.Context,
	id uuid.UUID,
	param request.UpdateProduct,
) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService UpdateProduct")
	defer span.End()

	cacheKey := cache.KEY_PRODUCTS + id.String()
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService UpdateProduct").
		Str(log.KeyProductID, id.String()).
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "updating product in database").Logger()
	logger.Info().Msg("updating product in database")
	product, err := svc.queries.UpdateProduct(c, repository.UpdateProductParams{
		ID:          id,
		Name:        param.Name,
		Description: param.Description,
		Category:    param.Category,
		Brand:       param.Brand,
		Price:       numericFromOptionalDecimal(param.Price),
		Stock:       param.Stock,
		ImageUrls:   param.ImageUrls,
		IsActive:    param.IsActive,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf(
				"failed updating productId=%s with error=%w",
				id.String(),
				inErrors.ErrProductNotFound,
			)
		} else {
			err = fmt.Errorf("failed updating product with error=%w", err)
		}
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger = logger.With().Any(log.KeyProduct, product).Logger()
	logger.Info().Msg("updated product in database")

	logger = logger.With().Str(log.KeyProcess, "refreshing product cache").Logger()
	logger.Info().Msg("refreshing product cache")
	err = svc.cache.JSONSet(c, cacheKey, "$", product.Response()).Err()
	if err != nil {
		err = fmt.Errorf("failed refreshing product cache with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger.Info().Msg("refreshed product cache")

	return product.Response(), nil
}

func (svc ProductService) DeleteProduct(
	c context.Context,
	id uuid.UUID,
) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService DeleteProduct")
	defer span.End()

	cacheKey := cache.KEY_PRODUCTS + id.String()
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService DeleteProduct").
		Str(log.KeyProductID, id.String()).
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "deleting product from database").Logger()
	logger.Info().Msg("deleting product from database")
	product, err := svc.queries.DeleteProductById(c, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf(
				"failed deleting productId=%s with error=%w",
				id.String(),
				inErrors.ErrProductNotFound,
			)
		} else if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			err = fmt.Errorf(
				"failed deleting productId=%s with error=%w",
				id.String(),
				inErrors.ErrProductInCart,
			)
		} else {
			err = fmt.Errorf("failed deleting product with error=%w", err)
		}
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger.Info().Msg("deleted product from database")

	logger = logger.With().Str(log.KeyProcess, "deleting product from cache").Logger()
	logger.Info().Msg("deleting product from cache")
	err = svc.cache.JSONDel(c, cacheKey, "$").Err()
	if err != nil {
		err = fmt.Errorf("failed deleting product from cache with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger.Info().Msg("deleted product from cache")

	return product.Response(), nil
}
