package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/admin/internal/otel"
	"github.com/Alturino/storefront/admin/pkg/response"
	"github.com/Alturino/storefront/internal/common"
	"github.com/Alturino/storefront/internal/log"
	inOtel "github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/repository"
	userResponse "github.com/Alturino/storefront/user/pkg/response"
)

type AdminService struct {
	queries *repository.Queries
}

func NewAdminService(queries *repository.Queries) *AdminService {
	return &AdminService{queries: queries}
}

func (a *AdminService) DashboardStats(c context.Context) (response.DashboardStats, error) {
	c, span := otel.Tracer.Start(c, "AdminService DashboardStats")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AdminService DashboardStats").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "counting products").Logger()
	logger.Info().Msg("counting all products")
	totalProducts, err := a.queries.CountAllProducts(c)
	if err != nil {
		err = fmt.Errorf("failed counting all products with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.DashboardStats{}, err
	}
	logger.Info().Msgf("counted all products=%d", totalProducts)

	logger.Info().Msg("counting active products")
	activeProducts, err := a.queries.CountProductsByActive(c, true)
	if err != nil {
		err = fmt.Errorf("failed counting active products with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.DashboardStats{}, err
	}
	logger.Info().Msgf("counted active products=%d", activeProducts)

	logger.Info().Msg("counting inactive products")
	inactiveProducts, err := a.queries.CountProductsByActive(c, false)
	if err != nil {
		err = fmt.Errorf("failed counting inactive products with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.DashboardStats{}, err
	}
	logger.Info().Msgf("counted inactive products=%d", inactiveProducts)

	logger = logger.With().Str(log.KeyProcess, "counting customers").Logger()
	logger.Info().Msg("counting customers")
	totalCustomers, err := a.queries.CountUsersByRole(c, common.RoleCustomer)
	if err != nil {
		err = fmt.Errorf("failed counting customers with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.DashboardStats{}, err
	}
	logger.Info().Msgf("counted customers=%d", totalCustomers)

	return response.DashboardStats{
		TotalProducts:    totalProducts,
		ActiveProducts:   activeProducts,
		InactiveProducts: inactiveProducts,
		TotalCustomers:   totalCustomers,
	}, nil
}

func (a *AdminService) ListCustomers(c context.Context) ([]userResponse.User, error) {
	c, span := otel.Tracer.Start(c, "AdminService ListCustomers")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AdminService ListCustomers").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding customers").Logger()
	logger.Info().Msg("finding customers")
	users, err := a.queries.FindUsersByRole(c, common.RoleCustomer)
	if err != nil {
		err = fmt.Errorf("failed finding customers with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msgf("found customers=%d", len(users))

	customers := make([]userResponse.User, 0, len(users))
	for _, user := range users {
		customers = append(customers, user.Response())
	}

	return customers, nil
}
