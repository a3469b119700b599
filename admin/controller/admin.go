package controller

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/admin/internal/otel"
	"github.com/Alturino/storefront/admin/service"
	inHttp "github.com/Alturino/storefront/internal/http"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/middleware"
	inOtel "github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/repository"
)

type AdminController struct {
	service *service.AdminService
}

func AttachAdminController(
	router *mux.Router,
	service *service.AdminService,
	queries *repository.Queries,
) {
	controller := AdminController{service: service}

	r := router.PathPrefix("/admin").Subrouter()
	r.Use(middleware.Auth, middleware.AdminOnly(queries))
	r.HandleFunc("/stats", controller.DashboardStats).Methods(http.MethodGet)
	r.HandleFunc("/users", controller.ListCustomers).Methods(http.MethodGet)
}

func (a AdminController) DashboardStats(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "AdminController DashboardStats")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AdminController DashboardStats").
		Str(log.KeyProcess, "getting dashboard stats").
		Logger()

	logger.Info().Msg("getting dashboard stats")
	c = logger.WithContext(c)
	stats, err := a.service.DashboardStats(c)
	if err != nil {
		err = fmt.Errorf("failed getting dashboard stats with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("got dashboard stats")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "dashboard stats found",
		"data": map[string]interface{}{
			"stats": stats,
		},
	})
}

func (a AdminController) ListCustomers(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "AdminController ListCustomers")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AdminController ListCustomers").
		Str(log.KeyProcess, "listing customers").
		Logger()

	logger.Info().Msg("listing customers")
	c = logger.WithContext(c)
	customers, err := a.service.ListCustomers(c)
	if err != nil {
		err = fmt.Errorf("failed listing customers with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    err.Error(),
		})
		return
	}
	logger.Info().Msg("listed customers")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "customers found",
		"data": map[string]interface{}{
			"users": customers,
		},
	})
}
