package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/Alturino/storefront/internal/common"
	"github.com/Alturino/storefront/internal/config"
	"github.com/Alturino/storefront/internal/infra"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/repository"
)

func RunCreateAdmin(c context.Context, email, name, password string) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyAppName, common.AppName).
		Str(log.KeyTag, "main RunCreateAdmin").
		Str(log.KeyEmail, email).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "init config").Logger()
	logger.Info().Msg("initializing config")
	c = logger.WithContext(c)
	cfg := config.InitConfig(c, common.AppName)
	logger.Info().Msg("initialized config")

	logger = logger.With().Str(log.KeyProcess, "initializing database").Logger()
	logger.Info().Msg("initializing database")
	c = logger.WithContext(c)
	db := infra.NewDatabaseClient(c, cfg.Database)
	defer db.Close()
	logger.Info().Msg("initialized database")

	queries := repository.New(db)

	logger = logger.With().Str(log.KeyProcess, "checking email").Logger()
	logger.Info().Msg("checking email is not registered")
	_, err := queries.FindUserByEmail(c, email)
	if err == nil {
		logger.Fatal().Msgf("email=%s is already registered", email)
		return
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		err = fmt.Errorf("failed checking email with error=%w", err)
		logger.Fatal().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("email is not registered")

	logger = logger.With().Str(log.KeyProcess, "hashing password").Logger()
	logger.Info().Msg("hashing password")
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		err = fmt.Errorf("failed hashing password with error=%w", err)
		logger.Fatal().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("hashed password")

	logger = logger.With().Str(log.KeyProcess, "inserting admin").Logger()
	logger.Info().Msg("inserting admin user")
	user, err := queries.InsertUser(c, repository.InsertUserParams{
		Email:    email,
		Name:     name,
		Password: string(hashed),
		Role:     common.RoleAdmin,
	})
	if err != nil {
		err = fmt.Errorf("failed inserting admin user with error=%w", err)
		logger.Fatal().Err(err).Msg(err.Error())
		return
	}
	logger.Info().
		Str(log.KeyUserID, user.ID.String()).
		Msgf("created admin user with userId=%s", user.ID.String())
}
