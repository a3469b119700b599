package infra

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/exaring/otelpgx"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	pgxUUID "github.com/vgarvardt/pgx-google-uuid/v5"

	"github.com/Alturino/storefront/internal/config"
	"github.com/Alturino/storefront/internal/log"
)

var (
	dbOnce sync.Once
	pool   *pgxpool.Pool
)

func NewDatabaseClient(c context.Context, dbConfig config.Database) *pgxpool.Pool {
	dbOnce.Do(func() {
		logger := zerolog.Ctx(c).
			With().
			Str(log.KeyTag, "main NewDatabaseClient").
			Logger()

		logger = logger.With().Str(log.KeyProcess, "initializing postgresUrl").Logger()
		logger.Info().Msg("initializing postgresUrl")
		postgresUrl := fmt.Sprintf(
			"postgres://%s:%s@%s:%d/%s?sslmode=disable",
			dbConfig.Username,
			dbConfig.Password,
			dbConfig.Host,
			int(dbConfig.Port),
			dbConfig.Name,
		)
		logger.Info().Msg("initialized postgresUrl")

		logger = logger.With().Str(log.KeyProcess, "running migrations").Logger()
		logger.Info().Msg("running migrations")
		migration, err := migrate.New(dbConfig.MigrationPath, postgresUrl)
		if err != nil {
			err = fmt.Errorf("failed initializing migration with error=%w", err)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		if err = migration.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			err = fmt.Errorf("failed running migration with error=%w", err)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		logger.Info().Msg("ran migrations")

		logger = logger.With().Str(log.KeyProcess, "parsing pool config").Logger()
		logger.Info().Msg("parsing pool config")
		poolConfig, err := pgxpool.ParseConfig(postgresUrl)
		if err != nil {
			err = fmt.Errorf("failed parsing pool config with error=%w", err)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		poolConfig.MaxConns = int32(dbConfig.MaxConnections)
		poolConfig.MinConns = int32(dbConfig.MinConnections)
		poolConfig.ConnConfig.Tracer = otelpgx.NewTracer()
		poolConfig.AfterConnect = func(c context.Context, conn *pgx.Conn) error {
			pgxUUID.Register(conn.TypeMap())
			return nil
		}
		logger.Info().Msg("parsed pool config")

		logger = logger.With().Str(log.KeyProcess, "connecting to database").Logger()
		logger.Info().Msg("connecting to database")
		pool, err = pgxpool.NewWithConfig(c, poolConfig)
		if err != nil {
			err = fmt.Errorf("failed connecting to database with error=%w", err)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		if err = pool.Ping(c); err != nil {
			err = fmt.Errorf("failed pinging database with error=%w", err)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		logger.Info().Msg("connected to database")
	})
	return pool
}
