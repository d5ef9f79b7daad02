package postgres

import (
	"context"
	"fmt"

	"github.com/XSAM/otelsql"
	"github.com/alimikegami/pos-microservices/catalog-federation/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

func DSN(conf config.PostgreSQLConfig) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		conf.DBHost, conf.DBPort, conf.DBUsername, conf.DBPassword, conf.DBName)
}

// Open connects a traced, pool-limited handle and verifies it with a ping.
func Open(ctx context.Context, conf config.PostgreSQLConfig) (*sqlx.DB, error) {
	sqlDB, err := otelsql.Open("postgres", DSN(conf),
		otelsql.WithAttributes(
			semconv.DBSystemPostgreSQL,
			semconv.DBNameKey.String(conf.DBName),
		),
		otelsql.WithSpanOptions(otelsql.SpanOptions{
			DisableQuery: true,
		}),
	)
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(conf.MaxOpenConns)
	sqlDB.SetMaxIdleConns(conf.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(conf.ConnMaxLifetime)

	db := sqlx.NewDb(sqlDB, "postgres")
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	log.Info().Str("component", "postgres.Open").Str("db", conf.DBName).Int("max_open_conns", conf.MaxOpenConns).Msg("connected")

	return db, nil
}
