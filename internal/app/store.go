package app

import (
	"context"
	"fmt"

	"github.com/alimikegami/pos-microservices/catalog-federation/config"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/infrastructure/database/postgres"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/repository"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/repository/memory"
	"github.com/jmoiron/sqlx"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// OpenStore returns the store selected by DB_DRIVER. Postgres is migrated to
// schema before use; the returned DB is nil for the in-memory store.
func OpenStore(ctx context.Context, conf config.PostgreSQLConfig, schema repository.Schema, inMemory func() *memory.Store) (repository.Store, *sqlx.DB, error) {
	switch conf.Driver {
	case DriverMemory:
		return inMemory(), nil, nil
	case DriverPostgres, "":
		db, err := postgres.Open(ctx, conf)
		if err != nil {
			return nil, nil, err
		}
		if err := repository.Migrate(ctx, db, schema); err != nil {
			db.Close()
			return nil, nil, err
		}
		return repository.CreateStore(db), db, nil
	default:
		return nil, nil, fmt.Errorf("unknown DB_DRIVER %q", conf.Driver)
	}
}
