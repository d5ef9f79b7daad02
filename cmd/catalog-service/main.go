package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alimikegami/pos-microservices/catalog-federation/config"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/app"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/graph"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/repository"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/repository/memory"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/service"
	"github.com/rs/zerolog/log"
)

func main() {
	config := config.CreateNewConfig("catalog-service", config.CatalogServicePrefix)
	app.ConfigureLogger(config)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, db, err := app.OpenStore(ctx, config.PostgreSQLConfig, repository.CatalogSchema, memory.NewCatalogStore)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open catalog store")
	}

	g, err := graph.NewCatalogGraph(service.CreateCatalogService(store), graph.Options{BatchCapacity: config.FederationConfig.BatchCapacity})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build catalog schema")
	}

	server := app.App{
		DB:     db,
		Config: config,
		Graph:  g,
	}

	if err := server.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("catalog-service stopped")
	}
}
