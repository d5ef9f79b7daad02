package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alimikegami/pos-microservices/catalog-federation/config"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/app"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/graph"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/infrastructure/message-queue/kafka"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/repository"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/repository/memory"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/service"
	"github.com/rs/zerolog/log"
)

func main() {
	config := config.CreateNewConfig("product-service", config.ProductsServicePrefix)
	app.ConfigureLogger(config)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, db, err := app.OpenStore(ctx, config.PostgreSQLConfig, repository.ProductsSchema, memory.NewProductsStore)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open product store")
	}

	var publisher service.EventPublisher
	if config.CleanupConfig.Enabled && config.KafkaConfig.BrokerAddress != "" {
		writer := kafka.CreateKafkaWriter(config.KafkaConfig)
		defer writer.Close()
		publisher = kafka.CreatePublisher(writer)
	}

	products := service.CreateProductService(store.Products(), publisher)

	g, err := graph.NewProductsGraph(products)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build products schema")
	}

	server := app.App{
		DB:     db,
		Config: config,
		Graph:  g,
	}

	if err := server.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("product-service stopped")
	}
}
