package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alimikegami/pos-microservices/catalog-federation/config"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/app"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/composition"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/graph"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/infrastructure/message-queue/kafka"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/repository"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/repository/memory"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/service"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/worker"
	"github.com/rs/zerolog/log"
)

func main() {
	config := config.CreateNewConfig("image-service", config.ImagesServicePrefix)
	app.ConfigureLogger(config)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, db, err := app.OpenStore(ctx, config.PostgreSQLConfig, repository.ImagesSchema, memory.NewImagesStore)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open image store")
	}

	var directory service.ProductDirectory
	if config.FederationConfig.ProductsURL != "" {
		directory = composition.CreateProductDirectory(
			composition.CreateSubgraphClient("products", config.FederationConfig.ProductsURL, config.FederationConfig),
		)
	} else {
		log.Warn().Msg("FEDERATED_SERVICES_PRODUCTS not set, image product ids are not verified")
	}

	images := service.CreateImageService(store.Images(), directory)

	g, err := graph.NewImagesGraph(images, graph.Options{BatchCapacity: config.FederationConfig.BatchCapacity})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build images schema")
	}

	server := app.App{
		DB:     db,
		Config: config,
		Graph:  g,
	}

	var workers []func(ctx context.Context) error
	if config.CleanupConfig.Enabled {
		var reader worker.MessageReader
		if config.KafkaConfig.BrokerAddress != "" {
			kafkaReader := kafka.CreateKafkaReader(config.KafkaConfig)
			defer kafkaReader.Close()
			reader = kafkaReader
		}

		cleaner := worker.CreateOrphanCleaner(images, directory, reader, config.CleanupConfig.Interval)
		if reader != nil {
			workers = append(workers, cleaner.ConsumeEvents)
		}
		if directory != nil {
			if err := cleaner.Start(ctx); err != nil {
				log.Fatal().Err(err).Msg("Failed to schedule orphan reconciliation")
			}
			defer cleaner.Stop()
		}
	}

	if err := server.Run(ctx, workers...); err != nil {
		log.Fatal().Err(err).Msg("image-service stopped")
	}
}
