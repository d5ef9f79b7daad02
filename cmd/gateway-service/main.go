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
	"github.com/rs/zerolog/log"
)

func main() {
	config := config.CreateNewConfig("gateway-service", config.GatewayServicePrefix)
	app.ConfigureLogger(config)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	federation := config.FederationConfig
	if federation.ProductsURL == "" || federation.ImagesURL == "" {
		log.Fatal().Msg("FEDERATED_SERVICES_PRODUCTS and FEDERATED_SERVICES_IMAGES are required")
	}

	products := composition.CreateSubgraphClient("products", federation.ProductsURL, federation)
	images := composition.CreateSubgraphClient("images", federation.ImagesURL, federation)

	if err := composition.VerifySubgraphs(ctx, products, images); err != nil {
		log.Warn().Err(err).Msg("subgraph contract not verified")
	}

	g, err := graph.NewCatalogGraph(composition.CreateGateway(products, images), graph.Options{BatchCapacity: federation.BatchCapacity})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build catalog schema")
	}

	server := app.App{
		Config: config,
		Graph:  g,
	}

	if err := server.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("gateway-service stopped")
	}
}
