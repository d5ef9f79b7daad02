package composition

import (
	"github.com/alimikegami/pos-microservices/catalog-federation/config"
	"github.com/alimikegami/pos-microservices/catalog-federation/internal/federation"
	circuitbreaker "github.com/alimikegami/pos-microservices/catalog-federation/internal/infrastructure/circuit-breaker"
	"github.com/alimikegami/pos-microservices/catalog-federation/pkg/httpclient"
)

// CreateSubgraphClient gives a subgraph its own connection pool and circuit
// breaker, so one failing subgraph cannot starve calls to the other.
func CreateSubgraphClient(name, url string, conf config.FederationConfig) *federation.Client {
	hc := httpclient.CreateClient(httpclient.Options{
		Timeout:         2 * conf.Timeout,
		MaxConnsPerHost: conf.MaxConnsPerHost,
	})

	return federation.CreateClient(name, url, hc, circuitbreaker.CreateCircuitBreaker(name, conf), federation.ClientOptions{
		Timeout:    conf.Timeout,
		MaxRetries: conf.MaxRetries,
	})
}
