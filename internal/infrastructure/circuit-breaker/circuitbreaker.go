package circuitbreaker

import (
	"time"

	"github.com/alimikegami/pos-microservices/catalog-federation/config"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
)

// CreateCircuitBreaker trips once MinCalls requests were seen in the current
// interval and at least FailRatio of them failed. It stays open for
// BreakerTimeout before letting a probe through.
func CreateCircuitBreaker(name string, conf config.FederationConfig) *gobreaker.CircuitBreaker[[]byte] {
	minCalls := conf.BreakerMinCalls
	if minCalls == 0 {
		minCalls = 3
	}
	failRatio := conf.BreakerFailRatio
	if failRatio <= 0 {
		failRatio = 0.6
	}

	var st gobreaker.Settings
	st.Name = name
	st.Timeout = conf.BreakerTimeout
	st.Interval = time.Minute
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
		return counts.Requests >= minCalls && failureRatio >= failRatio
	}
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn().Str("component", "CircuitBreaker").Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("state changed")
	}

	return gobreaker.NewCircuitBreaker[[]byte](st)
}
