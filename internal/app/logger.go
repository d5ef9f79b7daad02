package app

import (
	"os"

	"github.com/alimikegami/pos-microservices/catalog-federation/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ConfigureLogger sets the global logger. Contexts without a request logger
// fall back to it.
func ConfigureLogger(conf *config.Config) {
	level, err := zerolog.ParseLevel(conf.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	logger := zerolog.New(os.Stdout)
	if conf.Environment == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	log.Logger = logger.With().Timestamp().Str("service", conf.ServiceName).Logger()
	zerolog.DefaultContextLogger = &log.Logger
}
