package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProductsServicePrefix = "PRODUCTS_SERVICE__"
	ImagesServicePrefix   = "IMAGES_SERVICE__"
	GatewayServicePrefix  = "GATEWAY_SERVICE__"
	CatalogServicePrefix  = "CATALOG_SERVICE__"
)

type Config struct {
	ServiceName      string
	ServicePort      string
	MetricsPort      string
	Environment      string
	LogLevel         string
	ShutdownTimeout  time.Duration
	PostgreSQLConfig PostgreSQLConfig
	KafkaConfig      KafkaConfig
	TracingConfig    TracingConfig
	FederationConfig FederationConfig
	CleanupConfig    CleanupConfig
}

type PostgreSQLConfig struct {
	Driver          string
	DBHost          string
	DBPort          string
	DBName          string
	DBUsername      string
	DBPassword      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type KafkaConfig struct {
	BrokerAddress string
	BrokerTopic   string
	GroupID       string
}

type TracingConfig struct {
	CollectorHost string
}

type FederationConfig struct {
	ProductsURL      string
	ImagesURL        string
	Timeout          time.Duration
	MaxRetries       int
	BatchCapacity    int
	MaxConnsPerHost  int
	BreakerTimeout   time.Duration
	BreakerMinCalls  uint32
	BreakerFailRatio float64
}

type CleanupConfig struct {
	Enabled  bool
	Interval time.Duration
}

// CreateNewConfig reads the environment of one service. Every key is looked
// up with the service prefix first and then without it, so shared values
// like BROKER_ADDRESS can be set once in .env.
func CreateNewConfig(serviceName, prefix string) *Config {
	godotenv.Load(".env")

	env := loader{prefix: prefix}

	conf := Config{
		ServiceName:     serviceName,
		ServicePort:     env.str("SERVICE_PORT", "8080"),
		MetricsPort:     env.str("METRICS_PORT", ""),
		Environment:     env.str("ENVIRONMENT", "production"),
		LogLevel:        env.str("LOG_LEVEL", "info"),
		ShutdownTimeout: env.duration("SHUTDOWN_TIMEOUT", 15*time.Second),
		PostgreSQLConfig: PostgreSQLConfig{
			Driver:          env.str("DB_DRIVER", "postgres"),
			DBHost:          env.str("DB_HOST", "localhost"),
			DBPort:          env.str("DB_PORT", "5432"),
			DBName:          env.str("DB_NAME", ""),
			DBUsername:      env.str("DB_USERNAME", ""),
			DBPassword:      env.str("DB_PASSWORD", ""),
			MaxOpenConns:    env.integer("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    env.integer("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: env.duration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		KafkaConfig: KafkaConfig{
			BrokerAddress: env.str("BROKER_ADDRESS", ""),
			BrokerTopic:   env.str("BROKER_TOPIC", "catalog.products"),
			GroupID:       env.str("BROKER_GROUP_ID", serviceName),
		},
		TracingConfig: TracingConfig{
			CollectorHost: env.str("COLLECTOR_HOST", ""),
		},
		FederationConfig: FederationConfig{
			ProductsURL:      env.str("FEDERATED_SERVICES_PRODUCTS", ""),
			ImagesURL:        env.str("FEDERATED_SERVICES_IMAGES", ""),
			Timeout:          env.duration("FEDERATION_TIMEOUT", 5*time.Second),
			MaxRetries:       env.integer("FEDERATION_MAX_RETRIES", 2),
			BatchCapacity:    env.integer("FEDERATION_BATCH_CAPACITY", 500),
			MaxConnsPerHost:  env.integer("FEDERATION_MAX_CONNS_PER_HOST", 32),
			BreakerTimeout:   env.duration("FEDERATION_BREAKER_TIMEOUT", 30*time.Second),
			BreakerMinCalls:  uint32(env.integer("FEDERATION_BREAKER_MIN_CALLS", 3)),
			BreakerFailRatio: env.float("FEDERATION_BREAKER_FAIL_RATIO", 0.6),
		},
		CleanupConfig: CleanupConfig{
			Enabled:  env.boolean("CLEANUP_ENABLED", false),
			Interval: env.duration("CLEANUP_INTERVAL", 10*time.Minute),
		},
	}

	return &conf
}

type loader struct {
	prefix string
}

func (l loader) str(key, def string) string {
	if v := os.Getenv(l.prefix + key); v != "" {
		return v
	}
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (l loader) integer(key string, def int) int {
	n, err := strconv.Atoi(l.str(key, ""))
	if err != nil {
		return def
	}
	return n
}

func (l loader) float(key string, def float64) float64 {
	f, err := strconv.ParseFloat(l.str(key, ""), 64)
	if err != nil {
		return def
	}
	return f
}

func (l loader) boolean(key string, def bool) bool {
	b, err := strconv.ParseBool(l.str(key, ""))
	if err != nil {
		return def
	}
	return b
}

// duration accepts Go duration strings ("750ms", "5s") or whole seconds.
func (l loader) duration(key string, def time.Duration) time.Duration {
	v := l.str(key, "")
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if sec, err := strconv.Atoi(v); err == nil {
		return time.Duration(sec) * time.Second
	}
	return def
}
