package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

type PostgresConfig struct {
	Host     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port     string `env:"POSTGRES_PORT" envDefault:"5454"`
	DB       string `env:"POSTGRES_DB" envDefault:"smart_harvest"`
	Username string `env:"POSTGRES_USER" envDefault:"postgres"`
	Password string `env:"POSTGRES_PASSWORD"`
	SSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	MaxConns int32  `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
	MinConns int32  `env:"POSTGRES_MIN_CONNS" envDefault:"1"`
}

type RedisConfig struct {
	URL       string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	KeyPrefix string `env:"REDIS_KEY_PREFIX" envDefault:"smartharvest"`
}

type RepositoriesConfig struct {
	Postgres PostgresConfig
	Redis    RedisConfig
}

type StorageConfig struct {
	Driver string `env:"STORAGE_DRIVER" envDefault:"memory"`
}

type DeviceConfig struct {
	Secret     string        `env:"DEVICE_SECRET" envDefault:"dev-device-secret-change-in-production"`
	CookieName string        `env:"DEVICE_COOKIE_NAME" envDefault:"device_token"`
	TTL        time.Duration `env:"DEVICE_TTL" envDefault:"8760h"`
	Secure     bool          `env:"DEVICE_COOKIE_SECURE" envDefault:"false"`
}

type WeatherConfig struct {
	BaseURL   string        `env:"WEATHER_API_URL" envDefault:"https://api.open-meteo.com/v1/forecast"`
	Latitude  float64       `env:"FARM_LATITUDE" envDefault:"6.0794514"`
	Longitude float64       `env:"FARM_LONGITUDE" envDefault:"80.1920971"`
	Timeout   time.Duration `env:"WEATHER_TIMEOUT" envDefault:"5s"`
	CacheTTL  time.Duration `env:"WEATHER_CACHE_TTL" envDefault:"10m"`
}

type ObservabilityConfig struct {
	ServiceName  string `env:"OTEL_SERVICE_NAME" envDefault:"smart-harvest"`
	OTLPEndpoint string `env:"OTEL_EXPORTER_ENDPOINT" envDefault:"otel-collector:4318"`
	MetricsAddr  string `env:"METRICS_ADDR" envDefault:":9092"`
	PprofAddr    string `env:"PPROF_ADDR"`
}

type Config struct {
	Repositories    RepositoriesConfig
	Storage         StorageConfig
	Device          DeviceConfig
	Weather         WeatherConfig
	Observability   ObservabilityConfig
	ServerPort      string        `env:"SERVER_PORT" envDefault:"8091"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment into a Config. The .env file, if any, must be
// loaded by the caller beforehand.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageMemory, StorageRedis:
	case StoragePostgres:
		if c.Repositories.Postgres.Password == "" {
			return fmt.Errorf("POSTGRES_PASSWORD environment variable is required for the postgres storage driver")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}

	if c.Device.Secret == "" {
		return fmt.Errorf("DEVICE_SECRET environment variable is required")
	}

	return nil
}
