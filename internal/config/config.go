package config

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/HexaTeam-By-Epitech/area-sub002/pkg/config"
	"github.com/HexaTeam-By-Epitech/area-sub002/pkg/database"
)

// Config is the full engine configuration, loaded from the environment.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"area-engine"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	HTTP      HTTPConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Engine    EngineConfig
	Auth      AuthConfig
	Providers ProvidersConfig
	Reactions ReactionsConfig
	Tracing   TracingConfig
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Port            int           `env:"HTTP_PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"15s"`
	CORSOrigins     []string      `env:"HTTP_CORS_ORIGINS" envSeparator:"," envDefault:"*"`
}

// PostgresConfig configures the area store.
type PostgresConfig struct {
	Host     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	User     string `env:"POSTGRES_USER" envDefault:"area"`
	Password string `env:"POSTGRES_PASSWORD" envDefault:"area_secret"`
	DBName   string `env:"POSTGRES_DB" envDefault:"area"`
	SSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	MaxConns int32  `env:"POSTGRES_MAX_CONNS" envDefault:"25"`
	MinConns int32  `env:"POSTGRES_MIN_CONNS" envDefault:"5"`
}

// RedisConfig configures the credential and detection stores.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// KafkaConfig configures the event producer.
type KafkaConfig struct {
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	Enabled bool     `env:"KAFKA_ENABLED" envDefault:"true"`
}

// EngineConfig tunes detection and polling.
type EngineConfig struct {
	PollInterval  time.Duration `env:"POLL_INTERVAL" envDefault:"10s"`
	DetectionTTL  time.Duration `env:"DETECTION_TTL" envDefault:"0"`
	TokenKeyHex   string        `env:"TOKEN_KEY" envDefault:""`
	ProviderRPS   float64       `env:"PROVIDER_RPS" envDefault:"10"`
	ProviderBurst int           `env:"PROVIDER_BURST" envDefault:"20"`
}

// AuthConfig configures API authentication.
type AuthConfig struct {
	JWTSecret    string        `env:"JWT_SECRET" envDefault:""`
	AccessExpiry time.Duration `env:"JWT_ACCESS_EXPIRY" envDefault:"15m"`
}

// ProvidersConfig holds per-provider OAuth settings.
type ProvidersConfig struct {
	SpotifyClientID     string `env:"SPOTIFY_CLIENT_ID" envDefault:""`
	SpotifyClientSecret string `env:"SPOTIFY_CLIENT_SECRET" envDefault:""`
	SpotifyAccountsURL  string `env:"SPOTIFY_ACCOUNTS_URL" envDefault:""`
	SpotifyAPIURL       string `env:"SPOTIFY_API_URL" envDefault:""`
	GitHubAPIURL        string `env:"GITHUB_API_URL" envDefault:""`
}

// ReactionsConfig holds reaction-side endpoints.
type ReactionsConfig struct {
	MailerURL    string `env:"MAILER_URL" envDefault:""`
	MailerAPIKey string `env:"MAILER_API_KEY" envDefault:""`
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	Enabled      bool    `env:"TRACING_ENABLED" envDefault:"false"`
	OTLPEndpoint string  `env:"OTLP_ENDPOINT" envDefault:"localhost:4318"`
	SampleRatio  float64 `env:"TRACE_SAMPLE_RATIO" envDefault:"1.0"`
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints the env parser cannot express.
func (c *Config) Validate() error {
	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid HTTP_PORT %d", c.HTTP.Port)
	}
	if c.Engine.PollInterval < time.Second {
		return fmt.Errorf("POLL_INTERVAL %s is below the 1s floor", c.Engine.PollInterval)
	}
	if _, err := c.TokenKey(); err != nil {
		return err
	}
	if c.Environment == "production" {
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.Engine.TokenKeyHex == "" {
			return fmt.Errorf("TOKEN_KEY is required in production")
		}
	}
	return nil
}

// TokenKey decodes the hex-encoded token encryption key. An unset key yields
// a zeroed development key, rejected by Validate in production.
func (c *Config) TokenKey() ([]byte, error) {
	if c.Engine.TokenKeyHex == "" {
		return make([]byte, 32), nil
	}
	key, err := hex.DecodeString(strings.TrimSpace(c.Engine.TokenKeyHex))
	if err != nil {
		return nil, fmt.Errorf("TOKEN_KEY is not valid hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("TOKEN_KEY must be 32 bytes, got %d", len(key))
	}
	return key, nil
}

// PostgresPoolConfig converts to the shared pool configuration.
func (c *Config) PostgresPoolConfig() *database.PostgresConfig {
	pg := database.DefaultPostgresConfig()
	pg.Host = c.Postgres.Host
	pg.Port = c.Postgres.Port
	pg.User = c.Postgres.User
	pg.Password = c.Postgres.Password
	pg.DBName = c.Postgres.DBName
	pg.SSLMode = c.Postgres.SSLMode
	pg.MaxConns = c.Postgres.MaxConns
	pg.MinConns = c.Postgres.MinConns
	return &pg
}

// RedisClientConfig converts to the shared Redis configuration.
func (c *Config) RedisClientConfig() database.RedisConfig {
	return database.RedisConfig{
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	}
}
