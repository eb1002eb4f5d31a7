package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`
	HTTP      HTTP
	GRPC      GRPC
	Auth      Auth
	Postgres  Postgres
	Redis     Redis
	PriceAPI  PriceAPI
	RateAPI   RateAPI
	Cache     Cache
	Jobs      Jobs
}

type HTTP struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8081"`
	RequestTimeout  time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	AllowedOrigins  []string      `env:"HTTP_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

type GRPC struct {
	Addr string `env:"GRPC_ADDR" envDefault:":8080"`
}

type Auth struct {
	APIToken string `env:"API_TOKEN" envDefault:"dev-token"`
}

type Postgres struct {
	Host         string `env:"DB_HOST" envDefault:"localhost"`
	Port         int    `env:"DB_PORT" envDefault:"5432"`
	User         string `env:"DB_USER" envDefault:"postgres"`
	Password     string `env:"DB_PASSWORD" envDefault:"postgres"`
	DbName       string `env:"DB_NAME" envDefault:"wealthflow"`
	SSLMode      string `env:"DB_SSLMODE" envDefault:"disable"`
	MigrationDir string `env:"DB_MIGRATION_DIR" envDefault:"migrations"`
	MaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
}

type Redis struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type PriceAPI struct {
	URL            string        `env:"PRICE_API_URL" envDefault:"https://query1.finance.yahoo.com"`
	Timeout        time.Duration `env:"PRICE_API_TIMEOUT" envDefault:"5s"`
	MaxConcurrency int           `env:"PRICE_API_MAX_CONCURRENCY" envDefault:"8"`
	RetryCount     int           `env:"PRICE_API_RETRY_COUNT" envDefault:"1"`
	Debug          bool          `env:"PRICE_API_DEBUG" envDefault:"false"`
}

type RateAPI struct {
	URL        string        `env:"RATE_API_URL" envDefault:"https://api.exchangerate-api.com/v4"`
	Timeout    time.Duration `env:"RATE_API_TIMEOUT" envDefault:"5s"`
	RetryCount int           `env:"RATE_API_RETRY_COUNT" envDefault:"1"`
	Debug      bool          `env:"RATE_API_DEBUG" envDefault:"false"`
}

type Cache struct {
	QuoteFreshTTL time.Duration `env:"CACHE_QUOTE_FRESH_TTL" envDefault:"5m"`
	QuoteStaleTTL time.Duration `env:"CACHE_QUOTE_STALE_TTL" envDefault:"72h"`
}

type Jobs struct {
	WarmQuotesInterval time.Duration `env:"JOB_WARM_QUOTES_INTERVAL" envDefault:"4m"`
	WarmQuotesEnabled  bool          `env:"JOB_WARM_QUOTES_ENABLED" envDefault:"true"`
	SnapshotCrontab    string        `env:"JOB_SNAPSHOT_CRONTAB" envDefault:"0 0 22 * * 1-5"`
	SnapshotEnabled    bool          `env:"JOB_SNAPSHOT_ENABLED" envDefault:"true"`
}

// DSN builds the lib/pq connection string
func (p Postgres) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DbName, p.SSLMode)
}

// Addr returns the redis host:port
func (r Redis) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Load reads the configuration from the environment, after loading an optional .env file
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config error: %w", err)
	}

	if cfg.PriceAPI.MaxConcurrency < 1 {
		cfg.PriceAPI.MaxConcurrency = 1
	}

	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("%s", err)
	}
	return cfg
}
