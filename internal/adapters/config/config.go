package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"snackindex/pkg/errors"
)

type Config struct {
	App           AppConfig
	Postgres      PostgresConfig
	Reddit        RedditConfig
	NewsAPI       NewsAPIConfig
	Finnhub       FinnhubConfig
	Trends        TrendsConfig
	Collector     CollectorConfig
	Metrics       MetricsConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"snackindex-collector"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" required:"true"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" required:"true"`
	Password string `envconfig:"POSTGRES_PASSWORD" required:"true"`
	Database string `envconfig:"POSTGRES_DB" required:"true"`
	SSLMode  string `envconfig:"POSTGRES_SSL_MODE" default:"disable"`
	MaxConns int    `envconfig:"POSTGRES_MAX_CONNS" default:"10"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedditConfig holds credentials for the Reddit search API.
// Empty credentials disable social collection for the whole run.
type RedditConfig struct {
	ClientID     string `envconfig:"REDDIT_CLIENT_ID"`
	ClientSecret string `envconfig:"REDDIT_CLIENT_SECRET"`
	UserAgent    string `envconfig:"REDDIT_USER_AGENT" default:"SnackIndexCollector/0.1 by Taffe"`
}

func (c RedditConfig) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

type NewsAPIConfig struct {
	APIKey string `envconfig:"NEWS_API_KEY"`
}

type FinnhubConfig struct {
	APIKey string `envconfig:"FINNHUB_API_KEY"`
}

// TrendsConfig tunes the Google Trends client. Category 71 is Food & Drink,
// which keeps ambiguous brand names from picking up unrelated interest.
type TrendsConfig struct {
	Category int    `envconfig:"TRENDS_CATEGORY" default:"71"`
	Geo      string `envconfig:"TRENDS_GEO" default:""`
}

type CollectorConfig struct {
	// Subreddits is the community scope in Reddit's multi-sub syntax
	Subreddits  string        `envconfig:"COLLECTOR_SUBREDDITS" default:"snacks+fastfood+food+soda"`
	SearchLimit int           `envconfig:"COLLECTOR_SEARCH_LIMIT" default:"20"`
	Interval    time.Duration `envconfig:"COLLECTOR_INTERVAL" default:"24h"`

	// Requests per minute budgets for the rate-limited sources
	RedditRPM int `envconfig:"COLLECTOR_REDDIT_RPM" default:"60"`
	NewsRPM   int `envconfig:"COLLECTOR_NEWS_RPM" default:"30"`
}

type MetricsConfig struct {
	Enabled bool `envconfig:"METRICS_ENABLED" default:"false"`
	Port    int  `envconfig:"METRICS_PORT" default:"9090"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"development"`
}

// Load reads configuration from environment variables.
// It first tries to load a .env file (useful for local development).
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	return &cfg, nil
}
