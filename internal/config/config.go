package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName         string
	AppEnv          string
	AppPort         string
	DatabaseDriver  string
	DatabaseURL     string
	DatabasePool    PoolConfig
	RedisURL        string
	NATSURL         string
	EventsChannel   string
	JWTSecret       string
	RatingRateLimit int
	RatingWindow    time.Duration
	AuditBatchSize  int
	CORSOrigins     string
}

// PoolConfig sizes the postgres connection pool.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// IsProduction reports whether the service runs with production settings.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("LUCT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "LUCT Reporting API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("events.channel", "luct")
	v.SetDefault("rating.rate_limit", 20)
	v.SetDefault("rating.rate_window", "1m")
	v.SetDefault("audit.batch_size", 100)
	v.SetDefault("http.cors_origins", "*")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")

	window, err := time.ParseDuration(v.GetString("rating.rate_window"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid rating rate window: %w", err)
	}

	lifetime, err := time.ParseDuration(v.GetString("database.conn_max_lifetime"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid database connection lifetime: %w", err)
	}
	pool := PoolConfig{
		MaxOpenConns:    v.GetInt("database.max_open_conns"),
		MaxIdleConns:    v.GetInt("database.max_idle_conns"),
		ConnMaxLifetime: lifetime,
	}

	cfg := Config{
		AppName:         v.GetString("app.name"),
		AppEnv:          v.GetString("app.env"),
		AppPort:         v.GetString("app.port"),
		DatabaseDriver:  strings.ToLower(strings.TrimSpace(v.GetString("database.driver"))),
		DatabaseURL:     v.GetString("database.url"),
		DatabasePool:    pool,
		RedisURL:        v.GetString("redis.url"),
		NATSURL:         v.GetString("nats.url"),
		EventsChannel:   v.GetString("events.channel"),
		JWTSecret:       v.GetString("jwt.secret"),
		RatingRateLimit: v.GetInt("rating.rate_limit"),
		RatingWindow:    window,
		AuditBatchSize:  v.GetInt("audit.batch_size"),
		CORSOrigins:     v.GetString("http.cors_origins"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	switch cfg.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return Config{}, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	if cfg.RatingRateLimit <= 0 {
		cfg.RatingRateLimit = 20
	}

	if cfg.AuditBatchSize <= 0 {
		cfg.AuditBatchSize = 100
	}

	return cfg, nil
}
