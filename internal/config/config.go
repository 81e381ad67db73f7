package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverPQ       = "pq"
	DriverSQLite   = "sqlite"

	SessionBackendDB    = "db"
	SessionBackendRedis = "redis"
)

type Config struct {
	HTTPAddr string
	LogLevel string

	DBDriver       string
	DatabaseURL    string
	DBMaxOpenConns int

	SessionSecret      []byte
	SessionBackend     string
	SessionIdleTimeout time.Duration
	SessionMaxAge      time.Duration
	RedisAddr          string

	CookieSecure bool
	CSRFEnabled  bool

	UploadDir string

	KafkaBrokers []string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string
}

func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	cfg := &Config{
		HTTPAddr: EnvDefault("HTTP_ADDR", ":8080"),
		LogLevel: EnvDefault("LOG_LEVEL", "info"),

		DBDriver:       strings.ToLower(EnvDefault("DB_DRIVER", DriverPostgres)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DBMaxOpenConns: EnvIntDefault("DB_MAX_OPEN_CONNS", 20),

		SessionSecret:      []byte(os.Getenv("SESSION_SECRET")),
		SessionBackend:     strings.ToLower(EnvDefault("SESSION_BACKEND", SessionBackendDB)),
		SessionIdleTimeout: EnvDurationDefault("SESSION_IDLE_TIMEOUT", 30*time.Minute),
		SessionMaxAge:      EnvDurationDefault("SESSION_MAX_AGE", 24*time.Hour),
		RedisAddr:          EnvDefault("REDIS_ADDR", "localhost:6379"),

		CookieSecure: EnvBoolDefault("COOKIE_SECURE", false),
		CSRFEnabled:  EnvBoolDefault("CSRF_ENABLED", true),

		UploadDir: EnvDefault("UPLOAD_DIR", "uploaded"),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "productos"),
	}

	if cfg.DatabaseURL == "" && cfg.DBDriver != DriverSQLite {
		cfg.DatabaseURL = fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=disable",
			os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"),
			EnvDefault("DB_HOST", "localhost"), EnvDefault("DB_PORT", "5432"), os.Getenv("DB_NAME"),
		)
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "tienda.db"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if len(c.SessionSecret) == 0 {
		errs = append(errs, errors.New("missing required env SESSION_SECRET"))
	}
	switch c.DBDriver {
	case DriverPostgres, DriverPQ, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver))
	}
	switch c.SessionBackend {
	case SessionBackendDB, SessionBackendRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown SESSION_BACKEND %q", c.SessionBackend))
	}
	if c.SessionIdleTimeout <= 0 || c.SessionMaxAge <= 0 {
		errs = append(errs, errors.New("session timeouts must be positive"))
	}
	return errors.Join(errs...)
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
