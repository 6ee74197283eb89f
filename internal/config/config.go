package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/shoes_shop/internal/repository"
	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort           string
	LogLevel           string
	DBDriver           string
	DB                 repository.Credentials
	SQLitePath         string
	RedisAddr          string
	RedisPassword      string
	KafkaBrokers       []string
	OTLPEndpoint       string
	JWTSecret          string
	TokenTTL           time.Duration
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64
	AdminLogin         string
	AdminPassword      string
}

// Load reads the optional .env file and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("could not load .env file", "error", err)
	}

	port, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("DB_PORT: %w", err)
	}
	tokenTTL, err := time.ParseDuration(getEnv("TOKEN_TTL", "12h"))
	if err != nil {
		return nil, fmt.Errorf("TOKEN_TTL: %w", err)
	}
	requestTimeout, err := time.ParseDuration(getEnv("REQUEST_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("REQUEST_TIMEOUT: %w", err)
	}
	shutdownTimeout, err := time.ParseDuration(getEnv("SHUTDOWN_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("SHUTDOWN_TIMEOUT: %w", err)
	}

	cfg := &Config{
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DBDriver: getEnv("DB_DRIVER", repository.DriverSQLite),
		DB: repository.Credentials{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              port,
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", "postgres"),
			DBName:            getEnv("DB_NAME", "shoes_shop"),
			MigrationsDirPath: getEnv("MIGRATIONS_PATH", "internal/repository/migrations"),
		},
		SQLitePath:         getEnv("SQLITE_PATH", "shoes_shop.db"),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:       splitList(getEnv("KAFKA_BROKERS", "")),
		OTLPEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		TokenTTL:           tokenTTL,
		RequestTimeout:     requestTimeout,
		ShutdownTimeout:    shutdownTimeout,
		MaxRequestBodySize: 1 << 20, // 1MB
		AdminLogin:         getEnv("ADMIN_LOGIN", ""),
		AdminPassword:      getEnv("ADMIN_PASSWORD", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DBDriver != repository.DriverPostgres && c.DBDriver != repository.DriverSQLite {
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", repository.DriverPostgres, repository.DriverSQLite, c.DBDriver)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if (c.AdminLogin == "") != (c.AdminPassword == "") {
		return errors.New("ADMIN_LOGIN and ADMIN_PASSWORD must be set together")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
