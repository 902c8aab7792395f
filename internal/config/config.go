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

	"github.com/dairy-admin/dairy-hr-backend/internal/pkg/workdays"
	"github.com/joho/godotenv"
)

const (
	DataSourcePostgres = "postgres"
	DataSourceREST     = "rest"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Redis    RedisConfig
	Backend  BackendConfig
	Payroll  PayrollConfig
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port               int
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string
	StatsWarmInterval  time.Duration
}

// RedisConfig is optional; an empty Addr disables the statistics cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// BackendConfig selects where employees, attendance and leave are read from.
type BackendConfig struct {
	DataSource   string
	URL          string
	Token        string
	Timeout      time.Duration
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
}

type PayrollConfig struct {
	Weekend             workdays.Policy
	CurrencyScale       int32
	DefaultLeaveBalance int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
		slog.Debug("No .env file found, using process environment")
	}

	config := &Config{}
	var err error

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	dbMaxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	dbConnLifetime, err := time.ParseDuration(getEnv("DB_MAX_CONN_LIFETIME", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONN_LIFETIME: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            dbPort,
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", ""),
		Name:            getEnv("DB_NAME", "dairy_hr"),
		SSLMode:         getEnv("DB_SSL_MODE", "disable"),
		MaxConns:        int32(dbMaxConns),
		MaxConnLifetime: dbConnLifetime,
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}
	warmInterval, err := time.ParseDuration(getEnv("STATS_WARM_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid STATS_WARM_INTERVAL: %w", err)
	}

	config.App = AppConfig{
		Port:               appPort,
		Env:                getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		StatsWarmInterval:  warmInterval,
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Redis configuration
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}

	config.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
		TTL:      cacheTTL,
	}

	// Backend data source
	backendTimeout, err := time.ParseDuration(getEnv("BACKEND_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid BACKEND_TIMEOUT: %w", err)
	}

	config.Backend = BackendConfig{
		DataSource:   strings.ToLower(getEnv("DATA_SOURCE", DataSourcePostgres)),
		URL:          getEnv("BACKEND_URL", ""),
		Token:        getEnv("BACKEND_TOKEN", ""),
		Timeout:      backendTimeout,
		ClientID:     getEnv("BACKEND_CLIENT_ID", ""),
		ClientSecret: getEnv("BACKEND_CLIENT_SECRET", ""),
		TokenURL:     getEnv("BACKEND_TOKEN_URL", ""),
		Scopes:       getEnvSlice("BACKEND_SCOPES", ""),
	}

	// Payroll and statistics
	weekend, err := workdays.ParsePolicy(getEnv("WEEKEND_DAYS", "friday,saturday"))
	if err != nil {
		return nil, fmt.Errorf("invalid WEEKEND_DAYS: %w", err)
	}
	scale, err := strconv.Atoi(getEnv("CURRENCY_SCALE", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid CURRENCY_SCALE: %w", err)
	}
	leaveBalance, err := strconv.Atoi(getEnv("DEFAULT_LEAVE_BALANCE", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_LEAVE_BALANCE: %w", err)
	}

	config.Payroll = PayrollConfig{
		Weekend:             weekend,
		CurrencyScale:       int32(scale),
		DefaultLeaveBalance: leaveBalance,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate returns the first missing or inconsistent value.
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Payroll.CurrencyScale < 0 || c.Payroll.CurrencyScale > 6 {
		return fmt.Errorf("CURRENCY_SCALE must be between 0 and 6")
	}
	if c.App.StatsWarmInterval <= 0 {
		return fmt.Errorf("STATS_WARM_INTERVAL must be positive")
	}

	switch c.Backend.DataSource {
	case DataSourcePostgres:
	case DataSourceREST:
		if c.Backend.URL == "" {
			return fmt.Errorf("BACKEND_URL is required when DATA_SOURCE=rest")
		}
		if c.Backend.Token == "" && !c.Backend.UsesClientCredentials() {
			return fmt.Errorf("BACKEND_TOKEN or BACKEND_CLIENT_ID/BACKEND_CLIENT_SECRET/BACKEND_TOKEN_URL is required when DATA_SOURCE=rest")
		}
	default:
		return fmt.Errorf("DATA_SOURCE must be %q or %q", DataSourcePostgres, DataSourceREST)
	}
	return nil
}

// UsesClientCredentials reports whether the OAuth2 client credentials flow is configured.
func (b BackendConfig) UsesClientCredentials() bool {
	return b.ClientID != "" && b.ClientSecret != "" && b.TokenURL != ""
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env, fallback string) []string {
	value := getEnv(env, fallback)
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
