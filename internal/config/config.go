// Package config loads the inventory service configuration from defaults,
// an optional YAML file and the environment, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/vegatran/GaraManager-sub003/pkg/database"
	"github.com/vegatran/GaraManager-sub003/pkg/tracing"
)

type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	HTTP      HTTPConfig      `yaml:"http"`
	GRPC      GRPCConfig      `yaml:"grpc"`
	Database  database.Config `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	JWT       JWTConfig       `yaml:"jwt"`
	Tracing   tracing.Config  `yaml:"tracing"`
	Inventory InventoryConfig `yaml:"inventory"`
}

type ServiceConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`
}

// IsDevelopment switches the logger to console output.
func (s ServiceConfig) IsDevelopment() bool {
	return s.Environment == "development" || s.Environment == "dev"
}

type HTTPConfig struct {
	Port            string        `yaml:"port"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	// RateLimit caps API requests per actor and window; zero disables it.
	// Enforced only when Redis is enabled.
	RateLimit       int           `yaml:"rate_limit"`
	RateLimitWindow time.Duration `yaml:"rate_limit_window"`
}

type GRPCConfig struct {
	Port string `yaml:"port"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	GroupID string   `yaml:"group_id"`
}

type JWTConfig struct {
	Secret   string        `yaml:"secret"`
	Issuer   string        `yaml:"issuer"`
	TokenTTL time.Duration `yaml:"token_ttl"`
}

type InventoryConfig struct {
	AuditBufferSize int `yaml:"audit_buffer_size"`
	BulkMaxItems    int `yaml:"bulk_max_items"`
}

// Default returns the configuration used for local runs.
func Default() Config {
	return Config{
		Service: ServiceConfig{
			Name:        "inventory-service",
			Version:     "1.0.0",
			Environment: "development",
			LogLevel:    "info",
		},
		HTTP: HTTPConfig{
			Port:            "8082",
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			AllowedOrigins:  []string{"*"},
			RateLimit:       120,
			RateLimitWindow: time.Minute,
		},
		GRPC: GRPCConfig{Port: "9082"},
		Database: database.Config{
			Host:            "localhost",
			Port:            "5432",
			User:            "postgres",
			Password:        "postgres",
			DBName:          "garage_inventory",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9092"},
			GroupID: "inventory-events-tail",
		},
		JWT: JWTConfig{
			Secret:   "change-me",
			Issuer:   "garage-manager",
			TokenTTL: 24 * time.Hour,
		},
		Tracing: tracing.Config{
			Endpoint:    tracing.DefaultEndpoint,
			SampleRatio: 1,
		},
		Inventory: InventoryConfig{
			AuditBufferSize: 1024,
			BulkMaxItems:    100,
		},
	}
}

// Load builds the configuration. CONFIG_FILE names an optional YAML overlay;
// a .env file in the working directory is read when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Service.Name = getEnv("SERVICE_NAME", cfg.Service.Name)
	cfg.Service.Version = getEnv("SERVICE_VERSION", cfg.Service.Version)
	cfg.Service.Environment = getEnv("APP_ENV", cfg.Service.Environment)
	cfg.Service.LogLevel = getEnv("LOG_LEVEL", cfg.Service.LogLevel)

	cfg.HTTP.Port = getEnv("PORT", cfg.HTTP.Port)
	cfg.HTTP.RequestTimeout = getEnvDuration("HTTP_REQUEST_TIMEOUT", cfg.HTTP.RequestTimeout)
	cfg.HTTP.ShutdownTimeout = getEnvDuration("HTTP_SHUTDOWN_TIMEOUT", cfg.HTTP.ShutdownTimeout)
	cfg.HTTP.AllowedOrigins = getEnvSlice("CORS_ALLOWED_ORIGINS", cfg.HTTP.AllowedOrigins)
	cfg.HTTP.RateLimit = getEnvInt("HTTP_RATE_LIMIT", cfg.HTTP.RateLimit)
	cfg.HTTP.RateLimitWindow = getEnvDuration("HTTP_RATE_LIMIT_WINDOW", cfg.HTTP.RateLimitWindow)

	cfg.GRPC.Port = getEnv("GRPC_PORT", cfg.GRPC.Port)

	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnv("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.DBName = getEnv("DB_NAME", cfg.Database.DBName)
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", cfg.Database.SSLMode)
	cfg.Database.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", cfg.Database.MaxOpenConns)
	cfg.Database.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", cfg.Database.MaxIdleConns)
	cfg.Database.ConnMaxLifetime = getEnvDuration("DB_CONN_MAX_LIFETIME", cfg.Database.ConnMaxLifetime)
	cfg.Database.LogQueries = getEnvBool("DB_LOG_QUERIES", cfg.Database.LogQueries)

	cfg.Redis.Enabled = getEnvBool("REDIS_ENABLED", cfg.Redis.Enabled)
	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)

	cfg.Kafka.Enabled = getEnvBool("KAFKA_ENABLED", cfg.Kafka.Enabled)
	cfg.Kafka.Brokers = getEnvSlice("KAFKA_BROKERS", cfg.Kafka.Brokers)
	cfg.Kafka.GroupID = getEnv("KAFKA_GROUP_ID", cfg.Kafka.GroupID)

	cfg.JWT.Secret = getEnv("JWT_SECRET", cfg.JWT.Secret)
	cfg.JWT.Issuer = getEnv("JWT_ISSUER", cfg.JWT.Issuer)
	cfg.JWT.TokenTTL = getEnvDuration("JWT_TOKEN_TTL", cfg.JWT.TokenTTL)

	cfg.Tracing.Enabled = getEnvBool("TRACING_ENABLED", cfg.Tracing.Enabled)
	cfg.Tracing.Endpoint = getEnv("JAEGER_ENDPOINT", cfg.Tracing.Endpoint)

	cfg.Inventory.AuditBufferSize = getEnvInt("AUDIT_BUFFER_SIZE", cfg.Inventory.AuditBufferSize)
	cfg.Inventory.BulkMaxItems = getEnvInt("BULK_MAX_ITEMS", cfg.Inventory.BulkMaxItems)
}

// Validate rejects settings the service cannot start with.
func (c Config) Validate() error {
	var problems []string
	if c.HTTP.Port == "" {
		problems = append(problems, "http.port is required")
	}
	if c.JWT.Secret == "" {
		problems = append(problems, "jwt.secret is required")
	}
	if c.Inventory.BulkMaxItems < 1 {
		problems = append(problems, "inventory.bulk_max_items must be positive")
	}
	if c.Inventory.AuditBufferSize < 1 {
		problems = append(problems, "inventory.audit_buffer_size must be positive")
	}
	if c.HTTP.RateLimit > 0 && c.HTTP.RateLimitWindow <= 0 {
		problems = append(problems, "http.rate_limit_window must be positive when rate limiting")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		problems = append(problems, "kafka.brokers is required when kafka is enabled")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
