package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends for the favorites and credential store
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
	StorageS3       = "s3"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort     string
	ServerHost     string
	AllowedOrigins []string

	// Storage backend selection
	StorageBackend string
	SQLitePath     string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// S3 configuration
	S3Bucket   string
	S3Region   string
	S3Endpoint string
	S3Prefix   string

	// OpenAI configuration
	OpenAIAPIKey  string
	OpenAIAPIURL  string
	OpenAIModel   string
	OpenAITimeout time.Duration

	// CredentialSealKey encrypts the persisted API key when set
	CredentialSealKey string

	// Generation rate limit per client
	RateLimitPerHour int

	// Sessions idle longer than this are dropped
	SessionIdleTimeout time.Duration
	ShutdownTimeout    time.Duration

	LogLevel string
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	// A missing .env file is fine; real deployments use the environment
	_ = godotenv.Load()

	env := GetEnvironment()
	cfg := &Config{}

	switch env {
	case CI:
		loadCIConfig(cfg)
	case Development, Test, Production:
		loadConfig(cfg)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadConfig reads plain settings from the environment and secrets from
// Docker secrets, falling back to the environment for local runs.
func loadConfig(cfg *Config) {
	loadCommon(cfg)

	cfg.DBPassword = secretOrEnv("db_password", "DB_PASSWORD")
	cfg.RedisPassword = secretOrEnv("redis_password", "REDIS_PASSWORD")
	cfg.OpenAIAPIKey = secretOrEnv("openai_api_key", "OPENAI_API_KEY")
	cfg.CredentialSealKey = secretOrEnv("credential_seal_key", "CREDENTIAL_SEAL_KEY")
}

// loadCIConfig loads configuration for CI environment using ONLY environment variables
func loadCIConfig(cfg *Config) {
	loadCommon(cfg)

	cfg.DBPassword = os.Getenv("TEST_DB_PASSWORD")
	cfg.RedisPassword = os.Getenv("TEST_REDIS_PASSWORD")
	cfg.OpenAIAPIKey = os.Getenv("TEST_OPENAI_API_KEY")
	cfg.CredentialSealKey = os.Getenv("TEST_CREDENTIAL_SEAL_KEY")
}

func loadCommon(cfg *Config) {
	cfg.ServerPort = getEnv("SERVER_PORT", "8080")
	cfg.ServerHost = getEnv("SERVER_HOST", "0.0.0.0")
	cfg.AllowedOrigins = splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"))

	cfg.StorageBackend = strings.ToLower(getEnv("STORAGE_BACKEND", StorageSQLite))
	cfg.SQLitePath = getEnv("SQLITE_PATH", "recipes.db")

	cfg.DBHost = getEnv("DB_HOST", "localhost")
	cfg.DBPort = getEnv("DB_PORT", "5432")
	cfg.DBUser = getEnv("DB_USER", "postgres")
	cfg.DBName = getEnv("DB_NAME", "recipes")
	cfg.DBSSLMode = getEnv("DB_SSL_MODE", "disable")

	cfg.RedisHost = os.Getenv("REDIS_HOST")
	cfg.RedisPort = getEnv("REDIS_PORT", "6379")
	cfg.RedisDB = getEnvInt("REDIS_DB", 0)
	cfg.RedisURL = os.Getenv("REDIS_URL")

	cfg.S3Bucket = os.Getenv("S3_BUCKET_NAME")
	cfg.S3Region = getEnv("AWS_REGION", "us-east-1")
	cfg.S3Endpoint = os.Getenv("S3_ENDPOINT")
	cfg.S3Prefix = getEnv("S3_PREFIX", "recipe-generator/")

	cfg.OpenAIAPIURL = getEnv("OPENAI_API_URL", "https://api.openai.com/v1/chat/completions")
	cfg.OpenAIModel = getEnv("OPENAI_MODEL", "gpt-3.5-turbo")
	cfg.OpenAITimeout = getEnvDuration("OPENAI_TIMEOUT", 60*time.Second)

	cfg.RateLimitPerHour = getEnvInt("GENERATION_RATE_LIMIT", 30)
	cfg.SessionIdleTimeout = getEnvDuration("SESSION_IDLE_TIMEOUT", 2*time.Hour)
	cfg.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	cfg.LogLevel = os.Getenv("LOG_LEVEL")
}

// RedisEnabled reports whether a Redis server is configured
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func secretOrEnv(secret, envVar string) string {
	if v := readSecret(secret); v != "" {
		return v
	}
	return os.Getenv(envVar)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
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
