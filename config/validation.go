package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// backendRequirements lists the settings each storage backend cannot run without
var backendRequirements = map[string]func(cfg *Config) []ValidationError{
	StorageMemory: func(*Config) []ValidationError { return nil },
	StorageSQLite: func(cfg *Config) []ValidationError {
		if cfg.SQLitePath == "" {
			return []ValidationError{{Field: "SQLITE_PATH", Message: "required for sqlite storage"}}
		}
		return nil
	},
	StoragePostgres: func(cfg *Config) []ValidationError {
		var errs []ValidationError
		for field, value := range map[string]string{
			"DB_HOST": cfg.DBHost,
			"DB_PORT": cfg.DBPort,
			"DB_USER": cfg.DBUser,
			"DB_NAME": cfg.DBName,
		} {
			if value == "" {
				errs = append(errs, ValidationError{Field: field, Message: "required for postgres storage"})
			}
		}
		if cfg.DBPassword == "" {
			errs = append(errs, ValidationError{Field: "db_password", Message: "secret is required for postgres storage"})
		}
		return errs
	},
	StorageRedis: func(cfg *Config) []ValidationError {
		if !cfg.RedisEnabled() {
			return []ValidationError{{Field: "REDIS_HOST", Message: "REDIS_HOST or REDIS_URL required for redis storage"}}
		}
		return nil
	},
	StorageS3: func(cfg *Config) []ValidationError {
		if cfg.S3Bucket == "" {
			return []ValidationError{{Field: "S3_BUCKET_NAME", Message: "required for s3 storage"}}
		}
		return nil
	},
}

// ValidateConfig checks if the configuration is usable for the selected storage backend
func ValidateConfig(cfg *Config) error {
	var errors []string

	check, ok := backendRequirements[cfg.StorageBackend]
	if !ok {
		errors = append(errors, fmt.Sprintf("unknown storage backend %q", cfg.StorageBackend))
	} else {
		for _, e := range check(cfg) {
			errors = append(errors, e.Error())
		}
	}

	if cfg.ServerPort == "" {
		errors = append(errors, ValidationError{Field: "SERVER_PORT", Message: "must not be empty"}.Error())
	}
	if cfg.OpenAIAPIURL == "" {
		errors = append(errors, ValidationError{Field: "OPENAI_API_URL", Message: "must not be empty"}.Error())
	}
	if cfg.SessionIdleTimeout <= 0 {
		errors = append(errors, ValidationError{Field: "SESSION_IDLE_TIMEOUT", Message: "must be positive"}.Error())
	}
	if cfg.RateLimitPerHour < 0 {
		errors = append(errors, ValidationError{Field: "GENERATION_RATE_LIMIT", Message: "must not be negative"}.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}
