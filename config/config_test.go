package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("CI", "")
	t.Setenv("SECRETS_DIR", t.TempDir())
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("STORAGE_BACKEND", "postgres")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PASSWORD", "postgres")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:5173, http://frontend:5173")
	t.Setenv("OPENAI_TIMEOUT", "15s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, StoragePostgres, cfg.StorageBackend)
	assert.Equal(t, "db", cfg.DBHost)
	assert.Equal(t, "postgres", cfg.DBPassword)
	assert.Equal(t, []string{"http://localhost:5173", "http://frontend:5173"}, cfg.AllowedOrigins)
	assert.Equal(t, 15*time.Second, cfg.OpenAITimeout)
}

func TestLoadConfigWithDefaults(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("CI", "")
	t.Setenv("SECRETS_DIR", t.TempDir())
	for _, key := range []string{"SERVER_PORT", "STORAGE_BACKEND", "SQLITE_PATH", "OPENAI_API_URL", "OPENAI_MODEL", "OPENAI_API_KEY", "GENERATION_RATE_LIMIT"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, StorageSQLite, cfg.StorageBackend)
	assert.Equal(t, "recipes.db", cfg.SQLitePath)
	assert.Equal(t, "https://api.openai.com/v1/chat/completions", cfg.OpenAIAPIURL)
	assert.Equal(t, "gpt-3.5-turbo", cfg.OpenAIModel)
	assert.Equal(t, 30, cfg.RateLimitPerHour)
	assert.Equal(t, 2*time.Hour, cfg.SessionIdleTimeout)
	assert.Empty(t, cfg.OpenAIAPIKey)
}

func TestLoadConfigReadsSecrets(t *testing.T) {
	secretsDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(secretsDir, "openai_api_key"), []byte("sk-from-secret-file-1234567\n"), 0o600))

	t.Setenv("ENV", "production")
	t.Setenv("CI", "")
	t.Setenv("SECRETS_DIR", secretsDir)
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("OPENAI_API_KEY", "sk-from-env-ignored-123456")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "sk-from-secret-file-1234567", cfg.OpenAIAPIKey)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "memory backend",
			cfg:  Config{StorageBackend: StorageMemory, ServerPort: "8080", OpenAIAPIURL: "http://x", SessionIdleTimeout: time.Hour},
		},
		{
			name:    "zero session idle timeout",
			cfg:     Config{StorageBackend: StorageMemory, ServerPort: "8080", OpenAIAPIURL: "http://x"},
			wantErr: "SESSION_IDLE_TIMEOUT",
		},
		{
			name:    "unknown backend",
			cfg:     Config{StorageBackend: "floppy", ServerPort: "8080", OpenAIAPIURL: "http://x"},
			wantErr: `unknown storage backend "floppy"`,
		},
		{
			name:    "postgres without password",
			cfg:     Config{StorageBackend: StoragePostgres, ServerPort: "8080", OpenAIAPIURL: "http://x", DBHost: "h", DBPort: "5432", DBUser: "u", DBName: "n"},
			wantErr: "db_password",
		},
		{
			name:    "redis without host",
			cfg:     Config{StorageBackend: StorageRedis, ServerPort: "8080", OpenAIAPIURL: "http://x"},
			wantErr: "REDIS_HOST",
		},
		{
			name:    "s3 without bucket",
			cfg:     Config{StorageBackend: StorageS3, ServerPort: "8080", OpenAIAPIURL: "http://x"},
			wantErr: "S3_BUCKET_NAME",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfig(&tt.cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetEnvironment(t *testing.T) {
	t.Setenv("CI", "true")
	assert.Equal(t, CI, GetEnvironment())

	t.Setenv("CI", "")
	t.Setenv("ENV", "prod")
	assert.Equal(t, Production, GetEnvironment())

	t.Setenv("ENV", "")
	assert.Equal(t, Development, GetEnvironment())
}
