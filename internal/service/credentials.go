package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/pageza/ai-recipe-generator/backend/internal/storage"
)

// CredentialKey is the storage key holding the persisted API key
const CredentialKey = "openai_api_key"

// CredentialSource records where the active API key came from
type CredentialSource string

const (
	SourceNone        CredentialSource = "none"
	SourceEnvironment CredentialSource = "environment"
	SourcePersisted   CredentialSource = "persisted"
	SourceExplicit    CredentialSource = "explicit"
)

var ErrInvalidAPIKeyFormat = errors.New("invalid API key format")

// ValidateAPIKeyFormat checks the shape of an OpenAI secret key. It does not
// contact the service.
func ValidateAPIKeyFormat(key string) error {
	switch {
	case key == "":
		return fmt.Errorf("%w: key is empty", ErrInvalidAPIKeyFormat)
	case !strings.HasPrefix(key, "sk-"):
		return fmt.Errorf("%w: key must start with \"sk-\"", ErrInvalidAPIKeyFormat)
	case len(key) <= 20:
		return fmt.Errorf("%w: key is too short", ErrInvalidAPIKeyFormat)
	}
	return nil
}

// Credentials holds the API key used for model calls
type Credentials struct {
	mu     sync.RWMutex
	value  string
	source CredentialSource
	store  storage.Store
	sealer *Sealer
	log    *zap.Logger
}

// NewCredentials creates an unconfigured credential holder. sealer may be nil.
func NewCredentials(store storage.Store, sealer *Sealer, log *zap.Logger) *Credentials {
	return &Credentials{
		source: SourceNone,
		store:  store,
		sealer: sealer,
		log:    log,
	}
}

// Load resolves the key at startup. A non-empty envKey wins and is not
// persisted; otherwise the persisted key is used if present.
func (c *Credentials) Load(ctx context.Context, envKey string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if envKey = strings.TrimSpace(envKey); envKey != "" {
		c.value, c.source = envKey, SourceEnvironment
		c.log.Info("API key loaded", zap.String("source", string(SourceEnvironment)))
		return nil
	}

	data, err := c.store.Get(ctx, CredentialKey)
	if errors.Is(err, storage.ErrNotFound) {
		c.value, c.source = "", SourceNone
		c.log.Info("no API key configured")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read persisted API key: %w", err)
	}

	key, err := c.unseal(data)
	if err != nil {
		return err
	}
	if key == "" {
		c.value, c.source = "", SourceNone
		return nil
	}
	c.value, c.source = key, SourcePersisted
	c.log.Info("API key loaded", zap.String("source", string(SourcePersisted)))
	return nil
}

// Set validates, persists and activates key. The active key is unchanged if
// persisting fails.
func (c *Credentials) Set(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if err := ValidateAPIKeyFormat(key); err != nil {
		return err
	}

	data := []byte(key)
	if c.sealer != nil {
		sealed, err := c.sealer.Seal(data)
		if err != nil {
			return err
		}
		data = sealed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Set(ctx, CredentialKey, data); err != nil {
		return fmt.Errorf("failed to persist API key: %w", err)
	}
	c.value, c.source = key, SourceExplicit
	c.log.Info("API key updated", zap.Bool("sealed", c.sealer != nil))
	return nil
}

// Clear forgets the key and removes the persisted copy
func (c *Credentials) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Delete(ctx, CredentialKey); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to delete persisted API key: %w", err)
	}
	c.value, c.source = "", SourceNone
	c.log.Info("API key cleared")
	return nil
}

// Value returns the active key
func (c *Credentials) Value() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value, c.value != ""
}

func (c *Credentials) Source() CredentialSource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.source
}

func (c *Credentials) Configured() bool {
	_, ok := c.Value()
	return ok
}

func (c *Credentials) unseal(data []byte) (string, error) {
	if !IsSealed(data) {
		if c.sealer != nil {
			c.log.Warn("persisted API key is not sealed; it will be sealed on next update")
		}
		return strings.TrimSpace(string(data)), nil
	}
	if c.sealer == nil {
		return "", ErrSealed
	}
	plain, err := c.sealer.Open(data)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(plain)), nil
}
