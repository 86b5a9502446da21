// Package config provides configuration loading and database bootstrapping.
package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"
	"golang.org/x/crypto/bcrypt"

	gateway "github.com/corvid-systems/llmgate/internal"
	"github.com/corvid-systems/llmgate/internal/storage"
)

// SeedKey is one administratively-provisioned API key in a SEED_KEYS_FILE.
type SeedKey struct {
	Name               string `yaml:"name"`
	Key                string `yaml:"key"`
	RateLimitPerMinute int64  `yaml:"rate_limit_per_minute"`
}

// Bootstrap reads cfg.SeedKeysFile, if set, and inserts any key whose name
// is not already present in store. It is a no-op when SeedKeysFile is empty.
func Bootstrap(ctx context.Context, cfg *Config, store storage.APIKeyStore) error {
	if cfg.SeedKeysFile == "" {
		return nil
	}

	data, err := os.ReadFile(cfg.SeedKeysFile)
	if err != nil {
		return fmt.Errorf("read seed keys file: %w", err)
	}

	var seeds []SeedKey
	if err := yaml.Unmarshal(data, &seeds); err != nil {
		return fmt.Errorf("parse seed keys file: %w", err)
	}

	for _, s := range seeds {
		if s.Key == "" {
			slog.Warn("seed key empty, skipped", "name", s.Name)
			continue
		}

		count, err := store.CountByName(ctx, s.Name)
		if err != nil {
			return fmt.Errorf("count existing keys named %q: %w", s.Name, err)
		}
		if count > 0 {
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(s.Key), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash seed key %q: %w", s.Name, err)
		}

		rpm := s.RateLimitPerMinute
		if rpm <= 0 {
			rpm = 60
		}

		key := &gateway.APIKey{
			ID:                 uuid.Must(uuid.NewV7()).String(),
			KeyHash:            string(hash),
			Name:               s.Name,
			RateLimitPerMinute: rpm,
			IsActive:           true,
			CreatedAt:          time.Now().UTC(),
		}
		if err := store.Create(ctx, key); err != nil {
			return fmt.Errorf("create seed key %q: %w", s.Name, err)
		}
		slog.Info("bootstrapped api key", "name", s.Name)
	}

	return nil
}
