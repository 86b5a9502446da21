// Package config loads the gateway's environment-sourced configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the top-level gateway configuration. The external contract
// names these as literal environment variables, so Load binds to
// os.Getenv rather than a config file format.
type Config struct {
	Addr            string
	DatabaseURL     string
	OpenAIAPIKey    string
	DeepSeekAPIKey  string
	HuggingFaceKey  string
	SecretKey       string
	LogLevel        string
	Environment     string
	ProviderTimeout time.Duration
	SeedKeysFile    string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Load reads configuration from the process environment, applying defaults
// for everything not explicitly set.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:            getEnvDefault("ADDR", ":8080"),
		DatabaseURL:     getEnvDefault("DATABASE_URL", "llmgate.db"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		DeepSeekAPIKey:  os.Getenv("DEEPSEEK_API_KEY"),
		HuggingFaceKey:  os.Getenv("HUGGINGFACE_API_KEY"),
		SecretKey:       os.Getenv("SECRET_KEY"),
		LogLevel:        getEnvDefault("LOG_LEVEL", "INFO"),
		Environment:     getEnvDefault("ENVIRONMENT", "dev"),
		SeedKeysFile:    os.Getenv("SEED_KEYS_FILE"),
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    120 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}

	timeoutSeconds, err := getEnvInt("PROVIDER_TIMEOUT", 30)
	if err != nil {
		return nil, fmt.Errorf("parse PROVIDER_TIMEOUT: %w", err)
	}
	cfg.ProviderTimeout = time.Duration(timeoutSeconds) * time.Second

	if cfg.Environment == "prod" && cfg.SecretKey == "" {
		return nil, fmt.Errorf("SECRET_KEY must be set in production")
	}

	return cfg, nil
}

func getEnvDefault(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}
