package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Load loads configuration from various sources with priority order:
// 1. Environment variables
// 2. Configuration file (config.yaml)
// 3. Default values
func Load() (*Config, error) {
	v := viper.New()

	// Set configuration file details
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/evidence-core/")
	v.AddConfigPath("./configs/")
	v.AddConfigPath(".")

	// Enable environment variable support
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("EVIDENCE")

	setDefaults(v)

	// Read configuration file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - continue with env vars and defaults
	}

	overrideWithEnvVars(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets reasonable default values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("environment", "development")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")

	// Intake defaults
	v.SetDefault("intake.dedup_ttl", 300) // 5 minutes

	// Investigator defaults
	v.SetDefault("investigator.endpoint", "http://investigator.analysis-agent.svc.cluster.local/api/v1/investigations")
	v.SetDefault("investigator.timeout", 300000) // 5 minutes; investigations are slow
	v.SetDefault("investigator.retries", 1)

	// Cache defaults (Valkey)
	v.SetDefault("cache.addr", "localhost:6379")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", 300)

	// Release store defaults
	v.SetDefault("releases.endpoint", "http://release-history.kube-system.svc.cluster.local:8090")
	v.SetDefault("releases.timeout", 30000)

	// Log store defaults
	v.SetDefault("log_store.endpoint", "http://loghouse.observability.svc.cluster.local:9428")
	v.SetDefault("log_store.timeout", 30000)
	v.SetDefault("log_store.tail_lines", 500)

	// Knowledge base defaults
	v.SetDefault("knowledge.path", "/agent-memory")

	// CORS defaults
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Content-Type", "Authorization"})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 3600)

	// Monitoring defaults
	v.SetDefault("monitoring.enabled", true)
	v.SetDefault("monitoring.metrics_path", "/metrics")
}

// overrideWithEnvVars explicitly handles environment variable overrides
func overrideWithEnvVars(v *viper.Viper) {
	// Server configuration
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			v.Set("port", p)
		}
	}

	if env := os.Getenv("ENVIRONMENT"); env != "" {
		v.Set("environment", env)
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		v.Set("log_level", logLevel)
	}

	// Investigator endpoint
	if investigatorURL := os.Getenv("INVESTIGATOR_API_URL"); investigatorURL != "" {
		v.Set("investigator.endpoint", investigatorURL)
	}

	// Valkey dedup cache
	if cacheAddr := os.Getenv("VALKEY_ADDR"); cacheAddr != "" {
		v.Set("cache.addr", strings.TrimSpace(cacheAddr))
	}

	if cacheTTL := os.Getenv("CACHE_TTL"); cacheTTL != "" {
		if ttl, err := strconv.Atoi(cacheTTL); err == nil {
			v.Set("cache.ttl", ttl)
		}
	}

	if dedupTTL := os.Getenv("DEDUP_TTL"); dedupTTL != "" {
		if ttl, err := strconv.Atoi(dedupTTL); err == nil {
			v.Set("intake.dedup_ttl", ttl)
		}
	}

	// External stores
	if releasesURL := os.Getenv("RELEASE_STORE_URL"); releasesURL != "" {
		v.Set("releases.endpoint", releasesURL)
	}

	if logStoreURL := os.Getenv("LOG_STORE_URL"); logStoreURL != "" {
		v.Set("log_store.endpoint", logStoreURL)
	}

	// Knowledge base volume
	if knowledgePath := os.Getenv("AGENT_MEMORY_PATH"); knowledgePath != "" {
		v.Set("knowledge.path", knowledgePath)
	}
}

func validateConfig(config *Config) error {
	if config.Port < 1 || config.Port > 65535 {
		return fmt.Errorf("invalid port number: %d", config.Port)
	}

	validLogLevels := []string{"debug", "info", "warn", "error", "fatal"}
	if !contains(validLogLevels, config.LogLevel) {
		return fmt.Errorf("invalid log level: %s", config.LogLevel)
	}

	validEnvironments := []string{"development", "staging", "production", "test"}
	if !contains(validEnvironments, config.Environment) {
		return fmt.Errorf("invalid environment: %s", config.Environment)
	}

	if config.Intake.DedupTTL <= 0 {
		return fmt.Errorf("intake.dedup_ttl must be positive, got %d", config.Intake.DedupTTL)
	}

	if config.Investigator.Endpoint == "" {
		return fmt.Errorf("investigator endpoint is required")
	}

	if config.Investigator.Retries < 0 {
		return fmt.Errorf("investigator.retries must not be negative, got %d", config.Investigator.Retries)
	}

	return nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
