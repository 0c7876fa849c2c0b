// ABOUTME: Configuration management with environment variable and YAML file support
// ABOUTME: Environment variables override file values; defaults make a bare start work

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// Server contains HTTP server configuration
	Server ServerConfig `yaml:"server"`

	// Cache contains cache configuration
	Cache CacheConfig `yaml:"cache"`

	// Provider contains detection backend configuration
	Provider ProviderConfig `yaml:"provider"`

	// Detection contains pipeline tuning
	Detection DetectionConfig `yaml:"detection"`

	// Client contains scan-side preferences for cmd/scan
	Client ClientSettings `yaml:"client"`

	// LogLevel selects the logging verbosity (debug/info/warn/error)
	LogLevel string `yaml:"log_level"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	// Port is the HTTP server port
	Port string `yaml:"port"`

	// RateLimit is the per-IP request cap on detection endpoints
	RateLimit int `yaml:"rate_limit"`

	// RateWindowSeconds is the fixed rate-limit window length
	RateWindowSeconds int `yaml:"rate_window_seconds"`
}

// CacheConfig holds cache backend configuration
type CacheConfig struct {
	// Type specifies the cache backend (redis/memory)
	Type string `yaml:"type"`

	// MaxEntries bounds the in-memory cache
	MaxEntries int `yaml:"max_entries"`

	// TTLSeconds is how long detection results stay cached
	TTLSeconds int `yaml:"ttl_seconds"`

	// Redis contains Redis-specific configuration
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig holds Redis-specific configuration
type RedisConfig struct {
	// Address is the Redis server address
	Address string `yaml:"address"`

	// Password is the Redis authentication password
	Password string `yaml:"password"`

	// DB is the Redis database number
	DB int `yaml:"db"`
}

// ProviderConfig holds detection backend configuration
type ProviderConfig struct {
	// Name selects the backend (mock/sapling/hive/modelservice)
	Name string `yaml:"name"`

	// SaplingAPIKey authenticates against the hosted text classifier
	SaplingAPIKey string `yaml:"sapling_api_key"`

	// HiveAPIKey and HiveEndpoint configure the hosted image classifier
	HiveAPIKey   string `yaml:"hive_api_key"`
	HiveEndpoint string `yaml:"hive_endpoint"`

	// ModelServiceURL is the base URL of the self-hosted model service
	ModelServiceURL string `yaml:"model_service_url"`

	// TimeoutSeconds bounds every outbound scoring call
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// RequestsPerSecond paces outbound calls; 0 disables pacing
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// DetectionConfig holds pipeline tuning
type DetectionConfig struct {
	// MinTextLength is the rune floor below which text is skipped
	MinTextLength int `yaml:"min_text_length"`

	// MaxTextLength is the rune cap; longer text is truncated
	MaxTextLength int `yaml:"max_text_length"`

	// ChunkSize is the per-chunk rune cap for provider dispatch
	ChunkSize int `yaml:"chunk_size"`

	// MaxRetries is how many times a failed provider call is retried
	MaxRetries int `yaml:"max_retries"`
}

// ClientSettings holds scan-side preferences
type ClientSettings struct {
	// Threshold is the 0-100 score at or above which items get flagged
	Threshold float64 `yaml:"threshold"`

	// AutoBlur enables automatic blurring of flagged items
	AutoBlur bool `yaml:"auto_blur"`

	// ElderMode lowers the flag threshold
	ElderMode bool `yaml:"elder_mode"`

	// PrivacyConsent gates all network activity for scans
	PrivacyConsent bool `yaml:"privacy_consent"`

	// BackendURL is the detection API base URL
	BackendURL string `yaml:"backend_url"`
}

// Load builds the configuration: defaults, then the YAML file named by
// CONFIG_FILE (if set), then environment variable overrides.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(cfg)

	return cfg, nil
}

// LoadFromEnv loads configuration from defaults and environment variables only
func LoadFromEnv() (*Config, error) {
	cfg := defaults()
	applyEnv(cfg)
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              "8000",
			RateLimit:         30,
			RateWindowSeconds: 60,
		},
		Cache: CacheConfig{
			Type:       "memory",
			MaxEntries: 500,
			TTLSeconds: 600,
			Redis: RedisConfig{
				Address: "localhost:6379",
			},
		},
		Provider: ProviderConfig{
			Name:           "mock",
			TimeoutSeconds: 30,
		},
		Detection: DetectionConfig{
			MinTextLength: 20,
			MaxTextLength: 10000,
			ChunkSize:     3000,
			MaxRetries:    2,
		},
		Client: ClientSettings{
			Threshold:  70,
			BackendURL: "http://localhost:8000",
		},
		LogLevel: "info",
	}
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnvOrDefault("PORT", cfg.Server.Port)
	cfg.Server.RateLimit = getEnvAsIntOrDefault("RATE_LIMIT", cfg.Server.RateLimit)
	cfg.Server.RateWindowSeconds = getEnvAsIntOrDefault("RATE_WINDOW_SECONDS", cfg.Server.RateWindowSeconds)

	cfg.Cache.Type = getEnvOrDefault("CACHE_TYPE", cfg.Cache.Type)
	cfg.Cache.MaxEntries = getEnvAsIntOrDefault("CACHE_MAX_ENTRIES", cfg.Cache.MaxEntries)
	cfg.Cache.TTLSeconds = getEnvAsIntOrDefault("CACHE_TTL_SECONDS", cfg.Cache.TTLSeconds)
	cfg.Cache.Redis.Address = getEnvOrDefault("REDIS_ADDRESS", cfg.Cache.Redis.Address)
	cfg.Cache.Redis.Password = getEnvOrDefault("REDIS_PASSWORD", cfg.Cache.Redis.Password)
	cfg.Cache.Redis.DB = getEnvAsIntOrDefault("REDIS_DB", cfg.Cache.Redis.DB)

	cfg.Provider.Name = getEnvOrDefault("PROVIDER", cfg.Provider.Name)
	cfg.Provider.SaplingAPIKey = getEnvOrDefault("SAPLING_API_KEY", cfg.Provider.SaplingAPIKey)
	cfg.Provider.HiveAPIKey = getEnvOrDefault("HIVE_API_KEY", cfg.Provider.HiveAPIKey)
	cfg.Provider.HiveEndpoint = getEnvOrDefault("HIVE_ENDPOINT", cfg.Provider.HiveEndpoint)
	cfg.Provider.ModelServiceURL = getEnvOrDefault("MODEL_SERVICE_URL", cfg.Provider.ModelServiceURL)
	cfg.Provider.TimeoutSeconds = getEnvAsIntOrDefault("PROVIDER_TIMEOUT_SECONDS", cfg.Provider.TimeoutSeconds)

	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault returns the environment variable as int or a default
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("port cannot be empty")
	}

	if c.Server.RateLimit < 0 {
		return errors.New("rate limit cannot be negative")
	}

	if c.Cache.Type != "redis" && c.Cache.Type != "memory" {
		return errors.New("cache type must be 'redis' or 'memory'")
	}

	if c.Cache.Type == "redis" && c.Cache.Redis.Address == "" {
		return errors.New("redis address cannot be empty when using redis cache")
	}

	switch c.Provider.Name {
	case "mock", "sapling", "hive", "modelservice":
	default:
		return fmt.Errorf("unknown provider %q", c.Provider.Name)
	}

	if c.Detection.MinTextLength > c.Detection.MaxTextLength {
		return errors.New("min text length cannot exceed max text length")
	}

	return nil
}
