// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"freight-cost/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Engine contains pricing engine settings
	Engine EngineConfig `json:"engine"`

	// Catalog locates the rate catalog
	Catalog CatalogConfig `json:"catalog"`

	// Storage configures the quote history store
	Storage StorageConfig `json:"storage"`

	// Server contains HTTP server settings
	Server ServerConfig `json:"server"`

	// Output contains output configuration
	Output OutputConfig `json:"output"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// EngineConfig contains pricing engine settings
type EngineConfig struct {
	// FallbackTruckAgent is the generic truck carrier paired with any rail leg
	FallbackTruckAgent string `json:"fallback_truck_agent"`

	// Locale is the BCP 47 tag used to order agent names
	Locale string `json:"locale"`
}

// CatalogConfig locates the rate catalog
type CatalogConfig struct {
	// Path is a .json or .hcl catalog file
	Path string `json:"path"`

	// ReloadSchedule is a cron expression on which the server re-reads Path.
	// Empty disables reloading.
	ReloadSchedule string `json:"reload_schedule,omitempty"`
}

// StorageConfig configures the quote history store
type StorageConfig struct {
	// Backend is file, memory, postgres or redis
	Backend string `json:"backend"`

	// Directory is the file backend's root
	Directory string `json:"directory"`

	// PostgresURL is the postgres backend's connection string
	PostgresURL string `json:"postgres_url,omitempty"`

	// Redis settings for the redis backend
	RedisAddr     string `json:"redis_addr,omitempty"`
	RedisPassword string `json:"redis_password,omitempty"`
	RedisDB       int    `json:"redis_db,omitempty"`
}

// Options renders the storage settings as storage.StoreFactory options
func (s StorageConfig) Options() map[string]string {
	return map[string]string{
		"path":     s.Directory,
		"url":      s.PostgresURL,
		"addr":     s.RedisAddr,
		"password": s.RedisPassword,
		"db":       strconv.Itoa(s.RedisDB),
	}
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `json:"addr"`

	// MetricsEnabled exposes /metrics
	MetricsEnabled bool `json:"metrics_enabled"`

	// RateLimit caps quote requests per second across all clients; 0 disables it
	RateLimit float64 `json:"rate_limit"`

	// RateBurst is the number of requests allowed above RateLimit in a burst
	RateBurst int `json:"rate_burst"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format
	DefaultFormat string `json:"default_format"`
}

// Default returns a default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	baseDir := filepath.Join(homeDir, ".freight-cost")

	return &Config{
		Version: "1.0",
		Engine: EngineConfig{
			FallbackTruckAgent: "COWIN",
			Locale:             "ko",
		},
		Catalog: CatalogConfig{
			Path: filepath.Join(baseDir, "catalog.json"),
		},
		Storage: StorageConfig{
			Backend:   "file",
			Directory: filepath.Join(baseDir, "quotes"),
		},
		Server: ServerConfig{
			Addr:           ":8080",
			MetricsEnabled: true,
			RateLimit:      20,
			RateBurst:      40,
		},
		Output: OutputConfig{
			DefaultFormat: "cli",
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadEnv reads an optional .env file and applies FREIGHT_COST_* overrides.
// Variables already set in the environment win over the .env file.
func (c *Config) LoadEnv(envFiles ...string) {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}

	c.Engine.FallbackTruckAgent = getEnv("FREIGHT_COST_FALLBACK_TRUCK_AGENT", c.Engine.FallbackTruckAgent)
	c.Engine.Locale = getEnv("FREIGHT_COST_LOCALE", c.Engine.Locale)
	c.Catalog.Path = getEnv("FREIGHT_COST_CATALOG", c.Catalog.Path)
	c.Catalog.ReloadSchedule = getEnv("FREIGHT_COST_CATALOG_RELOAD", c.Catalog.ReloadSchedule)
	c.Storage.Backend = getEnv("FREIGHT_COST_STORAGE_BACKEND", c.Storage.Backend)
	c.Storage.Directory = getEnv("FREIGHT_COST_STORAGE_DIR", c.Storage.Directory)
	c.Storage.PostgresURL = getEnv("FREIGHT_COST_POSTGRES_URL", c.Storage.PostgresURL)
	c.Storage.RedisAddr = getEnv("FREIGHT_COST_REDIS_ADDR", c.Storage.RedisAddr)
	c.Storage.RedisPassword = getEnv("FREIGHT_COST_REDIS_PASSWORD", c.Storage.RedisPassword)
	c.Storage.RedisDB = getEnvAsInt("FREIGHT_COST_REDIS_DB", c.Storage.RedisDB)
	c.Server.Addr = getEnv("FREIGHT_COST_ADDR", c.Server.Addr)
	c.Server.MetricsEnabled = getEnvAsBool("FREIGHT_COST_METRICS_ENABLED", c.Server.MetricsEnabled)
	c.Server.RateLimit = getEnvAsFloat("FREIGHT_COST_RATE_LIMIT", c.Server.RateLimit)
	c.Server.RateBurst = getEnvAsInt("FREIGHT_COST_RATE_BURST", c.Server.RateBurst)
	c.Logging.Level = getEnv("FREIGHT_COST_LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("FREIGHT_COST_LOG_FORMAT", c.Logging.Format)
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvAsInt(key string, defaultValue int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
