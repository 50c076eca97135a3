// Package config loads application configuration.
//
// Values come from, in increasing priority:
//  1. built-in defaults
//  2. an optional YAML file named by CONFIG_FILE (${VAR} references are expanded)
//  3. environment variables
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/fkhayef/warikan/internal/plan/allocation"
)

// Config holds all application configuration
type Config struct {
	Port        string           `yaml:"port"`
	DataPath    string           `yaml:"data_path"`
	DatabaseURL string           `yaml:"database_url"`
	JWTSecret   string           `yaml:"jwt_secret"`
	Log         LogConfig        `yaml:"log"`
	Allocation  AllocationConfig `yaml:"allocation"`
	Currency    CurrencyConfig   `yaml:"currency"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // human or json
}

// AllocationConfig holds fee allocation settings
type AllocationConfig struct {
	Policy           string  `yaml:"policy"`
	MaxMultiplier    float64 `yaml:"max_multiplier"` // 0 disables the bound
	DefaultItemLabel string  `yaml:"default_item_label"`
}

// CurrencyConfig holds amount formatting settings
type CurrencyConfig struct {
	Locale string `yaml:"locale"`
	Symbol string `yaml:"symbol"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Port:     "8080",
		DataPath: "data/warikan.db",
		Log: LogConfig{
			Level:  "info",
			Format: "human",
		},
		Allocation: AllocationConfig{
			Policy:           string(allocation.DefaultPolicy),
			MaxMultiplier:    5.0,
			DefaultItemLabel: "追加金額",
		},
		Currency: CurrencyConfig{
			Locale: "ja",
			Symbol: "¥",
		},
	}
}

// Load reads configuration from the optional file and the environment
func Load() (*Config, error) {
	cfg := Default()

	if path, ok := os.LookupEnv("CONFIG_FILE"); ok && path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	c.Port = getEnv("PORT", c.Port)
	c.DataPath = getEnv("DATA_PATH", c.DataPath)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
	c.Allocation.Policy = getEnv("ALLOCATION_POLICY", c.Allocation.Policy)
	c.Allocation.DefaultItemLabel = getEnv("DEFAULT_ITEM_LABEL", c.Allocation.DefaultItemLabel)
	c.Currency.Locale = getEnv("CURRENCY_LOCALE", c.Currency.Locale)
	c.Currency.Symbol = getEnv("CURRENCY_SYMBOL", c.Currency.Symbol)

	if raw, ok := os.LookupEnv("MAX_MULTIPLIER"); ok {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid MAX_MULTIPLIER %q: %w", raw, err)
		}
		c.Allocation.MaxMultiplier = v
	}
	return nil
}

// Validate checks values that cannot be fixed up silently
func (c *Config) Validate() error {
	if _, err := allocation.NewFactory().CreateFromString(c.Allocation.Policy); err != nil {
		return fmt.Errorf("invalid allocation policy: %w", err)
	}
	if c.Allocation.MaxMultiplier < 0 {
		return fmt.Errorf("max multiplier cannot be negative: %v", c.Allocation.MaxMultiplier)
	}
	switch c.Log.Format {
	case "human", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// RemoteEnabled reports whether the Postgres backed features are configured
func (c *Config) RemoteEnabled() bool {
	return c.DatabaseURL != ""
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
