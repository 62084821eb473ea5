package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Version is the service version reported by the health endpoint and the
// startup log.
const Version = "1.0.0"

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Tracking  TrackingConfig
	Goals     GoalsConfig
	Metrics   MetricsConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StoreConfig locates the workbook and its two tables
type StoreConfig struct {
	Path      string `mapstructure:"path"`
	FoodSheet string `mapstructure:"food_sheet"`
	LogSheet  string `mapstructure:"log_sheet"`
}

// CacheConfig holds snapshot cache configuration. The TTL is short by design:
// it spans one render cycle, not a session.
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
}

// TrackingConfig holds the logging policy knobs
type TrackingConfig struct {
	MinQuantity float64 `mapstructure:"min_quantity"`
	StrictUnits bool    `mapstructure:"strict_units"`
}

// GoalsConfig holds default daily targets and the band cut points for the
// calendar view, as fractions of the target.
type GoalsConfig struct {
	Protein  float64 `mapstructure:"protein"`
	Carbs    float64 `mapstructure:"carbs"`
	Fats     float64 `mapstructure:"fats"`
	Calories float64 `mapstructure:"calories"`
	BandLow  float64 `mapstructure:"band_low"`
	BandHigh float64 `mapstructure:"band_high"`
}

// MetricsConfig toggles the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/macroledger/")

	// Environment variable settings
	v.SetEnvPrefix("MACROLEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Store defaults
	v.SetDefault("store.path", "macroledger.xlsx")
	v.SetDefault("store.food_sheet", "FoodDatabase")
	v.SetDefault("store.log_sheet", "FoodLog")

	// Cache defaults - short TTL, one render cycle
	v.SetDefault("cache.ttl", "45s")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)

	// Tracking defaults
	v.SetDefault("tracking.min_quantity", 0.1)
	v.SetDefault("tracking.strict_units", false)

	// Goal defaults - protein target matches the original tracker's default
	v.SetDefault("goals.protein", 110.0)
	v.SetDefault("goals.carbs", 0.0)
	v.SetDefault("goals.fats", 0.0)
	v.SetDefault("goals.calories", 0.0)
	v.SetDefault("goals.band_low", 0.8)
	v.SetDefault("goals.band_high", 1.2)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Store.Path == "" {
		return fmt.Errorf("store path is required (set MACROLEDGER_STORE_PATH)")
	}

	if config.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got: %s", config.Cache.TTL)
	}

	if config.Tracking.MinQuantity <= 0 {
		return fmt.Errorf("minimum quantity must be positive, got: %g", config.Tracking.MinQuantity)
	}

	if config.Goals.BandLow >= config.Goals.BandHigh {
		return fmt.Errorf("goal band_low (%g) must be below band_high (%g)",
			config.Goals.BandLow, config.Goals.BandHigh)
	}

	return nil
}

// loadEnvFile loads KEY=VALUE pairs from a .env file in the working directory
// into the process environment. A missing file is not an error.
func loadEnvFile() error {
	f, err := os.Open(".env")
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" || os.Getenv(key) != "" {
			continue // never override explicit environment
		}
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}
	return scanner.Err()
}
