package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	once    sync.Once
	initErr error
)

// Init initializes the configuration system
// This should be called once at application startup
func Init() error {
	once.Do(func() {
		// Load a local .env file if present so provider keys can be kept
		// out of the settings file during development
		_ = godotenv.Load()

		// Set default values
		setDefaults()

		// Set up environment variable reading for overrides
		viper.SetEnvPrefix("PODFORGE")
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		viper.AutomaticEnv()

		// Load config from fixed location (cleaned for safety)
		configPath := filepath.Clean("./config/settings.yaml")
		viper.SetConfigFile(configPath)

		// Try to read the config file
		if err := viper.ReadInConfig(); err != nil {
			// If the config file doesn't exist, just use defaults and env vars
			if !os.IsNotExist(err) {
				initErr = fmt.Errorf("error reading config file %s: %w", configPath, err)
				return
			}
			// Config file doesn't exist, which is fine - we'll use defaults
		}

		// Validate the configuration
		if err := validate(); err != nil {
			initErr = fmt.Errorf("invalid configuration: %w", err)
		}
	})

	return initErr
}

// GetConfig returns the current configuration as a struct
// Init() must be called before using this
func GetConfig() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &config, nil
}

// Get returns a config value by key using Viper directly
func Get(key string) any {
	return viper.Get(key)
}

// GetString returns a string config value
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns a time.Duration config value
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// validate validates the configuration using Viper values
func validate() error {
	port := viper.GetInt("server.port")
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid server port: %d", port)
	}

	// Validate API keys aren't using placeholder values
	if err := validateAPIKeys(); err != nil {
		return err
	}

	// Auto-correct invalid worker counts
	if viper.GetInt("processing.workers") <= 0 {
		viper.Set("processing.workers", 1)
	}
	if viper.GetInt("synthesis.workers") <= 0 {
		viper.Set("synthesis.workers", 4)
	}
	if viper.GetInt("assembly.pause_ms") < 0 {
		viper.Set("assembly.pause_ms", 200)
	}

	return nil
}

// validateAPIKeys validates that API keys are not using placeholder values
func validateAPIKeys() error {
	env := viper.GetString("environment")
	isProduction := env == "production" || env == "prod"

	placeholders := []string{
		"YOUR_KEY_HERE",
		"YOUR_API_KEY",
		"changeme",
		"CHANGEME",
	}

	keys := map[string]string{
		"search.api_key":      viper.GetString("search.api_key"),
		"textgen.api_key":     viper.GetString("textgen.api_key"),
		"speech.api_key":      viper.GetString("speech.api_key"),
		"objectstore.api_key": viper.GetString("objectstore.api_key"),
	}

	for name, value := range keys {
		for _, placeholder := range placeholders {
			if value == placeholder {
				if isProduction {
					return fmt.Errorf("invalid %s: cannot use placeholder values in production", name)
				}
				fmt.Printf("Warning: %s is using a placeholder value\n", name)
				break
			}
		}
	}

	return nil
}

// Validate validates a Config struct (for testing)
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Processing.Workers <= 0 {
		c.Processing.Workers = 1
	}

	if c.Synthesis.Workers <= 0 {
		c.Synthesis.Workers = 4
	}

	if len(c.Voices.Pool) == 0 {
		return fmt.Errorf("voice pool is empty")
	}

	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Environment defaults
	viper.SetDefault("environment", "development")

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)
	viper.SetDefault("server.shutdown_timeout", 10*time.Second)
	viper.SetDefault("server.max_header_bytes", 1048576)

	// Database defaults
	viper.SetDefault("database.path", "./data/podforge.db")
	viper.SetDefault("database.verbose", false)

	// Processing defaults
	viper.SetDefault("processing.workers", 1)
	viper.SetDefault("processing.poll_interval", 2*time.Second)
	viper.SetDefault("processing.job_timeout", 30*time.Minute)
	viper.SetDefault("processing.retention_days", 30)
	viper.SetDefault("processing.cleanup_interval", 6*time.Hour)

	// Acquisition defaults
	viper.SetDefault("acquisition.search_result_count", 8)
	viper.SetDefault("acquisition.supplementary_queries", 4)
	viper.SetDefault("acquisition.min_extract_chars", 200)
	viper.SetDefault("acquisition.chunk_chars", 10000)
	viper.SetDefault("acquisition.fetch_timeout", 20*time.Second)

	// Composer defaults
	viper.SetDefault("composer.context_budget_chars", 60000)
	viper.SetDefault("composer.primary_budget_chars", 30000)
	viper.SetDefault("composer.supplement_budget_chars", 1000)
	viper.SetDefault("composer.max_tokens", 8192)
	viper.SetDefault("composer.temperature", 0.8)
	viper.SetDefault("composer.regeneration_retries", 2)
	viper.SetDefault("composer.default_target_minutes", 10)
	viper.SetDefault("composer.default_language", "en")

	// Synthesis defaults
	viper.SetDefault("synthesis.workers", 4)
	viper.SetDefault("synthesis.retry_attempts", 3)
	viper.SetDefault("synthesis.retry_backoff", 500*time.Millisecond)
	viper.SetDefault("synthesis.max_turn_chars", 220)

	// Assembly defaults
	viper.SetDefault("assembly.pause_ms", 200)
	viper.SetDefault("assembly.music_gain_db", -15.0)
	viper.SetDefault("assembly.sample_rate", 24000)
	viper.SetDefault("assembly.default_music", "ambient")
	viper.SetDefault("assembly.music_dir", "./assets/music")

	// Voice pool defaults (two-host dialogue)
	viper.SetDefault("voices.pool", []map[string]any{
		{"id": "voice-host-m1", "name": "Aaron", "language": "en"},
		{"id": "voice-host-f1", "name": "Bella", "language": "en"},
	})

	// Search provider defaults
	viper.SetDefault("search.base_url", "https://api.websearch.example.com/v1")
	viper.SetDefault("search.timeout", 20*time.Second)

	// Extract provider defaults
	viper.SetDefault("extract.base_url", "https://api.extract.example.com/v1")
	viper.SetDefault("extract.timeout", 30*time.Second)

	// TextGen provider defaults
	viper.SetDefault("textgen.base_url", "https://api.textgen.example.com/v1")
	viper.SetDefault("textgen.model", "dialogue-writer-large")
	viper.SetDefault("textgen.timeout", 2*time.Minute)

	// Speech provider defaults
	viper.SetDefault("speech.base_url", "https://api.speech.example.com/v1")
	viper.SetDefault("speech.timeout", 1*time.Minute)
	viper.SetDefault("speech.requests_per_minute", 120)
	viper.SetDefault("speech.burst_size", 5)

	// Object store defaults
	viper.SetDefault("objectstore.base_url", "https://storage.example.com")
	viper.SetDefault("objectstore.public_url", "https://cdn.example.com")
	viper.SetDefault("objectstore.bucket", "podforge-artifacts")
	viper.SetDefault("objectstore.timeout", 2*time.Minute)
}
