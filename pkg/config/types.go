package config

import "time"

// Config represents the complete application configuration
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Processing  ProcessingConfig  `mapstructure:"processing"`
	Acquisition AcquisitionConfig `mapstructure:"acquisition"`
	Composer    ComposerConfig    `mapstructure:"composer"`
	Synthesis   SynthesisConfig   `mapstructure:"synthesis"`
	Assembly    AssemblyConfig    `mapstructure:"assembly"`
	Voices      VoicesConfig      `mapstructure:"voices"`
	Search      SearchConfig      `mapstructure:"search"`
	Extract     ExtractConfig     `mapstructure:"extract"`
	TextGen     TextGenConfig     `mapstructure:"textgen"`
	Speech      SpeechConfig      `mapstructure:"speech"`
	ObjectStore ObjectStoreConfig `mapstructure:"objectstore"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxHeaderBytes  int           `mapstructure:"max_header_bytes"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	Verbose bool   `mapstructure:"verbose"`
}

// ProcessingConfig contains background worker settings
type ProcessingConfig struct {
	Workers         int           `mapstructure:"workers"`
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	JobTimeout      time.Duration `mapstructure:"job_timeout"`
	RetentionDays   int           `mapstructure:"retention_days"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// AcquisitionConfig controls how source material is gathered
type AcquisitionConfig struct {
	SearchResultCount    int           `mapstructure:"search_result_count"`
	SupplementaryQueries int           `mapstructure:"supplementary_queries"`
	MinExtractChars      int           `mapstructure:"min_extract_chars"`
	ChunkChars           int           `mapstructure:"chunk_chars"`
	FetchTimeout         time.Duration `mapstructure:"fetch_timeout"`
}

// ComposerConfig controls script generation
type ComposerConfig struct {
	ContextBudgetChars    int     `mapstructure:"context_budget_chars"`
	PrimaryBudgetChars    int     `mapstructure:"primary_budget_chars"`
	SupplementBudgetChars int     `mapstructure:"supplement_budget_chars"`
	MaxTokens             int     `mapstructure:"max_tokens"`
	Temperature           float64 `mapstructure:"temperature"`
	RegenerationRetries   int     `mapstructure:"regeneration_retries"`
	DefaultTargetMinutes  int     `mapstructure:"default_target_minutes"`
	DefaultLanguage       string  `mapstructure:"default_language"`
}

// SynthesisConfig controls concurrent speech synthesis
type SynthesisConfig struct {
	Workers       int           `mapstructure:"workers"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryBackoff  time.Duration `mapstructure:"retry_backoff"`
	MaxTurnChars  int           `mapstructure:"max_turn_chars"`
}

// AssemblyConfig controls final audio mixing
type AssemblyConfig struct {
	PauseMs      int     `mapstructure:"pause_ms"`
	MusicGainDB  float64 `mapstructure:"music_gain_db"`
	SampleRate   int     `mapstructure:"sample_rate"`
	DefaultMusic string  `mapstructure:"default_music"`
	MusicDir     string  `mapstructure:"music_dir"`
}

// Voice describes one entry of the configured voice pool
type Voice struct {
	ID       string `mapstructure:"id"`
	Name     string `mapstructure:"name"`
	Language string `mapstructure:"language"`
}

// VoicesConfig contains the configured voice pool
type VoicesConfig struct {
	Pool []Voice `mapstructure:"pool"`
}

// SearchConfig contains web search provider settings
type SearchConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ExtractConfig contains webpage extraction provider settings
type ExtractConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// TextGenConfig contains script generation provider settings
type TextGenConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SpeechConfig contains speech synthesis provider settings
type SpeechConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	APIKey            string        `mapstructure:"api_key"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	BurstSize         int           `mapstructure:"burst_size"`
}

// ObjectStoreConfig contains storage publishing settings
type ObjectStoreConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	PublicURL string        `mapstructure:"public_url"`
	APIKey    string        `mapstructure:"api_key"`
	Bucket    string        `mapstructure:"bucket"`
	Timeout   time.Duration `mapstructure:"timeout"`
}
