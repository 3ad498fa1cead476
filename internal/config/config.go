package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	RateLimit RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR" default:"reports"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// PipelineConfig contains the defaults for the derive pipeline. The HTTP
// layer starts from these and applies per-request overrides.
type PipelineConfig struct {
	SleepFile     string  `yaml:"sleep_file" envconfig:"SLEEP_FILE"`
	EventsFile    string  `yaml:"events_file" envconfig:"EVENTS_FILE"`
	MinHours      float64 `yaml:"min_hours" envconfig:"MIN_HOURS" default:"0"`
	MaxHours      float64 `yaml:"max_hours" envconfig:"MAX_HOURS" default:"24"`
	RollingWindow int     `yaml:"rolling_window" envconfig:"ROLLING_WINDOW" default:"7"`
	SortColumn    string  `yaml:"sort_column" envconfig:"SORT_COLUMN" default:"month"`
	SortDirection string  `yaml:"sort_direction" envconfig:"SORT_DIRECTION" default:"desc"`
}

// Load loads configuration from an optional YAML file with environment
// variable overrides (SLEEPPULSE_ prefix).
func Load() (*Config, error) {
	return LoadFromFile(configFilePath())
}

// LoadFromFile loads configuration from the given YAML file, if it exists,
// then applies environment variables and defaults on top.
func LoadFromFile(configFile string) (*Config, error) {
	var cfg Config

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			data, err := os.ReadFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Environment variables override file values; defaults fill the rest.
	if err := envconfig.Process("SLEEPPULSE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func configFilePath() string {
	if path := os.Getenv("SLEEPPULSE_CONFIG"); path != "" {
		return path
	}
	return "config.yaml"
}

// validate checks configuration invariants
func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Pipeline.RollingWindow < 1 {
		return fmt.Errorf("rolling window must be at least 1, got %d", c.Pipeline.RollingWindow)
	}
	if c.Pipeline.MinHours < 0 || c.Pipeline.MaxHours < c.Pipeline.MinHours {
		return fmt.Errorf("invalid sleep-hours range: [%v, %v]", c.Pipeline.MinHours, c.Pipeline.MaxHours)
	}
	switch c.Pipeline.SortDirection {
	case "asc", "desc":
	default:
		return fmt.Errorf("invalid sort direction: %s", c.Pipeline.SortDirection)
	}
	return nil
}
