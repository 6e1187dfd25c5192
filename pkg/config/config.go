package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBackendURL     = "http://localhost:3001/api"
	DefaultMaxUploadBytes = 50 * 1024 * 1024
)

type Config struct {
	// Backend
	BackendURL            string `yaml:"backend_url" env:"MQ_BACKEND_URL" validate:"required,url"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds" env:"MQ_REQUEST_TIMEOUT_SECONDS" validate:"min=1,max=3600"`

	// Upload
	MaxUploadBytes       int64 `yaml:"max_upload_bytes" env:"MQ_MAX_UPLOAD_BYTES" validate:"min=1"`
	StatusPollIntervalMS int   `yaml:"status_poll_interval_ms" env:"MQ_STATUS_POLL_INTERVAL_MS" validate:"min=0"`
	StatusPollAttempts   int   `yaml:"status_poll_attempts" env:"MQ_STATUS_POLL_ATTEMPTS" validate:"min=1,max=1000"`

	// Player
	Player  string `yaml:"player" env:"MQ_PLAYER" validate:"oneof=clock mpv"`
	MPVPath string `yaml:"mpv_path" env:"MQ_MPV_PATH"`

	// Session
	StrictClear bool `yaml:"strict_clear" env:"MQ_STRICT_CLEAR"`

	// UI Settings
	ColorTheme   string `yaml:"color_theme" env:"MQ_COLOR_THEME" validate:"oneof=auto dark light"`
	ExportFormat string `yaml:"export_format" env:"MQ_EXPORT_FORMAT" validate:"oneof=markdown json html"`

	// Logging
	LogLevel string `yaml:"log_level" env:"MQ_LOG_LEVEL" validate:"oneof=debug info warn error"`

	// Watch
	WatchDebounceMS int `yaml:"watch_debounce_ms" env:"MQ_WATCH_DEBOUNCE_MS" validate:"min=0"`
}

// DefaultConfig returns a Config struct with default values
func DefaultConfig() *Config {
	return &Config{
		BackendURL:            DefaultBackendURL,
		RequestTimeoutSeconds: 60,
		MaxUploadBytes:        DefaultMaxUploadBytes,
		StatusPollIntervalMS:  2000,
		StatusPollAttempts:    30,
		Player:                "clock",
		MPVPath:               "mpv",
		StrictClear:           false,
		ColorTheme:            "auto",
		ExportFormat:          "markdown",
		LogLevel:              "info",
		WatchDebounceMS:       500,
	}
}

// Load reads configuration from the specified file path, then applies
// MQ_* environment overrides (a .env file in the working directory counts)
// and validates the result
func Load(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	// A missing .env is the normal case
	_ = godotenv.Load()

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads the file over the defaults without environment overrides
func LoadFile(path string) (*Config, error) {
	// Start with default config
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, return default config (not an error)
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// applyDefaults backfills values a hand-edited file may have blanked
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.BackendURL == "" {
		c.BackendURL = d.BackendURL
	}
	if c.RequestTimeoutSeconds <= 0 {
		c.RequestTimeoutSeconds = d.RequestTimeoutSeconds
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = d.MaxUploadBytes
	}
	if c.StatusPollAttempts <= 0 {
		c.StatusPollAttempts = d.StatusPollAttempts
	}
	if c.Player == "" {
		c.Player = d.Player
	}
	if c.MPVPath == "" {
		c.MPVPath = d.MPVPath
	}
	if c.ColorTheme == "" {
		c.ColorTheme = d.ColorTheme
	}
	if c.ExportFormat == "" {
		c.ExportFormat = d.ExportFormat
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	c.BackendURL = strings.TrimRight(c.BackendURL, "/")
	c.Player = strings.ToLower(c.Player)
	c.LogLevel = strings.ToLower(c.LogLevel)
}

// Validate checks every field against its constraints
func (c *Config) Validate() error {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
	})

	err := v.Struct(c)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		msgs := make([]string, 0, len(ve))
		for _, fe := range ve {
			msgs = append(msgs, fmt.Sprintf("%s: failed %q (got %v)", fe.Field(), fe.Tag(), fe.Value()))
		}
		return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
	}
	return fmt.Errorf("invalid config: %w", err)
}

// RequestTimeout returns the per-request backend timeout
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// StatusPollInterval returns the delay between transcript status checks
func (c *Config) StatusPollInterval() time.Duration {
	return time.Duration(c.StatusPollIntervalMS) * time.Millisecond
}

// WatchDebounce returns the quiet period before a new file is picked up
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.WatchDebounceMS) * time.Millisecond
}

// Save persists the current configuration to the specified file path
func (c *Config) Save(path string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Keys returns the YAML keys in declaration order
func Keys() []string {
	return []string{
		"backend_url",
		"request_timeout_seconds",
		"max_upload_bytes",
		"status_poll_interval_ms",
		"status_poll_attempts",
		"player",
		"mpv_path",
		"strict_clear",
		"color_theme",
		"export_format",
		"log_level",
		"watch_debounce_ms",
	}
}

// Get returns the value of a key rendered as YAML scalar text
func (c *Config) Get(key string) (string, error) {
	m, err := c.asMap()
	if err != nil {
		return "", err
	}
	v, ok := m[key]
	if !ok {
		return "", fmt.Errorf("unknown config key %q", key)
	}
	return fmt.Sprint(v), nil
}

// Set parses value with YAML rules into key and validates the result
func (c *Config) Set(key, value string) error {
	m, err := c.asMap()
	if err != nil {
		return err
	}
	if _, ok := m[key]; !ok {
		return fmt.Errorf("unknown config key %q", key)
	}

	var parsed any
	if err := yaml.Unmarshal([]byte(value), &parsed); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	m[key] = parsed

	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	next := *c
	if err := yaml.Unmarshal(data, &next); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

func (c *Config) asMap() (map[string]any, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, err
	}
	m := make(map[string]any)
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
