package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Default config file path.
const DefaultConfigPath = "~/.config/lifelog/config.yaml"

// Environment variables that override file settings.
const (
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvGeminiModel  = "GEMINI_MODEL"
	EnvDatabasePath = "LIFELOG_DATABASE_PATH"
	EnvImageDir     = "LIFELOG_IMAGE_DIR"
)

// ErrMissingAPIKey is returned by ValidateClassifier when no key is set.
var ErrMissingAPIKey = errors.New("classifier api key is not set (set " + EnvGeminiAPIKey + " or classifier.api_key)")

// Config holds all lifelog configuration.
type Config struct {
	Storage    StorageConfig    `yaml:"storage"`
	Images     ImagesConfig     `yaml:"images"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Web        WebConfig        `yaml:"web"`
	Logging    LoggingConfig    `yaml:"logging"`
	Time       TimeConfig       `yaml:"time"`
}

type StorageConfig struct {
	Path       string `yaml:"path"`
	SQLiteFile string `yaml:"sqlite_file"`
	// DatabasePath, when set, replaces Path/SQLiteFile.
	DatabasePath string `yaml:"database_path"`
}

type ImagesConfig struct {
	// Dir is relative to storage.path unless absolute.
	Dir string `yaml:"dir"`
}

type ClassifierConfig struct {
	APIKey         string `yaml:"api_key"`
	Model          string `yaml:"model"`
	Endpoint       string `yaml:"endpoint"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxRetries     int    `yaml:"max_retries"`
}

type WebConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type TimeConfig struct {
	// Timezone is an IANA name defining calendar days. Empty means the
	// system's local zone.
	Timezone string `yaml:"timezone"`
}

// Load reads a YAML config file at path, merges it with defaults and applies
// environment overrides. Returns an error if the file cannot be read or
// contains invalid YAML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.ApplyEnv(os.Getenv)
	return cfg, nil
}

// ApplyEnv overrides settings from environment variables looked up with
// getenv. Empty values are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvGeminiAPIKey); v != "" {
		c.Classifier.APIKey = v
	}
	if v := getenv(EnvGeminiModel); v != "" {
		c.Classifier.Model = v
	}
	if v := getenv(EnvDatabasePath); v != "" {
		c.Storage.DatabasePath = v
	}
	if v := getenv(EnvImageDir); v != "" {
		c.Images.Dir = v
	}
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// DatabasePath returns the resolved SQLite file path.
func (c *Config) DatabasePath() (string, error) {
	if c.Storage.DatabasePath != "" {
		return expandPath(c.Storage.DatabasePath)
	}
	base, err := expandPath(c.Storage.Path)
	if err != nil {
		return "", err
	}
	return filepath.Join(base, c.Storage.SQLiteFile), nil
}

// ImageDir returns the resolved directory captured images are copied into.
func (c *Config) ImageDir() (string, error) {
	dir, err := expandPath(c.Images.Dir)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(dir) {
		return dir, nil
	}
	base, err := expandPath(c.Storage.Path)
	if err != nil {
		return "", err
	}
	return filepath.Join(base, dir), nil
}

// Location returns the time zone that defines calendar days.
func (c *Config) Location() (*time.Location, error) {
	if c.Time.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Time.Timezone)
	if err != nil {
		return nil, fmt.Errorf("time.timezone: %w", err)
	}
	return loc, nil
}

// Validate checks settings every command depends on.
func (c *Config) Validate() error {
	if c.Storage.DatabasePath == "" && (c.Storage.Path == "" || c.Storage.SQLiteFile == "") {
		return errors.New("storage: path and sqlite_file (or database_path) are required")
	}
	if c.Web.Port < 0 || c.Web.Port > 65535 {
		return fmt.Errorf("web.port %d out of range", c.Web.Port)
	}
	if c.Classifier.TimeoutSeconds <= 0 {
		return fmt.Errorf("classifier.timeout_seconds must be positive, got %d", c.Classifier.TimeoutSeconds)
	}
	if c.Classifier.MaxRetries < 0 {
		return fmt.Errorf("classifier.max_retries must not be negative, got %d", c.Classifier.MaxRetries)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// ValidateClassifier checks the settings needed to call the classifier.
func (c *Config) ValidateClassifier() error {
	if c.Classifier.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// LoadOrCreate loads the config from the default path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreate() (*Config, error) {
	path, err := expandPath(DefaultConfigPath)
	if err != nil {
		return nil, err
	}
	return LoadOrCreateAt(path)
}

// LoadOrCreateAt loads the config from the given path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreateAt(path string) (*Config, error) {
	path, err := expandPath(path)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()

		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshaling default config: %w", err)
		}

		if err := os.WriteFile(path, data, 0600); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}

		cfg.ApplyEnv(os.Getenv)
		return cfg, nil
	}

	return Load(path)
}
