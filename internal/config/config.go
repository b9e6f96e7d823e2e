package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jefftt/s3edit/internal/logger"
)

// Config holds settings shared by s3edit and s3edit-formula.
type Config struct {
	// Region is the AWS region. Empty means the SDK default chain, then DefaultRegion.
	Region string `yaml:"region,omitempty"`
	// Endpoint overrides the S3 endpoint for S3-compatible stores (MinIO, LocalStack).
	Endpoint string `yaml:"endpoint,omitempty"`
	// ForcePathStyle enables path-style bucket addressing.
	ForcePathStyle bool `yaml:"force_path_style,omitempty"`
	// Concurrency is the maximum number of objects edited at the same time.
	Concurrency int `yaml:"concurrency"`
	// Timeout bounds every HTTP download made by the formula tools.
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level,omitempty"`
	// BinDir is where the installer places binaries.
	BinDir string `yaml:"bin_dir,omitempty"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "s3edit.yaml"

	// DefaultRegion is used when neither the settings nor the environment name a region.
	DefaultRegion = "us-east-1"

	// DefaultConcurrency is the number of objects processed at any given time.
	DefaultConcurrency = 5

	// DefaultTimeout is the default duration for downloads.
	DefaultTimeout = 2 * time.Minute

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errBadLogLevel is returned for an unknown log level name.
	errBadLogLevel = errors.New("unknown log level")
)

// Default returns settings with every default applied.
func Default() *Config {
	cfg := new(Config)
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates it.
// A missing file at the default path is not an error: defaults are returned.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes cfg to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills in defaults.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.Concurrency <= 0 {
		settings.Concurrency = DefaultConcurrency
	}

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if _, ok := logger.ParseLogLevel(settings.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errBadLogLevel, settings.LogLevel)
	}

	if settings.Endpoint == "" {
		return nil
	}

	if _, err := url.ParseRequestURI(settings.Endpoint); err != nil {
		return fmt.Errorf("invalid endpoint URI: %w", err)
	}

	return nil
}
