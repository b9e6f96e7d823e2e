package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks defaults and format validations for Config.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Defaults are filled in.
	settings := new(Config)
	require.NoError(t, Validate(settings))
	require.Equal(t, DefaultConcurrency, settings.Concurrency)
	require.Equal(t, DefaultTimeout, settings.Timeout)

	// Bad endpoint.
	settings = &Config{Endpoint: "not a uri"}
	require.Error(t, Validate(settings))

	// Bad log level.
	settings = &Config{LogLevel: "loud"}
	require.Error(t, Validate(settings))

	// Okay with endpoint.
	settings = &Config{
		Endpoint:       "http://localhost:4566",
		ForcePathStyle: true,
		Concurrency:    12,
	}
	require.NoError(t, Validate(settings))
	require.Equal(t, 12, settings.Concurrency)

	require.Error(t, Validate(nil))
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")

	settings := &Config{
		Region:      "eu-west-1",
		Concurrency: 8,
		Timeout:     30 * time.Second,
		LogLevel:    "debug",
		BinDir:      "/usr/local/bin",
	}

	require.NoError(t, Save(path, settings))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, settings, loaded)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestLoadExplicitMissing fails when an explicitly named file does not exist.
func TestLoadExplicitMissing(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestDefault returns validated defaults.
func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.Equal(t, DefaultConcurrency, cfg.Concurrency)
	require.Empty(t, cfg.Region)
}
