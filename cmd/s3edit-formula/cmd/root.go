package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jefftt/s3edit/internal/config"
	"github.com/jefftt/s3edit/internal/logger"
	"github.com/jefftt/s3edit/internal/service/common"
	"github.com/jefftt/s3edit/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// logLevel overrides the configured log level.
	logLevel string

	// settings are loaded before any subcommand runs.
	settings *config.Config

	// rootCmd represents the base command for managing the s3edit formula.
	rootCmd = &cobra.Command{
		Use:   "s3edit-formula",
		Short: "Package, check, render and install the s3edit formula",
		Long: `Manages the formula that tells a package manager where to download the
prebuilt s3edit binary, how to verify it and how to install it.

  package  archive release builds and write the formula
  check    lint a formula and verify its artifacts
  render   print the Homebrew Ruby formula
  install  download, verify and install the binary`,
		SilenceUsage:      true,
		PersistentPreRunE: loadSettings,
	}
)

// Execute runs the s3edit-formula CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadSettings reads the configuration file and applies flag overrides.
func loadSettings(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}

	if err = config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	level, _ := logger.ParseLogLevel(cfg.LogLevel)
	logger.SetLevel(level)

	settings = cfg

	return nil
}

// signalContext is cancelled on SIGINT and SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

// newClient builds the download client from the settings.
func newClient() *common.Client {
	return common.NewClient(common.WithCallTimeout(settings.Timeout))
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.PersistentFlags()

	flags.StringVarP(&configPath, "config", "c", "", "path to configuration file (default "+config.DefaultConfigFilename+" if present)")
	flags.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	rootCmd.AddCommand(packageCmd, checkCmd, renderCmd, installCmd)
}
