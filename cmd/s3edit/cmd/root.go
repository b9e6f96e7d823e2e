package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jefftt/s3edit/internal/config"
	"github.com/jefftt/s3edit/internal/logger"
	"github.com/jefftt/s3edit/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// rawURL is the s3://bucket/prefix every edit applies to.
	rawURL string
	// logLevel overrides the configured log level.
	logLevel string
	// region overrides the configured AWS region.
	region string
	// endpoint overrides the configured S3 endpoint.
	endpoint string
	// forcePathStyle enables path-style addressing.
	forcePathStyle bool

	// settings are loaded before any subcommand runs.
	settings *config.Config

	// rootCmd represents the base command for bulk S3 edits.
	rootCmd = &cobra.Command{
		Use:   "s3edit",
		Short: "Make bulk S3 edits",
		Long: `Applies an edit to every object under an s3://bucket/prefix URL.

Credentials and region come from the usual AWS environment variables and
shared config files. Settings may also be stored in s3edit.yaml.`,
		SilenceUsage:      true,
		PersistentPreRunE: loadSettings,
	}
)

// Execute runs the s3edit CLI and exits with non-zero status on error.
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

	flags := cmd.Flags()

	if flags.Changed("region") {
		cfg.Region = region
	}

	if flags.Changed("endpoint") {
		cfg.Endpoint = endpoint
	}

	if flags.Changed("force-path-style") {
		cfg.ForcePathStyle = forcePathStyle
	}

	if flags.Changed("log-level") {
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

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.PersistentFlags()

	flags.StringVarP(&configPath, "config", "c", "", "path to configuration file (default "+config.DefaultConfigFilename+" if present)")
	flags.StringVar(&rawURL, "url", "", "s3://bucket/prefix to edit recursively")
	flags.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flags.StringVar(&region, "region", "", "AWS region")
	flags.StringVar(&endpoint, "endpoint", "", "custom S3 endpoint URL")
	flags.BoolVar(&forcePathStyle, "force-path-style", false, "use path-style S3 addressing")

	rootCmd.AddCommand(jsonFieldRenameCmd)
}
