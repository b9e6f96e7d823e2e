package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jefftt/s3edit/internal/service/packager"
)

var errBadBuild = errors.New("build must look like os/arch=path")

var (
	packageOptions packager.Options
	// builds are raw os/arch=path values.
	builds []string

	packageCmd = &cobra.Command{
		Use:   "package",
		Short: "Archive release builds and write the formula",
		Example: `  s3edit-formula package --version 0.0.1 \
    --build darwin/amd64=target/x86_64-apple-darwin/release/s3edit \
    --build linux/amd64=target/x86_64-unknown-linux-musl/release/s3edit`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			parsed, err := parseBuilds(builds)
			if err != nil {
				return err
			}

			options := packageOptions
			options.Builds = parsed

			_, err = packager.Run(ctx, &options)

			return err
		},
	}
)

// parseBuilds turns os/arch=path values into a map.
func parseBuilds(values []string) (map[string]string, error) {
	result := make(map[string]string, len(values))

	for _, value := range values {
		platform, path, ok := strings.Cut(value, "=")
		if !ok || platform == "" || path == "" {
			return nil, fmt.Errorf("%w: %q", errBadBuild, value)
		}

		result[platform] = path
	}

	return result, nil
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := packageCmd.Flags()

	flags.StringVar(&packageOptions.Name, "name", "s3edit", "package name")
	flags.StringVar(&packageOptions.Version, "version", "", "release version")
	flags.StringVar(&packageOptions.Desc, "desc", "Make bulk S3 edits", "one-line description")
	flags.StringVar(&packageOptions.Homepage, "homepage", "https://github.com/jefftt/s3edit", "project URL")
	flags.StringVar(&packageOptions.URLTemplate, "url-template", "",
		"download URL of the archives, may use {version} and {target} (default: GitHub release of --homepage)")
	flags.StringSliceVar(&packageOptions.Binaries, "bin", nil, "binaries to install (default: --name)")
	flags.StringArrayVar(&builds, "build", nil, "build output as os/arch=path, repeatable")
	flags.StringVarP(&packageOptions.OutputDir, "output-dir", "o", "dist", "directory for archives and formulas")
	flags.BoolVar(&packageOptions.Force, "force", false, "replace a stored formula of the same version")

	_ = packageCmd.MarkFlagRequired("version")
	_ = packageCmd.MarkFlagRequired("build")
}
