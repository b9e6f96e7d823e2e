package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jefftt/s3edit/internal/service/installer"
)

var (
	// binDir overrides the configured bin directory.
	binDir string
	// platform overrides the detected os/arch.
	platform string

	installCmd = &cobra.Command{
		Use:   "install [formula]",
		Short: "Download, verify and install the binary",
		Long: `Installs the binaries of a formula, given as a YAML file or an http(s) URL.

The artifact for this platform is downloaded and its sha256 checked before
anything is written to the bin directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			dir := settings.BinDir
			if cmd.Flags().Changed("bin-dir") {
				dir = binDir
			}

			_, err := installer.Run(ctx, &installer.Options{
				Formula:  args[0],
				BinDir:   dir,
				Platform: platform,
				Client:   newClient(),
			})

			return err
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := installCmd.Flags()

	flags.StringVar(&binDir, "bin-dir", "", "directory for the binaries (default $HOME/.local/bin)")
	flags.StringVar(&platform, "platform", "", "install for os/arch instead of this machine")
}
