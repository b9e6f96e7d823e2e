package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jefftt/s3edit/internal/service/verifier"
)

var (
	// offline skips artifact downloads.
	offline bool

	checkCmd = &cobra.Command{
		Use:   "check [formula]",
		Short: "Lint a formula and verify its artifacts",
		Long: `Checks the formula fields and, unless --offline, downloads every artifact
and compares its sha256 with the declared one. Every problem is reported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			_, err := verifier.Run(ctx, &verifier.Options{
				Formula: args[0],
				Offline: offline,
				Client:  newClient(),
			})

			return err
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	checkCmd.Flags().BoolVar(&offline, "offline", false, "only lint, do not download artifacts")
}
