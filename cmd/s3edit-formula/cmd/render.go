package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jefftt/s3edit/internal/service/render"
)

var (
	// rubyOutput is the Ruby file to write.
	rubyOutput string

	renderCmd = &cobra.Command{
		Use:   "render [formula]",
		Short: "Print the Homebrew Ruby formula",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			return render.Run(ctx, &render.Options{
				Formula: args[0],
				Output:  rubyOutput,
				Out:     cmd.OutOrStdout(),
				Client:  newClient(),
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	renderCmd.Flags().StringVarP(&rubyOutput, "output", "o", "", "write to this file instead of stdout")
}
