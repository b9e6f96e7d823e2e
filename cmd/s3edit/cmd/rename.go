package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jefftt/s3edit/internal/config"
	"github.com/jefftt/s3edit/internal/logger"
	"github.com/jefftt/s3edit/internal/repository/objects"
	"github.com/jefftt/s3edit/internal/service/editor"
)

var (
	// sourceField is the field to rename.
	sourceField string
	// targetField is the new field name.
	targetField string
	// parallelism is the number of objects edited at the same time.
	parallelism int
	// dryRun prints the new content instead of writing it.
	dryRun bool

	jsonFieldRenameCmd = &cobra.Command{
		Use:   "json-field-rename",
		Short: "Rename a field in every JSON-lines object",
		Long: `Renames a field in every JSON value of every object under --url.

--source is a plain key or a JSON pointer such as /meta/old. The renamed
value keeps its parent object. Objects without the field are not written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			store, err := objects.NewFromConfig(settings)
			if err != nil {
				return err
			}

			concurrency := settings.Concurrency
			if cmd.Flags().Changed("parallelism") {
				concurrency = parallelism
			}

			report, err := editor.RenameField(ctx, store, &editor.RenameOptions{
				URL:         rawURL,
				Source:      sourceField,
				Target:      targetField,
				Concurrency: concurrency,
				DryRun:      dryRun,
			})
			if err != nil {
				logger.ErrorKV(ctx, "Rename failed", "error", err)
				return err
			}

			logger.InfoKV(ctx, "Rename completed",
				"listed", report.Listed, "changed", report.Changed, "skipped", report.Skipped)

			return nil
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := jsonFieldRenameCmd.Flags()

	flags.StringVar(&sourceField, "source", "", "field to rename (key or JSON pointer)")
	flags.StringVar(&targetField, "target", "", "new field name")
	flags.IntVarP(&parallelism, "parallelism", "p", config.DefaultConcurrency, "number of objects edited at the same time")
	flags.BoolVar(&dryRun, "dry-run", false, "log the new content instead of writing it")

	_ = jsonFieldRenameCmd.MarkFlagRequired("source")
	_ = jsonFieldRenameCmd.MarkFlagRequired("target")
}
