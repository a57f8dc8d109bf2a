package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/semmidev/snapvault/internal/app"
	"github.com/semmidev/snapvault/internal/usecase"
	"github.com/spf13/cobra"
)

type backupFlags struct {
	onlyDB    bool
	onlyFiles bool
	prefix    string
	suffix    string
}

func newBackupRunCmd(root *rootOptions) *cobra.Command {
	flags := &backupFlags{}

	cmd := &cobra.Command{
		Use:   "backup:run",
		Short: "Run a backup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := flags.options(cmd)
			if err := opts.Validate(); err != nil {
				return err
			}
			return withApp(cmd, root, func(ctx context.Context, application *app.App) error {
				report, err := application.RunBackup(ctx, opts)
				if err != nil {
					return err
				}
				printReport(cmd.OutOrStdout(), report)
				return report.Err()
			})
		},
	}

	cmd.Flags().BoolVar(&flags.onlyDB, "only-db", false, "only dump databases")
	cmd.Flags().BoolVar(&flags.onlyFiles, "only-files", false, "only archive configured files")
	cmd.Flags().StringVar(&flags.prefix, "prefix", "", "archive filename prefix (overrides destination.prefix)")
	cmd.Flags().StringVar(&flags.suffix, "suffix", "", "archive filename suffix (overrides destination.suffix)")

	return cmd
}

// options maps the parsed flags onto use case options. Prefix and suffix
// only override the config when passed, even as an empty string.
func (f *backupFlags) options(cmd *cobra.Command) usecase.Options {
	opts := usecase.Options{
		OnlyDB:    f.onlyDB,
		OnlyFiles: f.onlyFiles,
	}
	if cmd.Flags().Changed("prefix") {
		prefix := f.prefix
		opts.Prefix = &prefix
	}
	if cmd.Flags().Changed("suffix") {
		suffix := f.suffix
		opts.Suffix = &suffix
	}
	return opts
}

func printReport(w io.Writer, report *usecase.Report) {
	if report.Status == usecase.StatusNothingToBackup {
		fmt.Fprintln(w, "Nothing to back up.")
		return
	}

	fmt.Fprintf(w, "Backup %s: %d file(s), %s\n",
		report.RunID, len(report.Archive.Entries), humanize.Bytes(uint64(report.Archive.Size)))

	for _, result := range report.Results {
		if result.Succeeded() {
			fmt.Fprintf(w, "  ✓ %-12s %s (%s)\n", result.Destination, result.Path, result.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(w, "  ✗ %-12s %v\n", result.Destination, result.Err)
		}
	}
}

func newBackupCleanCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "backup:clean",
		Short: "Delete backups older than backup.retention_days from every destination",
		Long: `Delete backups older than backup.retention_days from every destination.

Only archives named with the configured destination.prefix and destination.suffix
are considered, so archives published with a --prefix or --suffix override are
never pruned. Destinations that cannot be listed, such as telegram, are skipped.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, root, func(ctx context.Context, application *app.App) error {
				return application.RunCleanup(ctx)
			})
		},
	}
}
