package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/semmidev/snapvault/internal/app"
	"github.com/semmidev/snapvault/internal/config"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "snapvault",
		Short: "Dump databases, zip them and copy the archive to every configured disk",
		Long: `snapvault dumps the configured databases, bundles the dumps and any extra
files into a single zip archive and copies it to every destination filesystem
(local, s3, gcs, azure, gdrive, telegram).

Examples:
  # Back up everything described in the config file
  snapvault backup:run --config=configs/config.yaml

  # Only dump databases, with a custom filename prefix
  snapvault backup:run --only-db --prefix=nightly-

  # Delete backups older than backup.retention_days
  snapvault backup:clean`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "configs/config.yaml", "path to config file")

	cmd.AddCommand(
		newBackupRunCmd(opts),
		newBackupCleanCmd(opts),
		newAuthGDriveCmd(opts),
	)

	return cmd
}

// withApp loads the config, wires the application and runs fn with a
// context cancelled on SIGINT or SIGTERM.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, application *app.App) error) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	application, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize app: %w", err)
	}
	defer application.Shutdown()

	return fn(ctx, application)
}
