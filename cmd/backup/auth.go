package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/semmidev/snapvault/internal/app"
	"github.com/semmidev/snapvault/internal/config"
	"github.com/semmidev/snapvault/internal/infrastructure/logger"
	"github.com/spf13/cobra"
)

func newAuthGDriveCmd(root *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "auth:gdrive",
		Short: "Authorize Google Drive and print a refresh token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			secretFile, err := app.ClientSecretFile(cfg)
			if err != nil {
				return err
			}

			log, err := logger.New(cfg.App.LogLevel, cfg.App.LogFile)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer log.Close()

			authorizer, err := app.NewDriveAuthorizer(log, secretFile, callbackURL(addr))
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			token, err := authorizer.Authorize(ctx, addr)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "refresh_token: %s\n", token)
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8085", "listen address for the OAuth callback server")

	return cmd
}

func callbackURL(addr string) string {
	host := addr
	if len(host) > 0 && host[0] == ':' {
		host = "localhost" + host
	}
	return "http://" + host + "/auth/google/callback"
}
