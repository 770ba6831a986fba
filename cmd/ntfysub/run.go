package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/arloliu/ntfysub/internal/config"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every subscription from a configuration file",
		Long:  "Run loads a YAML configuration file and keeps one listener per configured subscription until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runDaemon(ctx, cfg, daemonOptions{stdout: cmd.OutOrStdout(), stderr: cmd.ErrOrStderr()})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "ntfysub.yaml", "path to configuration file")

	return cmd
}
