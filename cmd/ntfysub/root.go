package main

import (
	"github.com/arloliu/ntfysub"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ntfysub",
		Short:         "Subscribe to ntfy topics",
		Long:          "ntfysub keeps long-lived subscriptions to ntfy topics, reconnecting with backoff, and prints every message as a JSON line on stdout.",
		Version:       ntfysub.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newListenCmd())
	cmd.AddCommand(newRunCmd())

	return cmd
}
