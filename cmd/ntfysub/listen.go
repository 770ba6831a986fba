package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/arloliu/ntfysub"
	"github.com/arloliu/ntfysub/internal/config"
	"github.com/spf13/cobra"
)

const (
	ListenCmdLiteral = "listen"
	ListenCmdExample = `# Follow a public topic
ntfysub listen --endpoint https://ntfy.sh --topic alerts

# Resume after a known timestamp on a protected server
ntfysub listen --endpoint https://ntfy.example.com --topic builds --since 1635528757 \
  --username ci --password secret`
)

type listenFlags struct {
	endpoint    string
	topic       string
	since       uint64
	username    string
	password    string
	logLevel    string
	logFormat   string
	metricsAddr string
}

func newListenCmd() *cobra.Command {
	var f listenFlags

	cmd := &cobra.Command{
		Use:     ListenCmdLiteral,
		Short:   "Subscribe to a single topic",
		Example: ListenCmdExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := f.config()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runDaemon(ctx, cfg, daemonOptions{stdout: cmd.OutOrStdout(), stderr: cmd.ErrOrStderr()})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.endpoint, "endpoint", "https://ntfy.sh", "ntfy server base URL")
	flags.StringVarP(&f.topic, "topic", "t", "", "topic to subscribe to")
	flags.Uint64Var(&f.since, "since", 0, "resume after this unix timestamp (0 for all cached messages)")
	flags.StringVarP(&f.username, "username", "u", "", "basic auth username")
	flags.StringVarP(&f.password, "password", "p", "", "basic auth password")
	flags.StringVar(&f.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flags.StringVar(&f.logFormat, "log-format", "text", "log format (text, json)")
	flags.StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address when set")
	_ = cmd.MarkFlagRequired("topic")

	return cmd
}

// config turns the flags into a normalized daemon configuration.
func (f *listenFlags) config() (*config.Config, error) {
	sub := ntfysub.DefaultConfig()
	sub.Endpoint = f.endpoint
	sub.Topic = f.topic
	sub.Since = f.since

	cfg := &config.Config{
		Log:           config.LogConfig{Level: f.logLevel, Format: f.logFormat},
		Subscriptions: []ntfysub.Config{sub},
	}
	if f.metricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Address = f.metricsAddr
	}
	if f.username != "" {
		cfg.Credentials = []config.CredentialConfig{{
			Endpoint: f.endpoint,
			Username: f.username,
			Password: f.password,
		}}
	}

	if err := cfg.Normalize(); err != nil {
		return nil, err
	}

	return cfg, nil
}
