package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	verbose    bool
	accountSID string
	authToken  string
}

func Execute() error {
	return ExecuteContext(context.Background())
}

func ExecuteContext(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	return newRootCommand(newApp())
}

func newRootCommand(a *app) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "msgdash",
		Short: "WhatsApp message dashboard for Twilio accounts",
		Long: "msgdash fetches the WhatsApp messages of a Twilio account for a date range, filters them by " +
			"recipient and direction, and shows status counts, charts, and a CSV export in the terminal, " +
			"an interactive TUI, or a local HTTP dashboard.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a.logger = newLogger(cmd.ErrOrStderr(), opts.verbose)
			if skipsWiring(cmd) {
				return nil
			}
			return a.wire(opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Config file (default $HOME/.msgdash/config.toml)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	flags.StringVar(&opts.accountSID, "account-sid", "", "Twilio account SID (default from config or TWILIO_ACCOUNT_SID)")
	flags.StringVar(&opts.authToken, "auth-token", "", "Twilio auth token (default from config or TWILIO_AUTH_TOKEN)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(opts),
		newMessagesCmd(a),
		newExportCmd(a),
		newTUICmd(a),
		newServeCmd(a),
	)

	return rootCmd
}

// skipsWiring reports commands that must work without a readable config.
func skipsWiring(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "version", "config":
			return true
		}
	}
	return false
}

func newLogger(output io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: level}))
}
