package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/msgdash/internal/adapters/web"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var (
		listen       string
		secureCookie bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		Long: "Start a local HTTP server exposing the dashboard as a JSON API. Each browser session " +
			"gets its own fetched messages, kept in memory only.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if listen == "" {
				listen = a.cfg.Server.Listen
			}

			server := web.NewServer(web.Config{
				Listen:        listen,
				Credentials:   a.cfg.Credentials,
				DefaultWindow: a.cfg.DefaultWindow(),
				SecureCookie:  secureCookie,
				Now:           a.clock.Now,
			}, a.service, a.logger)

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start()
			}()

			fmt.Fprintf(cmd.OutOrStdout(), "Dashboard API listening on http://%s\n", listen)

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("dashboard server: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("shutdown dashboard server: %w", err)
			}

			return <-errCh
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Address to listen on (default from config, 127.0.0.1:8501)")
	cmd.Flags().BoolVar(&secureCookie, "secure-cookie", false, "Mark the session cookie Secure (behind HTTPS)")

	return cmd
}
