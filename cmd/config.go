package cmd

import (
	"fmt"

	"github.com/bnema/msgdash/internal/adapters/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
	}

	cmd.AddCommand(newConfigInitCmd(opts), newConfigShowCmd(opts))
	return cmd
}

func newConfigInitCmd(opts *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := configPath(opts)
			if err != nil {
				return err
			}

			if err := config.WriteDefault(path, force); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing config file")
	return cmd
}

func newConfigShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(viper.New(), opts.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			file := cfg.File
			if file == "" {
				file = "<none>"
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "file: %s\n", file)
			fmt.Fprintf(out, "credentials: %s\n", cfg.Credentials)
			fmt.Fprintf(out, "api: %s (page size %d, %.1f req/s, timeout %s)\n",
				cfg.API.BaseURL, cfg.API.PageSize, cfg.API.RequestsPerSecond, cfg.API.Timeout)
			fmt.Fprintf(out, "fetch: max age %d days, default window %d days\n", cfg.Fetch.MaxAgeDays, cfg.Fetch.DefaultDays)
			fmt.Fprintf(out, "filter: at most %d recipients\n", cfg.Filter.MaxRecipients)
			_, err = fmt.Fprintf(out, "server: %s\n", cfg.Server.Listen)
			return err
		},
	}
}

func configPath(opts *rootOptions) (string, error) {
	if opts.configPath != "" {
		return opts.configPath, nil
	}

	return config.DefaultPath()
}
