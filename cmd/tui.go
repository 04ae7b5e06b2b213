package cmd

import (
	"context"

	"github.com/bnema/msgdash/internal/adapters/tui"
	"github.com/bnema/msgdash/internal/application"
	"github.com/bnema/msgdash/internal/domain"
	"github.com/spf13/cobra"
)

func newTUICmd(a *app) *cobra.Command {
	var (
		start, end string
		exportPath string
	)

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			dateRange, err := domain.ParseDateRangeWindow(start, end, a.clock.Now(), a.cfg.DefaultWindow())
			if err != nil {
				return err
			}

			return tui.Run(ctx, a.service, tui.Options{
				SessionID:     application.DefaultSessionID,
				Credentials:   a.cfg.Credentials,
				Range:         dateRange,
				MaxRecipients: a.cfg.Filter.MaxRecipients,
				ExportPath:    exportPath,
				Window:        a.cfg.DefaultWindow(),
				Now:           a.clock.Now,
			}, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "First day to fetch, YYYY-MM-DD")
	cmd.Flags().StringVar(&end, "end", "", "Day the range stops at, YYYY-MM-DD")
	cmd.Flags().StringVar(&exportPath, "export-path", "", "File written by the export key (default mensagens_whatsapp.csv)")

	return cmd
}
