package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/bnema/msgdash/internal/adapters/render/dashboard"
	"github.com/bnema/msgdash/internal/adapters/web"
	"github.com/bnema/msgdash/internal/application"
	"github.com/spf13/cobra"
)

func newMessagesCmd(a *app) *cobra.Command {
	flags := &fetchFlags{}
	var (
		jsonOutput bool
		csvPath    string
		maxRows    int
		full       bool
	)

	cmd := &cobra.Command{
		Use:     "messages",
		Aliases: []string{"dashboard"},
		Short:   "Fetch messages and print the dashboard",
		Example: "  msgdash messages --start 2026-09-01 --end 2026-09-08\n" +
			"  msgdash messages --recipient whatsapp:+5511999990000 --direction outbound-api --json",
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := a.loadDashboard(cmd, flags, !jsonOutput)
			if err != nil {
				return err
			}

			if csvPath != "" {
				written, err := writeCSVFile(csvPath, d.Records, full)
				if err != nil {
					return err
				}
				a.logger.Info("csv exported", "path", csvPath, "rows", written)
			}

			if jsonOutput {
				return writeJSONOutput(cmd.OutOrStdout(), web.NewDashboardResponse(d))
			}

			return a.printDashboard(cmd.OutOrStdout(), d, dashboard.RenderOptions{MaxRows: maxRows})
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the dashboard as JSON")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Also write the filtered messages to this CSV file")
	cmd.Flags().BoolVar(&full, "full", false, "Include every message field in the CSV file")
	cmd.Flags().IntVar(&maxRows, "rows", 50, "Rows shown in the messages table (0 for all)")

	return cmd
}

func (a *app) printDashboard(w io.Writer, d application.Dashboard, opts dashboard.RenderOptions) error {
	rendered, err := a.renderer(d, opts)
	if err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}

	_, err = fmt.Fprintln(w, rendered)
	return err
}

func writeJSONOutput(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
