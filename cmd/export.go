package cmd

import (
	"fmt"
	"os"

	csvexport "github.com/bnema/msgdash/internal/adapters/export/csv"
	"github.com/bnema/msgdash/internal/domain"
	"github.com/spf13/cobra"
)

func newExportCmd(a *app) *cobra.Command {
	flags := &fetchFlags{}
	var (
		output string
		full   bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Fetch messages and write the filtered table as CSV",
		Long: "Fetch messages for the range, apply the recipient and direction filters, and write the " +
			"result as CSV. Use --output - to write to stdout.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			toStdout := output == "-"

			d, err := a.loadDashboard(cmd, flags, !toStdout)
			if err != nil {
				return err
			}
			printNotices(cmd.ErrOrStderr(), d.Notices)

			if toStdout {
				return csvexport.Write(cmd.OutOrStdout(), d.Records, csvexport.Options{Full: full})
			}

			written, err := writeCSVFile(output, d.Records, full)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "exported %d rows to %s\n", written, output)
			return err
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", csvexport.FileName, "CSV file to write, - for stdout")
	cmd.Flags().BoolVar(&full, "full", false, "Include every message field")

	return cmd
}

func writeCSVFile(path string, records []domain.MessageRecord, full bool) (int, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create csv file: %w", err)
	}

	if err := csvexport.Write(f, records, csvexport.Options{Full: full}); err != nil {
		_ = f.Close()
		return 0, fmt.Errorf("write csv file: %w", err)
	}

	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close csv file: %w", err)
	}

	return len(records), nil
}
