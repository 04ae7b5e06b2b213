package csv

import (
	stdcsv "encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/bnema/msgdash/internal/domain"
)

const (
	FileName    = "mensagens_whatsapp.csv"
	ContentType = "text/csv"
)

// Columns shown in the dashboard table, in display order.
var Columns = []string{"To", "Body", "DateSent", "Status", "Direction"}

// FullColumns are appended after Columns when Options.Full is set.
var FullColumns = []string{
	"SID",
	"From",
	"NumSegments",
	"ErrorCode",
	"ErrorMessage",
	"URI",
	"DateCreated",
	"DateUpdated",
	"Price",
	"PriceUnit",
	"APIVersion",
}

type Options struct {
	Full bool
}

// Header returns the header row written for opts.
func Header(opts Options) []string {
	header := append([]string{}, Columns...)
	if opts.Full {
		header = append(header, FullColumns...)
	}

	return header
}

// Write emits the header then one row per record.
func Write(w io.Writer, records []domain.MessageRecord, opts Options) error {
	writer := stdcsv.NewWriter(w)

	if err := writer.Write(Header(opts)); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, record := range records {
		if err := writer.Write(Row(record, opts)); err != nil {
			return fmt.Errorf("write csv row %s: %w", record.SID, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	return nil
}

// Row formats one record the way the table shows it.
func Row(record domain.MessageRecord, opts Options) []string {
	row := []string{
		record.To,
		record.Body,
		FormatTime(record.DateSent),
		string(record.Status),
		string(record.Direction),
	}
	if !opts.Full {
		return row
	}

	return append(row,
		record.SID,
		record.From,
		strconv.Itoa(record.NumSegments),
		formatOptionalInt(record.ErrorCode),
		formatOptionalString(record.ErrorMessage),
		record.URI,
		FormatTime(record.DateCreated),
		FormatTime(record.DateUpdated),
		formatOptionalFloat(record.Price),
		record.PriceUnit,
		record.APIVersion,
	)
}

func FormatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.UTC().Format(time.RFC3339)
}

func formatOptionalInt(value *int) string {
	if value == nil {
		return ""
	}

	return strconv.Itoa(*value)
}

func formatOptionalString(value *string) string {
	if value == nil {
		return ""
	}

	return *value
}

func formatOptionalFloat(value *float64) string {
	if value == nil {
		return ""
	}

	return strconv.FormatFloat(*value, 'f', -1, 64)
}
