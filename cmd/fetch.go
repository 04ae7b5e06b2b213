package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/bnema/msgdash/internal/application"
	"github.com/bnema/msgdash/internal/domain"
	"github.com/spf13/cobra"
)

type fetchFlags struct {
	start         string
	end           string
	recipients    []string
	allRecipients bool
	directions    []string
}

func (f *fetchFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.start, "start", "", "First day to fetch, YYYY-MM-DD (default end minus the configured window)")
	flags.StringVar(&f.end, "end", "", "Day the range stops at, YYYY-MM-DD (default today)")
	flags.StringSliceVar(&f.recipients, "recipient", nil, "Keep only messages sent to this number (repeatable)")
	flags.BoolVar(&f.allRecipients, "all-recipients", false, "Keep every recipient, ignoring --recipient")
	flags.StringSliceVar(&f.directions, "direction", nil, "Keep only this direction (repeatable)")
}

func (f *fetchFlags) selection(cmd *cobra.Command) domain.FilterSelection {
	directions := make([]domain.Direction, 0, len(f.directions))
	for _, value := range f.directions {
		directions = append(directions, domain.Direction(value))
	}

	return domain.FilterSelection{
		Recipients: domain.RecipientSelection{
			All:    f.allRecipients || len(f.recipients) == 0,
			Values: f.recipients,
		},
		Directions: domain.DirectionSelection{
			Chosen: cmd.Flags().Changed("direction"),
			Values: directions,
		},
	}
}

// loadDashboard runs one reload into the local session and derives the
// filtered dashboard. Reload notices are merged in front of the dashboard's.
func (a *app) loadDashboard(cmd *cobra.Command, flags *fetchFlags, spin bool) (application.Dashboard, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	dateRange, err := domain.ParseDateRangeWindow(flags.start, flags.end, a.clock.Now(), a.cfg.DefaultWindow())
	if err != nil {
		return application.Dashboard{}, err
	}

	creds, err := a.credentials(cmd)
	if err != nil {
		return application.Dashboard{}, err
	}

	command := application.ReloadCommand{
		SessionID:   application.DefaultSessionID,
		Credentials: creds,
		Range:       dateRange,
	}

	var result application.ReloadResult
	reload := func(ctx context.Context) error {
		var reloadErr error
		result, reloadErr = a.service.Reload(ctx, command)
		return reloadErr
	}

	if spin && isTerminal(cmd.ErrOrStderr()) {
		err = runFetchSpinner(ctx, cmd.ErrOrStderr(), reload)
	} else {
		err = reload(ctx)
	}
	if err != nil {
		return application.Dashboard{}, reloadError(err)
	}

	dashboard, err := a.service.Dashboard(ctx, application.DashboardQuery{
		SessionID: application.DefaultSessionID,
		Selection: flags.selection(cmd),
	})
	if err != nil {
		return application.Dashboard{}, err
	}

	dashboard.Notices = append(append([]application.Notice{}, result.Notices...), dashboard.Notices...)
	return dashboard, nil
}

// reloadError keeps remote failure details out of user-facing output; the
// cause is logged by the service.
func reloadError(err error) error {
	var fetchErr *application.FetchError
	switch {
	case errors.As(err, &fetchErr):
		return errors.New(fetchErr.UserMessage())
	case errors.Is(err, domain.ErrMissingCredentials):
		return fmt.Errorf("%w: use --account-sid/--auth-token, TWILIO_ACCOUNT_SID/TWILIO_AUTH_TOKEN or the config file", err)
	default:
		return err
	}
}

func printNotices(w io.Writer, notices []application.Notice) {
	for _, notice := range notices {
		fmt.Fprintf(w, "%s: %s\n", notice.Level, notice.Message)
	}
}
