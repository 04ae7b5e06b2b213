package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/bnema/msgdash/internal/domain"
	"github.com/spf13/cobra"
)

// credentials returns the configured credentials, prompting for whatever is
// missing when stdin is a terminal.
func (a *app) credentials(cmd *cobra.Command) (domain.Credentials, error) {
	creds := a.cfg.Credentials
	if creds.Validate() == nil || !a.stdinIsTerminal() {
		return creds, nil
	}

	if strings.TrimSpace(creds.AccountSID) == "" {
		fmt.Fprint(cmd.ErrOrStderr(), "Twilio account SID: ")
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil {
			return creds, fmt.Errorf("read account sid: %w", err)
		}
		creds.AccountSID = strings.TrimSpace(line)
	}

	if strings.TrimSpace(creds.AuthToken) == "" {
		fmt.Fprint(cmd.ErrOrStderr(), "Twilio auth token: ")
		token, err := a.readPassword()
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return creds, fmt.Errorf("read auth token: %w", err)
		}
		creds.AuthToken = strings.TrimSpace(token)
	}

	a.cfg.Credentials = creds
	return creds, nil
}
