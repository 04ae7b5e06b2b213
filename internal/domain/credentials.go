package domain

import (
	"fmt"
	"strings"
)

type Credentials struct {
	AccountSID string
	AuthToken  string
}

func (c Credentials) Validate() error {
	if strings.TrimSpace(c.AccountSID) == "" || strings.TrimSpace(c.AuthToken) == "" {
		return ErrMissingCredentials
	}

	return nil
}

// String never prints the auth token.
func (c Credentials) String() string {
	token := "<empty>"
	if c.AuthToken != "" {
		token = "****"
	}
	return fmt.Sprintf("%s:%s", c.AccountSID, token)
}
