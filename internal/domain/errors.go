package domain

import "errors"

var (
	ErrInvalidDateRange   = errors.New("start date cannot be after end date")
	ErrMissingCredentials = errors.New("account sid and auth token are required")
	ErrAuthentication     = errors.New("credentials rejected by remote api")
	ErrTransientNetwork   = errors.New("remote api unreachable")
	ErrFetchFailed        = errors.New("remote api request failed")
	ErrSessionNotFound    = errors.New("session not found")
	ErrTooManyRecipients  = errors.New("too many recipients selected")
)
