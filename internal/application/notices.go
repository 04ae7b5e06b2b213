package application

import (
	"fmt"
	"time"

	"github.com/bnema/msgdash/internal/domain"
)

type NoticeLevel string

const (
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

type NoticeKind string

const (
	NoticeDateRangeClamped   NoticeKind = "date_range_clamped"
	NoticeNoData             NoticeKind = "no_data"
	NoticeInvalidDateRange   NoticeKind = "invalid_date_range"
	NoticeMissingCredentials NoticeKind = "missing_credentials"
	NoticeFetchFailed        NoticeKind = "fetch_failed"
)

type Notice struct {
	Level   NoticeLevel `json:"level"`
	Kind    NoticeKind  `json:"kind"`
	Message string      `json:"message"`
}

// FetchFailureMessage is shown for every fetch-path failure, whatever the cause.
const FetchFailureMessage = "Incorrect credentials or messages could not be fetched."

// FetchError wraps any failure of the remote call. The cause stays available
// through errors.Is/As; users only ever see FetchFailureMessage.
type FetchError struct {
	Cause error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch messages: %v", e.Cause)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

func (e *FetchError) UserMessage() string {
	return FetchFailureMessage
}

func clampedNotice(r domain.DateRange, maxAge time.Duration) Notice {
	return Notice{
		Level: NoticeWarning,
		Kind:  NoticeDateRangeClamped,
		Message: fmt.Sprintf("Start date was moved to %s to stay within the %d-day query window.",
			r.Start.Format(domain.DateLayout), int(maxAge.Hours()/24)),
	}
}

func noDataNotice() Notice {
	return Notice{
		Level:   NoticeWarning,
		Kind:    NoticeNoData,
		Message: "No messages loaded yet. Reload to fetch messages.",
	}
}

func invalidRangeNotice() Notice {
	return Notice{
		Level:   NoticeError,
		Kind:    NoticeInvalidDateRange,
		Message: "Start date cannot be after end date.",
	}
}

func missingCredentialsNotice() Notice {
	return Notice{
		Level:   NoticeError,
		Kind:    NoticeMissingCredentials,
		Message: "Provide the account SID and auth token.",
	}
}

func fetchFailedNotice() Notice {
	return Notice{
		Level:   NoticeError,
		Kind:    NoticeFetchFailed,
		Message: FetchFailureMessage,
	}
}
