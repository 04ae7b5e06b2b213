package domain

import "time"

type SessionID string

// Session is the per-session tabular store: the last successful fetch.
// It is replaced wholesale on every successful reload.
type Session struct {
	ID        SessionID
	Records   []MessageRecord
	Range     DateRange
	FetchedAt time.Time
}
