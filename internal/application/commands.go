package application

import (
	"time"

	"github.com/bnema/msgdash/internal/domain"
)

type ReloadCommand struct {
	SessionID   domain.SessionID
	Credentials domain.Credentials
	Range       domain.DateRange
}

type ReloadResult struct {
	// Range is the effective range after clamping.
	Range     domain.DateRange
	Fetched   int
	FetchedAt time.Time
	Notices   []Notice
}
