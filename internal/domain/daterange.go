package domain

import (
	"fmt"
	"time"
)

const (
	DateLayout = "2006-01-02"

	// MaxQueryAge is how far back the remote API lets a message query reach.
	MaxQueryAge = 400 * 24 * time.Hour

	DefaultWindow = 7 * 24 * time.Hour
)

type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a range from calendar dates. Both bounds are truncated to
// midnight in the location of the supplied times.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: startOfDay(start), End: startOfDay(end)}
}

// DefaultDateRange ends today and starts window days earlier.
func DefaultDateRange(now time.Time, window time.Duration) DateRange {
	if window <= 0 {
		window = DefaultWindow
	}

	end := startOfDay(now)
	return NewDateRange(end.Add(-window), end)
}

// ParseDateRangeWindow parses YYYY-MM-DD bounds. A missing end means today and
// a missing start means window before the end.
func ParseDateRangeWindow(rawStart, rawEnd string, now time.Time, window time.Duration) (DateRange, error) {
	if window <= 0 {
		window = DefaultWindow
	}

	r := DefaultDateRange(now, window)
	if rawEnd != "" {
		end, err := time.ParseInLocation(DateLayout, rawEnd, now.Location())
		if err != nil {
			return DateRange{}, fmt.Errorf("parse end date %q: %w", rawEnd, err)
		}
		r = NewDateRange(end.Add(-window), end)
	}

	if rawStart != "" {
		start, err := time.ParseInLocation(DateLayout, rawStart, now.Location())
		if err != nil {
			return DateRange{}, fmt.Errorf("parse start date %q: %w", rawStart, err)
		}
		r.Start = start
	}

	return r, nil
}

// EndExclusive is midnight after the end day. Both bounds are inclusive
// calendar days, so remote queries run over [Start, EndExclusive).
func (r DateRange) EndExclusive() time.Time {
	return r.End.AddDate(0, 0, 1)
}

// Clamp moves Start forward to now-maxAge when it reaches further back.
func (r DateRange) Clamp(now time.Time, maxAge time.Duration) (DateRange, bool) {
	if maxAge <= 0 {
		return r, false
	}

	floor := now.Add(-maxAge)
	if r.Start.Before(floor) {
		r.Start = floor
		return r, true
	}

	return r, false
}

func (r DateRange) Validate() error {
	if r.Start.After(r.End) {
		return fmt.Errorf("%w: %s > %s", ErrInvalidDateRange, r.Start.Format(DateLayout), r.End.Format(DateLayout))
	}

	return nil
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
