package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bnema/msgdash/internal/domain"
	"github.com/bnema/msgdash/internal/ports"
)

// DefaultSessionID is used by single-session surfaces (CLI, TUI).
const DefaultSessionID domain.SessionID = "local"

type Options struct {
	MaxQueryAge         time.Duration
	MaxManualRecipients int
}

func DefaultOptions() Options {
	return Options{
		MaxQueryAge:         domain.MaxQueryAge,
		MaxManualRecipients: domain.MaxManualRecipients,
	}
}

type Service struct {
	source   ports.MessageSource
	sessions ports.SessionStore
	clock    ports.Clock
	opts     Options
	logger   *slog.Logger
}

func NewService(source ports.MessageSource, sessions ports.SessionStore, clock ports.Clock, opts Options, logger *slog.Logger) *Service {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		source:   source,
		sessions: sessions,
		clock:    clock,
		opts:     opts,
		logger:   logger,
	}
}

func (s *Service) Options() Options {
	return s.opts
}

// CheckRange clamps the range to the query window and rejects inverted ranges.
// Reload runs it before every fetch; the TUI also runs it when dates are edited
// so the notices show before the fetch starts.
func (s *Service) CheckRange(r domain.DateRange) (domain.DateRange, []Notice, error) {
	notices := make([]Notice, 0, 2)

	effective, clamped := r.Clamp(s.clock.Now(), s.opts.MaxQueryAge)
	if clamped {
		s.logger.Warn("start date clamped to query window",
			"requested_start", r.Start.Format(time.RFC3339),
			"effective_start", effective.Start.Format(time.RFC3339),
		)
		notices = append(notices, clampedNotice(effective, s.opts.MaxQueryAge))
	}

	if err := effective.Validate(); err != nil {
		return effective, append(notices, invalidRangeNotice()), err
	}

	return effective, notices, nil
}

// Reload fetches the range and replaces the session wholesale. On any failure
// the previous session, if there is one, is left untouched.
func (s *Service) Reload(ctx context.Context, cmd ReloadCommand) (ReloadResult, error) {
	if err := cmd.Credentials.Validate(); err != nil {
		return ReloadResult{Range: cmd.Range, Notices: []Notice{missingCredentialsNotice()}}, err
	}

	effective, notices, err := s.CheckRange(cmd.Range)
	result := ReloadResult{Range: effective, Notices: notices}
	if err != nil {
		return result, err
	}

	s.logger.Info("fetching messages",
		"session", cmd.SessionID,
		"account", cmd.Credentials.AccountSID,
		"start", effective.Start.Format(time.RFC3339),
		"end", effective.End.Format(time.RFC3339),
	)

	records, err := s.source.ListMessages(ctx, cmd.Credentials, effective.Start, effective.EndExclusive())
	if err != nil {
		s.logger.Error("fetch messages failed", "session", cmd.SessionID, "error", err)
		result.Notices = append(result.Notices, fetchFailedNotice())
		return result, &FetchError{Cause: err}
	}

	fetchedAt := s.clock.Now()
	session := domain.Session{
		ID:        cmd.SessionID,
		Records:   records,
		Range:     effective,
		FetchedAt: fetchedAt,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return result, fmt.Errorf("save session: %w", err)
	}

	s.logger.Info("messages fetched", "session", cmd.SessionID, "count", len(records))

	result.Fetched = len(records)
	result.FetchedAt = fetchedAt
	return result, nil
}

// Dashboard derives the filtered view and its aggregates from the session.
func (s *Service) Dashboard(ctx context.Context, query DashboardQuery) (Dashboard, error) {
	session, err := s.sessions.Get(ctx, query.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return Dashboard{Notices: []Notice{noDataNotice()}}, nil
		}
		return Dashboard{}, fmt.Errorf("get session: %w", err)
	}

	if err := query.Selection.Recipients.ValidateManual(s.opts.MaxManualRecipients); err != nil {
		return Dashboard{}, err
	}

	resolved := ResolveSelection(session.Records, query.Selection)
	filtered := Apply(session.Records, resolved)

	return Dashboard{
		Loaded:           true,
		Range:            session.Range,
		FetchedAt:        session.FetchedAt,
		RecipientOptions: DistinctRecipients(session.Records),
		DirectionOptions: DirectionOptions(session.Records, resolved.Recipients),
		Selection:        resolved,
		Records:          filtered,
		Aggregate:        Summarize(filtered),
	}, nil
}

// EndSession discards the session state.
func (s *Service) EndSession(ctx context.Context, id domain.SessionID) error {
	if err := s.sessions.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}
