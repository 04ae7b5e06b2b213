package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/bnema/msgdash/internal/domain"
	"github.com/bnema/msgdash/internal/ports"
)

// Store keeps one fetched table per session in process memory. Nothing is
// written to disk; a restart drops every session.
type Store struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]domain.Session
}

var _ ports.SessionStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{sessions: map[domain.SessionID]domain.Session{}}
}

func (s *Store) Get(ctx context.Context, id domain.SessionID) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}

	return cloneSession(session), nil
}

// Save replaces whatever the session held before.
func (s *Store) Save(ctx context.Context, session domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ID] = cloneSession(session)
	return nil
}

func (s *Store) Delete(ctx context.Context, id domain.SessionID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// Len reports how many sessions are held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}

func cloneSession(session domain.Session) domain.Session {
	session.Records = slices.Clone(session.Records)
	if session.Records == nil {
		session.Records = []domain.MessageRecord{}
	}

	return session
}
