package ports

import (
	"context"

	"github.com/bnema/msgdash/internal/domain"
)

type SessionStore interface {
	Get(ctx context.Context, id domain.SessionID) (domain.Session, error)
	Save(ctx context.Context, session domain.Session) error
	Delete(ctx context.Context, id domain.SessionID) error
}
