package ports

import (
	"context"
	"time"

	"github.com/bnema/msgdash/internal/domain"
)

// MessageSource lists the messages sent at or after start and before end.
type MessageSource interface {
	ListMessages(ctx context.Context, creds domain.Credentials, start, end time.Time) ([]domain.MessageRecord, error)
}
