package ports

import (
	"context"
	"time"
)

type SessionRecord struct {
	SessionID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// SessionStore keeps active admin sessions. Get must treat a record whose
// ExpiresAt is before now as absent.
type SessionStore interface {
	Put(ctx context.Context, record SessionRecord) error
	Get(ctx context.Context, sessionID string, now time.Time) (SessionRecord, bool, error)
	Delete(ctx context.Context, sessionID string) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
