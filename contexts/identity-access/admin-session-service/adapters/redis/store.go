package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"ovation/contexts/identity-access/admin-session-service/ports"

	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "admin_session:"

// Store keeps session records in redis with native TTL expiry, so revocation
// survives API process restarts.
type Store struct {
	client *goredis.Client
	logger *slog.Logger
}

var _ ports.SessionStore = (*Store)(nil)

func NewStore(client *goredis.Client, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{client: client, logger: logger}
}

type sessionPayload struct {
	SessionID string    `json:"session_id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Store) Put(ctx context.Context, record ports.SessionRecord) error {
	payload, err := json.Marshal(sessionPayload{
		SessionID: record.SessionID,
		IssuedAt:  record.IssuedAt,
		ExpiresAt: record.ExpiresAt,
	})
	if err != nil {
		return err
	}
	ttl := time.Until(record.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, keyPrefix+record.SessionID, payload, ttl).Err(); err != nil {
		s.logError("admin_session_redis_put_failed", err)
		return err
	}
	return nil
}

func (s *Store) Get(ctx context.Context, sessionID string, now time.Time) (ports.SessionRecord, bool, error) {
	raw, err := s.client.Get(ctx, keyPrefix+sessionID).Bytes()
	if errors.Is(err, goredis.Nil) {
		return ports.SessionRecord{}, false, nil
	}
	if err != nil {
		s.logError("admin_session_redis_get_failed", err)
		return ports.SessionRecord{}, false, err
	}
	var payload sessionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ports.SessionRecord{}, false, err
	}
	// Redis TTL already reaps expired keys; this guards clock skew between
	// the caller's notion of now and the key's remaining TTL.
	if !now.Before(payload.ExpiresAt) {
		return ports.SessionRecord{}, false, nil
	}
	return ports.SessionRecord{
		SessionID: payload.SessionID,
		IssuedAt:  payload.IssuedAt,
		ExpiresAt: payload.ExpiresAt,
	}, true, nil
}

func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		s.logError("admin_session_redis_delete_failed", err)
		return err
	}
	return nil
}

func (s *Store) logError(event string, err error) {
	s.logger.Error("redis session store operation failed",
		"event", event,
		"module", "identity-access/admin-session-service",
		"layer", "adapters",
		"error", err.Error(),
	)
}
