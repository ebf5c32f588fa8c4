package memory

import (
	"context"
	"sync"
	"time"

	"ovation/contexts/identity-access/admin-session-service/ports"

	"github.com/google/uuid"
)

// Store is an in-memory session store for local development and tests.
type Store struct {
	mu       sync.Mutex
	sessions map[string]ports.SessionRecord
	now      time.Time
}

var _ ports.SessionStore = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)

func NewStore() *Store {
	return &Store{sessions: map[string]ports.SessionRecord{}}
}

func (s *Store) Put(_ context.Context, record ports.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[record.SessionID] = record
	return nil
}

func (s *Store) Get(_ context.Context, sessionID string, now time.Time) (ports.SessionRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.sessions[sessionID]
	if !ok {
		return ports.SessionRecord{}, false, nil
	}
	if !now.Before(record.ExpiresAt) {
		delete(s.sessions, sessionID)
		return ports.SessionRecord{}, false, nil
	}
	return record, true, nil
}

func (s *Store) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

func (s *Store) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.now.IsZero() {
		return time.Now().UTC()
	}
	return s.now
}

// SetNow pins the clock for deterministic expiry tests.
func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now.UTC()
}

func (s *Store) AdvanceNow(delta time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.now.IsZero() {
		s.now = time.Now().UTC()
	}
	s.now = s.now.Add(delta)
}

func (s *Store) NewID(context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
