package memory

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"ovation/contexts/voting-core/payment-reconciliation/domain/entities"
	domainerrors "ovation/contexts/voting-core/payment-reconciliation/domain/errors"
	"ovation/contexts/voting-core/payment-reconciliation/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

type memoryCandidate struct {
	ref   ports.CandidateRef
	votes int64
}

type Store struct {
	mu sync.Mutex

	transactions map[string]entities.Transaction
	candidates   map[string]*memoryCandidate
	outbox       map[string]outboxRecord
	outboxErr    error
}

func NewStore() *Store {
	return &Store{
		transactions: make(map[string]entities.Transaction),
		candidates:   make(map[string]*memoryCandidate),
		outbox:       make(map[string]outboxRecord),
	}
}

// SetCandidate seeds a creditable candidate with the given starting counter.
func (s *Store) SetCandidate(ref ports.CandidateRef, votes int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates[strings.TrimSpace(ref.CandidateID)] = &memoryCandidate{
		ref:   ref,
		votes: votes,
	}
}

// CandidateVotes reads a seeded candidate's counter, for assertions.
func (s *Store) CandidateVotes(candidateID string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	candidate, ok := s.candidates[strings.TrimSpace(candidateID)]
	if !ok {
		return 0
	}
	return candidate.votes
}

// FailOutbox makes outbox writes fail with err until cleared with nil,
// scripting storage faults inside the transactional write units.
func (s *Store) FailOutbox(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outboxErr = err
}

func (s *Store) CreateTransaction(_ context.Context, txn entities.Transaction, event *ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reference := strings.TrimSpace(txn.Reference)
	if _, exists := s.transactions[reference]; exists {
		return domainerrors.ErrDuplicateReference
	}
	// Event first: a failed outbox write leaves no transaction behind,
	// matching the all-or-nothing database transaction.
	if err := s.appendOutboxLocked(event); err != nil {
		return err
	}
	s.transactions[reference] = txn
	return nil
}

func (s *Store) GetTransactionByReference(_ context.Context, reference string) (entities.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	txn, ok := s.transactions[strings.TrimSpace(reference)]
	if !ok {
		return entities.Transaction{}, domainerrors.ErrTransactionNotFound
	}
	return txn, nil
}

func (s *Store) SettleSuccess(_ context.Context, reference string, settledAt time.Time, event *ports.EventEnvelope) (ports.SettleOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	txn, ok := s.transactions[strings.TrimSpace(reference)]
	if !ok {
		return ports.SettleOutcome{}, domainerrors.ErrTransactionNotFound
	}
	if txn.Status != entities.StatusPending {
		return ports.SettleOutcome{Transaction: txn, Applied: false}, nil
	}
	candidate, ok := s.candidates[txn.CandidateID]
	if !ok {
		return ports.SettleOutcome{}, domainerrors.ErrCandidateNotFound
	}
	if err := s.appendOutboxLocked(event); err != nil {
		return ports.SettleOutcome{}, err
	}
	txn.Status = entities.StatusSuccess
	txn.UpdatedAt = settledAt.UTC()
	candidate.votes += txn.VoteCount
	s.transactions[txn.Reference] = txn
	return ports.SettleOutcome{Transaction: txn, Applied: true}, nil
}

func (s *Store) SettleFailure(_ context.Context, reference string, settledAt time.Time, event *ports.EventEnvelope) (ports.SettleOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	txn, ok := s.transactions[strings.TrimSpace(reference)]
	if !ok {
		return ports.SettleOutcome{}, domainerrors.ErrTransactionNotFound
	}
	if txn.Status != entities.StatusPending {
		return ports.SettleOutcome{Transaction: txn, Applied: false}, nil
	}
	if err := s.appendOutboxLocked(event); err != nil {
		return ports.SettleOutcome{}, err
	}
	txn.Status = entities.StatusFailed
	txn.UpdatedAt = settledAt.UTC()
	s.transactions[txn.Reference] = txn
	return ports.SettleOutcome{Transaction: txn, Applied: true}, nil
}

func (s *Store) ListTransactions(_ context.Context, limit int) ([]entities.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]entities.Transaction, 0, len(s.transactions))
	for _, txn := range s.transactions {
		items = append(items, txn)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) ListStalePending(_ context.Context, olderThan time.Time, limit int) ([]entities.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]entities.Transaction, 0)
	for _, txn := range s.transactions {
		if txn.Status == entities.StatusPending && txn.CreatedAt.Before(olderThan) {
			items = append(items, txn)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) GetCandidate(_ context.Context, candidateID string) (ports.CandidateRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	candidate, ok := s.candidates[strings.TrimSpace(candidateID)]
	if !ok {
		return ports.CandidateRef{}, domainerrors.ErrCandidateNotFound
	}
	return candidate.ref, nil
}

// appendOutboxLocked records the event under the held lock, so the caller's
// state mutation and the outbox row form one atomic unit.
func (s *Store) appendOutboxLocked(event *ports.EventEnvelope) error {
	if event == nil {
		return nil
	}
	if s.outboxErr != nil {
		return s.outboxErr
	}
	payload, err := marshalEnvelope(*event)
	if err != nil {
		return err
	}
	s.outbox[event.EventID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     event.EventID,
			EventType:    event.EventType,
			PartitionKey: event.PartitionKey,
			Payload:      payload,
			CreatedAt:    event.OccurredAt.UTC(),
		},
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]ports.OutboxMessage, 0)
	for _, record := range s.outbox {
		if record.published {
			continue
		}
		items = append(items, record.message)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxSent(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.outbox[outboxID]
	if !ok {
		return nil
	}
	record.published = true
	s.outbox[outboxID] = record
	return nil
}

func marshalEnvelope(event ports.EventEnvelope) ([]byte, error) {
	return json.Marshal(event)
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) NewReference() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "vote_" + base64.RawURLEncoding.EncodeToString(buf), nil
}
