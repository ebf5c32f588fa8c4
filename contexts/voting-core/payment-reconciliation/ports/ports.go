package ports

import (
	"context"
	"encoding/json"
	"time"

	"ovation/contexts/voting-core/payment-reconciliation/domain/entities"

	contractsv1 "ovation/contracts/gen/events/v1"
)

// SettleOutcome is the result of a conditional settle. Applied is false when
// the transaction had already left pending, which makes replayed and racing
// reconciliations safe no-ops.
type SettleOutcome struct {
	Transaction entities.Transaction
	Applied     bool
}

// TransactionRepository owns the payment ledger. SettleSuccess must perform
// the status transition and the candidate vote credit as one atomic unit
// guarded by a check-and-set on the pending status. Writes that carry a
// non-nil event persist the outbox row in the same atomic unit: either the
// ledger change and its event both land, or neither does. Settles that do not
// apply (already-terminal rows) write no event.
type TransactionRepository interface {
	CreateTransaction(ctx context.Context, txn entities.Transaction, event *EventEnvelope) error
	GetTransactionByReference(ctx context.Context, reference string) (entities.Transaction, error)
	SettleSuccess(ctx context.Context, reference string, settledAt time.Time, event *EventEnvelope) (SettleOutcome, error)
	SettleFailure(ctx context.Context, reference string, settledAt time.Time, event *EventEnvelope) (SettleOutcome, error)
	ListTransactions(ctx context.Context, limit int) ([]entities.Transaction, error)
	ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]entities.Transaction, error)
}

// CandidateRef is the engine's read view of a candidate; existence checks at
// initiation time need no more than this.
type CandidateRef struct {
	CandidateID string
	Name        string
	Club        string
}

type CandidateDirectory interface {
	GetCandidate(ctx context.Context, candidateID string) (CandidateRef, error)
}

type InitializeRequest struct {
	Email       string
	AmountMinor int64
	Reference   string
	CallbackURL string
	Metadata    map[string]any
}

type InitializeResult struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

type VerifyStatus string

const (
	VerifyStatusSuccess   VerifyStatus = "success"
	VerifyStatusFailed    VerifyStatus = "failed"
	VerifyStatusAbandoned VerifyStatus = "abandoned"
	VerifyStatusPending   VerifyStatus = "pending"
	VerifyStatusNotFound  VerifyStatus = "not_found"
)

// Terminal reports whether the provider considers the payment finished.
func (s VerifyStatus) Terminal() bool {
	return s == VerifyStatusSuccess || s == VerifyStatusFailed || s == VerifyStatusAbandoned
}

type VerifyResult struct {
	Status         VerifyStatus
	GatewayMessage string
	AmountMinor    int64
	Raw            json.RawMessage
}

// Gateway is the synchronous initialize/verify protocol of the payment
// provider. Provider-reported refusals surface as ErrGatewayDeclined; any
// other error is a network-layer fault. Implementations must apply a bounded
// timeout and an unknown reference on Verify yields VerifyStatusNotFound, not
// an error.
type Gateway interface {
	Initialize(ctx context.Context, req InitializeRequest) (InitializeResult, error)
	Verify(ctx context.Context, reference string) (VerifyResult, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// ReferenceGenerator mints the gateway correlation key. Implementations must
// source enough entropy to make collisions negligible and keep the value
// URL-safe.
type ReferenceGenerator interface {
	NewReference() (string, error)
}

// OutboxMessage is a row ready to relay from the module outbox.
type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

// EventEnvelope reuses the canonical cross-process envelope contract.
type EventEnvelope = contractsv1.Envelope

// OutboxRepository models worker-side outbox polling/acknowledgement.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error
}

// EventPublisher publishes canonical envelopes to a topic.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
