package bootstrap

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"ovation/contexts/voting-core/payment-reconciliation/adapters/memory"
	workerapp "ovation/contexts/voting-core/payment-reconciliation/application/workers"
	"ovation/contexts/voting-core/payment-reconciliation/domain/entities"
	"ovation/contexts/voting-core/payment-reconciliation/ports"
)

type brokenPublisher struct{}

func (brokenPublisher) Publish(context.Context, string, ports.EventEnvelope) error {
	return errors.New("broker unavailable")
}

func TestWorkerRunSurvivesFailingPasses(t *testing.T) {
	store := memory.NewStore()
	now := time.Now().UTC()
	event := ports.EventEnvelope{
		EventID:       "evt-1",
		EventType:     "payment.initiated",
		OccurredAt:    now,
		SourceService: "payment-reconciliation",
		SchemaVersion: 1,
		PartitionKey:  "vote_stuck",
	}
	err := store.CreateTransaction(context.Background(), entities.Transaction{
		TransactionID: "txn-1",
		Reference:     "vote_stuck",
		CandidateID:   "cand-1",
		VoteCount:     1,
		AmountMajor:   50,
		Email:         "voter@example.com",
		Status:        entities.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, &event)
	if err != nil {
		t.Fatalf("seed transaction failed: %v", err)
	}

	worker := &WorkerApp{
		outboxRelay: workerapp.OutboxRelay{
			Outbox:    store,
			Publisher: brokenPublisher{},
		},
		enableRelay:  true,
		pollInterval: 5 * time.Millisecond,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	// Every relay pass fails, yet the loop must keep ticking until the
	// context ends instead of exiting on the first fault.
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	if err := worker.Run(ctx); err != nil {
		t.Fatalf("worker run must outlast failing passes, got %v", err)
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list outbox failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("unpublished row must stay pending for later retries, got %d", len(pending))
	}
}
