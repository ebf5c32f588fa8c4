package unit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ovation/contexts/voting-core/payment-reconciliation/application/commands"
	workerapp "ovation/contexts/voting-core/payment-reconciliation/application/workers"
	"ovation/contexts/voting-core/payment-reconciliation/domain/entities"
	"ovation/contexts/voting-core/payment-reconciliation/ports"
)

type fixedClock struct {
	at time.Time
}

func (c fixedClock) Now() time.Time {
	return c.at
}

type capturingPublisher struct {
	mu     sync.Mutex
	topics []string
	events []ports.EventEnvelope
	err    error
}

func (p *capturingPublisher) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func TestPendingSweeperSettlesStaleTransactions(t *testing.T) {
	module := reconciliationModule()

	initiated, err := module.Initiations.Initiate(context.Background(), commands.InitiateCommand{
		CandidateID: "cand-1",
		VoteCount:   4,
		Email:       "voter@example.com",
	})
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}

	sweeper := workerapp.PendingSweeper{
		Transactions: module.Store,
		Reconcile:    module.Reconciliations,
		Clock:        fixedClock{at: time.Now().UTC().Add(time.Hour)},
		MinAge:       10 * time.Minute,
	}
	if err := sweeper.RunOnce(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	txn, err := module.Store.GetTransactionByReference(context.Background(), initiated.Reference)
	if err != nil {
		t.Fatalf("transaction lookup failed: %v", err)
	}
	if txn.Status != entities.StatusSuccess {
		t.Fatalf("sweep must settle the stale pending row, got %s", txn.Status)
	}
	if votes := module.Store.CandidateVotes("cand-1"); votes != 4 {
		t.Fatalf("sweep must credit the votes, got %d", votes)
	}

	// A second pass finds nothing pending and changes nothing.
	if err := sweeper.RunOnce(context.Background()); err != nil {
		t.Fatalf("idle sweep failed: %v", err)
	}
	if votes := module.Store.CandidateVotes("cand-1"); votes != 4 {
		t.Fatalf("idle sweep double-credited: %d votes", votes)
	}
}

func TestPendingSweeperSkipsFreshTransactions(t *testing.T) {
	module := reconciliationModule()

	initiated, err := module.Initiations.Initiate(context.Background(), commands.InitiateCommand{
		CandidateID: "cand-1",
		VoteCount:   1,
		Email:       "voter@example.com",
	})
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}

	sweeper := workerapp.PendingSweeper{
		Transactions: module.Store,
		Reconcile:    module.Reconciliations,
		MinAge:       10 * time.Minute,
	}
	if err := sweeper.RunOnce(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	txn, err := module.Store.GetTransactionByReference(context.Background(), initiated.Reference)
	if err != nil {
		t.Fatalf("transaction lookup failed: %v", err)
	}
	if txn.Status != entities.StatusPending {
		t.Fatalf("a fresh pending row is not the sweeper's to settle, got %s", txn.Status)
	}
}

func TestPendingSweeperToleratesUnreachableGateway(t *testing.T) {
	module := reconciliationModule()

	initiated, err := module.Initiations.Initiate(context.Background(), commands.InitiateCommand{
		CandidateID: "cand-1",
		VoteCount:   2,
		Email:       "voter@example.com",
	})
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}
	module.Gateway.FailVerify(errors.New("dial tcp: i/o timeout"))

	sweeper := workerapp.PendingSweeper{
		Transactions: module.Store,
		Reconcile:    module.Reconciliations,
		Clock:        fixedClock{at: time.Now().UTC().Add(time.Hour)},
		MinAge:       10 * time.Minute,
	}
	if err := sweeper.RunOnce(context.Background()); err != nil {
		t.Fatalf("sweep must absorb network faults, got %v", err)
	}

	txn, err := module.Store.GetTransactionByReference(context.Background(), initiated.Reference)
	if err != nil {
		t.Fatalf("transaction lookup failed: %v", err)
	}
	if txn.Status != entities.StatusPending {
		t.Fatalf("unreachable gateway must leave the row pending, got %s", txn.Status)
	}
}

func TestOutboxRelayPublishesAndAcknowledges(t *testing.T) {
	module := reconciliationModule()

	initiated, err := module.Initiations.Initiate(context.Background(), commands.InitiateCommand{
		CandidateID: "cand-1",
		VoteCount:   2,
		Email:       "voter@example.com",
	})
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}
	if _, err := module.Reconciliations.Reconcile(context.Background(), commands.ReconcileCommand{
		Reference: initiated.Reference,
	}); err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}

	publisher := &capturingPublisher{}
	relay := workerapp.OutboxRelay{
		Outbox:    module.Store,
		Publisher: publisher,
	}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay run failed: %v", err)
	}

	if len(publisher.events) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(publisher.events))
	}
	for _, topic := range publisher.topics {
		if topic != "payments.reconciled" {
			t.Fatalf("unexpected topic %s", topic)
		}
	}

	remaining, err := module.Store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list outbox failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("published rows must be acknowledged, %d still pending", len(remaining))
	}

	// A second run has nothing left to publish.
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("idle relay run failed: %v", err)
	}
	if len(publisher.events) != 2 {
		t.Fatalf("idle relay run re-published, got %d events", len(publisher.events))
	}
}

func TestOutboxRelayKeepsRowsOnPublishFailure(t *testing.T) {
	module := reconciliationModule()

	if _, err := module.Initiations.Initiate(context.Background(), commands.InitiateCommand{
		CandidateID: "cand-1",
		VoteCount:   1,
		Email:       "voter@example.com",
	}); err != nil {
		t.Fatalf("initiate failed: %v", err)
	}

	publisher := &capturingPublisher{err: errors.New("broker unavailable")}
	relay := workerapp.OutboxRelay{
		Outbox:    module.Store,
		Publisher: publisher,
	}
	_ = relay.RunOnce(context.Background())

	remaining, err := module.Store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list outbox failed: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("unpublished rows must stay pending, got %d", len(remaining))
	}
}
