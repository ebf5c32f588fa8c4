package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "ovation/contexts/voting-core/payment-reconciliation/application"
	"ovation/contexts/voting-core/payment-reconciliation/domain/entities"
	domainerrors "ovation/contexts/voting-core/payment-reconciliation/domain/errors"
	"ovation/contexts/voting-core/payment-reconciliation/ports"
)

// ReconcileCommand confirms one payment's final outcome with the gateway and
// applies its effect.
type ReconcileCommand struct {
	Reference string
}

// ReconcileResult reports the transaction's status after reconciliation.
// VotesCredited is non-zero only on the call that actually performed the
// credit; a replay of an already-settled reference reports Replayed with zero
// new credit.
type ReconcileResult struct {
	Reference     string
	Status        entities.TransactionStatus
	CandidateID   string
	VotesCredited int64
	Replayed      bool
}

// ReconcileUseCase drives the pending -> success/failed transition. Network
// faults talking to the gateway leave the row pending and are retryable;
// provider-terminal outcomes settle exactly once through the repository's
// conditional settle.
type ReconcileUseCase struct {
	Transactions ports.TransactionRepository
	Gateway      ports.Gateway
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Logger       *slog.Logger
}

func (uc ReconcileUseCase) Reconcile(ctx context.Context, cmd ReconcileCommand) (ReconcileResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	reference := strings.TrimSpace(cmd.Reference)
	if reference == "" {
		return ReconcileResult{}, domainerrors.ErrTransactionNotFound
	}

	logger.Info("reconciliation started",
		"event", "reconciliation_verify_started",
		"module", "voting-core/payment-reconciliation",
		"layer", "application",
		"reference", reference,
	)

	txn, err := uc.Transactions.GetTransactionByReference(ctx, reference)
	if err != nil {
		return ReconcileResult{}, err
	}

	if txn.Terminal() {
		// Settled earlier, by this caller or a racing one. Report the prior
		// outcome without touching the gateway or the ledger.
		logger.Info("reconciliation replayed",
			"event", "reconciliation_verify_replayed",
			"module", "voting-core/payment-reconciliation",
			"layer", "application",
			"reference", reference,
			"status", string(txn.Status),
		)
		return ReconcileResult{
			Reference:   reference,
			Status:      txn.Status,
			CandidateID: txn.CandidateID,
			Replayed:    true,
		}, nil
	}

	verify, err := uc.Gateway.Verify(ctx, reference)
	if err != nil {
		logger.Warn("gateway verification unreachable",
			"event", "reconciliation_verify_unreachable",
			"module", "voting-core/payment-reconciliation",
			"layer", "application",
			"reference", reference,
			"error", err.Error(),
		)
		return ReconcileResult{}, fmt.Errorf("%w: %s", domainerrors.ErrVerificationUnreachable, err)
	}

	now := uc.now()
	switch {
	case verify.Status == ports.VerifyStatusSuccess:
		// The event rides in the settle unit: the status flip, the credit and
		// the outbox row commit together. The repository drops the event when
		// the settle does not apply.
		event, err := uc.reconciledEvent(ctx, txn, entities.StatusSuccess, now)
		if err != nil {
			return ReconcileResult{}, err
		}
		outcome, err := uc.Transactions.SettleSuccess(ctx, reference, now, event)
		if err != nil {
			return ReconcileResult{}, err
		}
		credited := int64(0)
		if outcome.Applied {
			credited = outcome.Transaction.VoteCount
		}
		logger.Info("payment reconciled",
			"event", "reconciliation_settled_success",
			"module", "voting-core/payment-reconciliation",
			"layer", "application",
			"reference", reference,
			"candidate_id", outcome.Transaction.CandidateID,
			"votes_credited", credited,
			"replayed", !outcome.Applied,
		)
		return ReconcileResult{
			Reference:     reference,
			Status:        entities.StatusSuccess,
			CandidateID:   outcome.Transaction.CandidateID,
			VotesCredited: credited,
			Replayed:      !outcome.Applied,
		}, nil

	case verify.Status.Terminal():
		event, err := uc.reconciledEvent(ctx, txn, entities.StatusFailed, now)
		if err != nil {
			return ReconcileResult{}, err
		}
		outcome, err := uc.Transactions.SettleFailure(ctx, reference, now, event)
		if err != nil {
			return ReconcileResult{}, err
		}
		logger.Info("payment reconciled as failed",
			"event", "reconciliation_settled_failed",
			"module", "voting-core/payment-reconciliation",
			"layer", "application",
			"reference", reference,
			"provider_status", string(verify.Status),
			"provider_message", verify.GatewayMessage,
		)
		return ReconcileResult{
			Reference:   reference,
			Status:      outcome.Transaction.Status,
			CandidateID: outcome.Transaction.CandidateID,
			Replayed:    !outcome.Applied,
		}, nil

	default:
		// Provider has no terminal outcome yet (still pending, or it does not
		// know the reference). The row stays pending so the caller can retry.
		logger.Info("reconciliation inconclusive",
			"event", "reconciliation_verify_inconclusive",
			"module", "voting-core/payment-reconciliation",
			"layer", "application",
			"reference", reference,
			"provider_status", string(verify.Status),
		)
		return ReconcileResult{
			Reference:   reference,
			Status:      entities.StatusPending,
			CandidateID: txn.CandidateID,
		}, nil
	}
}

func (uc ReconcileUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

// reconciledEvent builds the payment.reconciled envelope for the settle the
// caller is about to attempt, stamped with the target status.
func (uc ReconcileUseCase) reconciledEvent(
	ctx context.Context,
	txn entities.Transaction,
	toStatus entities.TransactionStatus,
	occurredAt time.Time,
) (*ports.EventEnvelope, error) {
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return nil, err
	}
	settled := txn
	settled.Status = toStatus
	settled.UpdatedAt = occurredAt.UTC()
	envelope, err := newPaymentEnvelope(eventID, "payment.reconciled", settled, occurredAt, nil)
	if err != nil {
		return nil, err
	}
	return &envelope, nil
}
