package workers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	application "ovation/contexts/voting-core/payment-reconciliation/application"
	"ovation/contexts/voting-core/payment-reconciliation/application/commands"
	domainerrors "ovation/contexts/voting-core/payment-reconciliation/domain/errors"
	"ovation/contexts/voting-core/payment-reconciliation/ports"
)

// PendingSweeper re-runs reconciliation for transactions stuck in pending
// longer than MinAge. It is the operator-side retry loop for callbacks the
// voter never completed: each pass is safe because reconcile settles at most
// once per reference.
type PendingSweeper struct {
	Transactions ports.TransactionRepository
	Reconcile    commands.ReconcileUseCase
	Clock        ports.Clock
	MinAge       time.Duration
	BatchSize    int
	Logger       *slog.Logger
}

func (s PendingSweeper) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(s.Logger)
	limit := s.BatchSize
	if limit <= 0 {
		limit = 50
	}
	minAge := s.MinAge
	if minAge <= 0 {
		minAge = 10 * time.Minute
	}

	now := time.Now().UTC()
	if s.Clock != nil {
		now = s.Clock.Now().UTC()
	}

	stale, err := s.Transactions.ListStalePending(ctx, now.Add(-minAge), limit)
	if err != nil {
		logger.Error("stale pending listing failed",
			"event", "reconciliation_sweep_list_failed",
			"module", "voting-core/payment-reconciliation",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	swept := 0
	for _, txn := range stale {
		result, err := s.Reconcile.Reconcile(ctx, commands.ReconcileCommand{Reference: txn.Reference})
		if err != nil {
			if errors.Is(err, domainerrors.ErrVerificationUnreachable) {
				// Row stays pending; the next pass retries it.
				logger.Warn("sweep verification unreachable",
					"event", "reconciliation_sweep_unreachable",
					"module", "voting-core/payment-reconciliation",
					"layer", "worker",
					"reference", txn.Reference,
				)
				continue
			}
			logger.Error("sweep reconcile failed",
				"event", "reconciliation_sweep_reconcile_failed",
				"module", "voting-core/payment-reconciliation",
				"layer", "worker",
				"reference", txn.Reference,
				"error", err.Error(),
			)
			continue
		}
		swept++
		logger.Info("stale pending transaction swept",
			"event", "reconciliation_sweep_settled",
			"module", "voting-core/payment-reconciliation",
			"layer", "worker",
			"reference", txn.Reference,
			"status", string(result.Status),
			"votes_credited", result.VotesCredited,
		)
	}

	if len(stale) > 0 {
		logger.Info("pending sweep cycle completed",
			"event", "reconciliation_sweep_completed",
			"module", "voting-core/payment-reconciliation",
			"layer", "worker",
			"examined", len(stale),
			"settled", swept,
		)
	}
	return nil
}
