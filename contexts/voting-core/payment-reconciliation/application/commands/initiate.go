package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "ovation/contexts/voting-core/payment-reconciliation/application"
	"ovation/contexts/voting-core/payment-reconciliation/domain/entities"
	domainerrors "ovation/contexts/voting-core/payment-reconciliation/domain/errors"
	"ovation/contexts/voting-core/payment-reconciliation/ports"
)

// InitiateCommand is the write-model input for a paid-vote attempt.
type InitiateCommand struct {
	CandidateID string
	VoteCount   int64
	Email       string
}

// InitiateResult carries the gateway authorization URL the caller redirects
// the voter to, plus the pending ledger row backing the attempt.
type InitiateResult struct {
	Reference        string
	AuthorizationURL string
	Transaction      entities.Transaction
}

// InitiateUseCase creates the pending transaction and asks the gateway for an
// authorization URL. The pending row is written before the gateway call and
// deliberately kept when the gateway refuses: it is the audit record that an
// initialization was attempted.
type InitiateUseCase struct {
	Transactions ports.TransactionRepository
	Candidates   ports.CandidateDirectory
	Gateway      ports.Gateway
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	RefGen       ports.ReferenceGenerator
	UnitPrice    int64
	CallbackURL  string
	Logger       *slog.Logger
}

func (uc InitiateUseCase) Initiate(ctx context.Context, cmd InitiateCommand) (InitiateResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	candidateID := strings.TrimSpace(cmd.CandidateID)
	email := strings.TrimSpace(cmd.Email)

	logger.Info("paid vote initiation started",
		"event", "reconciliation_initiate_started",
		"module", "voting-core/payment-reconciliation",
		"layer", "application",
		"candidate_id", candidateID,
		"vote_count", cmd.VoteCount,
	)

	if candidateID == "" || email == "" || cmd.VoteCount < 1 {
		logger.Warn("paid vote initiation validation failed",
			"event", "reconciliation_initiate_validation_failed",
			"module", "voting-core/payment-reconciliation",
			"layer", "application",
			"candidate_id", candidateID,
			"vote_count", cmd.VoteCount,
		)
		return InitiateResult{}, domainerrors.ErrInvalidVoteRequest
	}

	candidate, err := uc.Candidates.GetCandidate(ctx, candidateID)
	if err != nil {
		return InitiateResult{}, err
	}

	amountMajor := cmd.VoteCount * uc.resolveUnitPrice()
	amountMinor := amountMajor * 100

	reference, err := uc.RefGen.NewReference()
	if err != nil {
		return InitiateResult{}, fmt.Errorf("generate reference: %w", err)
	}
	transactionID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return InitiateResult{}, err
	}

	now := uc.now()
	txn := entities.Transaction{
		TransactionID: transactionID,
		Reference:     reference,
		CandidateID:   candidate.CandidateID,
		VoteCount:     cmd.VoteCount,
		AmountMajor:   amountMajor,
		Email:         email,
		Status:        entities.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	// The pending row and its initiated event commit together; the repository
	// writes both or neither.
	event, err := uc.paymentEvent(ctx, "payment.initiated", txn, now)
	if err != nil {
		return InitiateResult{}, err
	}
	if err := uc.Transactions.CreateTransaction(ctx, txn, event); err != nil {
		return InitiateResult{}, err
	}

	initResult, err := uc.Gateway.Initialize(ctx, ports.InitializeRequest{
		Email:       email,
		AmountMinor: amountMinor,
		Reference:   reference,
		CallbackURL: uc.CallbackURL,
		Metadata: map[string]any{
			"candidate_id": candidate.CandidateID,
			"vote_count":   cmd.VoteCount,
		},
	})
	if err != nil {
		// The pending row stays behind on purpose; it records that an
		// initialization was attempted and refused.
		logger.Warn("gateway initialization failed",
			"event", "reconciliation_initiate_gateway_failed",
			"module", "voting-core/payment-reconciliation",
			"layer", "application",
			"reference", reference,
			"candidate_id", candidate.CandidateID,
			"declined", errors.Is(err, domainerrors.ErrGatewayDeclined),
			"error", err.Error(),
		)
		return InitiateResult{}, fmt.Errorf("%w: %s", domainerrors.ErrPaymentInitFailed, err)
	}

	logger.Info("paid vote initiated",
		"event", "reconciliation_initiated",
		"module", "voting-core/payment-reconciliation",
		"layer", "application",
		"reference", reference,
		"candidate_id", candidate.CandidateID,
		"vote_count", cmd.VoteCount,
		"amount_major", amountMajor,
	)
	return InitiateResult{
		Reference:        reference,
		AuthorizationURL: initResult.AuthorizationURL,
		Transaction:      txn,
	}, nil
}

func (uc InitiateUseCase) resolveUnitPrice() int64 {
	if uc.UnitPrice <= 0 {
		return 50
	}
	return uc.UnitPrice
}

func (uc InitiateUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func (uc InitiateUseCase) paymentEvent(
	ctx context.Context,
	eventType string,
	txn entities.Transaction,
	occurredAt time.Time,
) (*ports.EventEnvelope, error) {
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return nil, err
	}
	envelope, err := newPaymentEnvelope(eventID, eventType, txn, occurredAt, nil)
	if err != nil {
		return nil, err
	}
	return &envelope, nil
}
