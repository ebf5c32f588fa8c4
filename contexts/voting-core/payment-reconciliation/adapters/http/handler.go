package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"ovation/contexts/voting-core/payment-reconciliation/application/commands"
	"ovation/contexts/voting-core/payment-reconciliation/application/queries"
	"ovation/contexts/voting-core/payment-reconciliation/domain/entities"
	httptransport "ovation/contexts/voting-core/payment-reconciliation/transport/http"
)

type Handler struct {
	Initiations     commands.InitiateUseCase
	Reconciliations commands.ReconcileUseCase
	Ledger          queries.LedgerUseCase
	Logger          *slog.Logger
}

func (h Handler) InitiatePaymentHandler(ctx context.Context, req httptransport.InitiatePaymentRequest) (httptransport.InitiatePaymentResponse, error) {
	result, err := h.Initiations.Initiate(ctx, commands.InitiateCommand{
		CandidateID: req.CandidateID,
		VoteCount:   req.VoteCount,
		Email:       req.Email,
	})
	if err != nil {
		return httptransport.InitiatePaymentResponse{}, err
	}
	return httptransport.InitiatePaymentResponse{
		Status:           "success",
		AuthorizationURL: result.AuthorizationURL,
		Reference:        result.Reference,
	}, nil
}

func (h Handler) VerifyPaymentHandler(ctx context.Context, reference string) (httptransport.ReconcileResponse, error) {
	result, err := h.Reconciliations.Reconcile(ctx, commands.ReconcileCommand{Reference: reference})
	if err != nil {
		return httptransport.ReconcileResponse{}, err
	}
	return httptransport.ReconcileResponse{
		Reference:     result.Reference,
		Status:        string(result.Status),
		CandidateID:   result.CandidateID,
		VotesCredited: result.VotesCredited,
		Replayed:      result.Replayed,
	}, nil
}

func (h Handler) TransactionHandler(ctx context.Context, reference string) (httptransport.TransactionItem, error) {
	txn, err := h.Ledger.TransactionByReference(ctx, reference)
	if err != nil {
		return httptransport.TransactionItem{}, err
	}
	return transactionItem(txn), nil
}

func (h Handler) LedgerHandler(ctx context.Context, limit int) (httptransport.LedgerResponse, error) {
	transactions, err := h.Ledger.RecentTransactions(ctx, limit)
	if err != nil {
		return httptransport.LedgerResponse{}, err
	}
	items := make([]httptransport.TransactionItem, 0, len(transactions))
	for _, txn := range transactions {
		items = append(items, transactionItem(txn))
	}
	return httptransport.LedgerResponse{Items: items}, nil
}

func transactionItem(txn entities.Transaction) httptransport.TransactionItem {
	return httptransport.TransactionItem{
		TransactionID: txn.TransactionID,
		Reference:     txn.Reference,
		CandidateID:   txn.CandidateID,
		VoteCount:     txn.VoteCount,
		AmountMajor:   txn.AmountMajor,
		Email:         txn.Email,
		Status:        string(txn.Status),
		CreatedAt:     txn.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     txn.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
