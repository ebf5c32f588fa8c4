package queries

import (
	"context"
	"strings"

	"ovation/contexts/voting-core/payment-reconciliation/domain/entities"
	domainerrors "ovation/contexts/voting-core/payment-reconciliation/domain/errors"
	"ovation/contexts/voting-core/payment-reconciliation/ports"
)

const defaultLedgerLimit = 50
const maxLedgerLimit = 200

// LedgerUseCase is the read side of the payment ledger, used by the admin
// surface for status lookups and audit listings.
type LedgerUseCase struct {
	Transactions ports.TransactionRepository
}

func (uc LedgerUseCase) TransactionByReference(ctx context.Context, reference string) (entities.Transaction, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return entities.Transaction{}, domainerrors.ErrTransactionNotFound
	}
	return uc.Transactions.GetTransactionByReference(ctx, reference)
}

func (uc LedgerUseCase) RecentTransactions(ctx context.Context, limit int) ([]entities.Transaction, error) {
	if limit <= 0 {
		limit = defaultLedgerLimit
	}
	if limit > maxLedgerLimit {
		limit = maxLedgerLimit
	}
	return uc.Transactions.ListTransactions(ctx, limit)
}
