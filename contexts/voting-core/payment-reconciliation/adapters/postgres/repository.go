package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"ovation/contexts/voting-core/payment-reconciliation/domain/entities"
	domainerrors "ovation/contexts/voting-core/payment-reconciliation/domain/errors"
	"ovation/contexts/voting-core/payment-reconciliation/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Models lists the gorm models this adapter migrates at startup. The
// candidates table belongs to the registry adapter and is not listed here.
func Models() []any {
	return []any{&transactionModel{}, &outboxModel{}}
}

// CreateTransaction writes the pending row and its outbox event in one
// database transaction, so an initiated payment without its event (or the
// reverse) cannot be observed.
func (r *Repository) CreateTransaction(ctx context.Context, txn entities.Transaction, event *ports.EventEnvelope) error {
	row := transactionModelFromEntity(txn)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrDuplicateReference
			}
			return err
		}
		return appendOutboxTx(tx, event)
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrDuplicateReference) {
			return err
		}
		return r.logError("reconciliation_repo_create_transaction_failed", err,
			"reference", row.Reference,
			"candidate_id", row.CandidateID,
		)
	}
	return nil
}

func (r *Repository) GetTransactionByReference(ctx context.Context, reference string) (entities.Transaction, error) {
	var row transactionModel
	err := r.db.WithContext(ctx).
		Where("reference = ?", strings.TrimSpace(reference)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Transaction{}, domainerrors.ErrTransactionNotFound
		}
		return entities.Transaction{}, r.logError("reconciliation_repo_get_transaction_failed", err,
			"reference", strings.TrimSpace(reference),
		)
	}
	return row.toEntity(), nil
}

// SettleSuccess transitions pending -> success, credits the candidate and
// writes the reconciled event in one database transaction. The row lock plus
// the pending check make the credit happen at most once per reference, no
// matter how many callers race.
func (r *Repository) SettleSuccess(ctx context.Context, reference string, settledAt time.Time, event *ports.EventEnvelope) (ports.SettleOutcome, error) {
	return r.settle(ctx, reference, entities.StatusSuccess, settledAt, event)
}

// SettleFailure transitions pending -> failed; candidate votes are untouched.
func (r *Repository) SettleFailure(ctx context.Context, reference string, settledAt time.Time, event *ports.EventEnvelope) (ports.SettleOutcome, error) {
	return r.settle(ctx, reference, entities.StatusFailed, settledAt, event)
}

func (r *Repository) settle(
	ctx context.Context,
	reference string,
	toStatus entities.TransactionStatus,
	settledAt time.Time,
	event *ports.EventEnvelope,
) (ports.SettleOutcome, error) {
	reference = strings.TrimSpace(reference)
	var outcome ports.SettleOutcome

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row transactionModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("reference = ?", reference).
			First(&row).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrTransactionNotFound
			}
			return err
		}

		if row.Status != string(entities.StatusPending) {
			outcome = ports.SettleOutcome{Transaction: row.toEntity(), Applied: false}
			return nil
		}

		update := tx.Model(&transactionModel{}).
			Where("reference = ? AND status = ?", reference, string(entities.StatusPending)).
			Updates(map[string]any{
				"status":     string(toStatus),
				"updated_at": settledAt.UTC(),
			})
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			outcome = ports.SettleOutcome{Transaction: row.toEntity(), Applied: false}
			return nil
		}

		if toStatus == entities.StatusSuccess {
			credit := tx.Model(&candidateModel{}).
				Where("id = ?", row.CandidateID).
				Updates(map[string]any{
					"votes":      gorm.Expr("votes + ?", row.VoteCount),
					"updated_at": settledAt.UTC(),
				})
			if credit.Error != nil {
				return credit.Error
			}
			if credit.RowsAffected == 0 {
				// Rolls back the status transition too: a credit that cannot
				// land must not leave a success row behind.
				return domainerrors.ErrCandidateNotFound
			}
		}

		// The settle applied; its event joins the same commit. A replay that
		// did not apply never reaches here, so no duplicate event is written.
		if err := appendOutboxTx(tx, event); err != nil {
			return err
		}

		row.Status = string(toStatus)
		row.UpdatedAt = settledAt.UTC()
		outcome = ports.SettleOutcome{Transaction: row.toEntity(), Applied: true}
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrTransactionNotFound) || errors.Is(err, domainerrors.ErrCandidateNotFound) {
			return ports.SettleOutcome{}, err
		}
		return ports.SettleOutcome{}, r.logError("reconciliation_repo_settle_failed", err,
			"reference", reference,
			"to_status", string(toStatus),
		)
	}
	return outcome, nil
}

func (r *Repository) ListTransactions(ctx context.Context, limit int) ([]entities.Transaction, error) {
	var rows []transactionModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("reconciliation_repo_list_transactions_failed", err)
	}
	return toTransactionEntities(rows), nil
}

func (r *Repository) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]entities.Transaction, error) {
	var rows []transactionModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", string(entities.StatusPending)).
		Where("created_at < ?", olderThan.UTC()).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("reconciliation_repo_list_stale_pending_failed", err)
	}
	return toTransactionEntities(rows), nil
}

func (r *Repository) GetCandidate(ctx context.Context, candidateID string) (ports.CandidateRef, error) {
	var row candidateModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(candidateID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.CandidateRef{}, domainerrors.ErrCandidateNotFound
		}
		return ports.CandidateRef{}, r.logError("reconciliation_repo_get_candidate_failed", err,
			"candidate_id", strings.TrimSpace(candidateID),
		)
	}
	return ports.CandidateRef{
		CandidateID: row.ID,
		Name:        row.Name,
		Club:        row.Club,
	}, nil
}

// appendOutboxTx inserts the outbox row inside the caller's transaction. A
// nil event is a no-op so read-only settles stay event-free.
func appendOutboxTx(tx *gorm.DB, event *ports.EventEnvelope) error {
	if event == nil {
		return nil
	}
	payload, err := marshalEnvelope(*event)
	if err != nil {
		return err
	}
	row := outboxModel{
		OutboxID:     event.EventID,
		EventType:    event.EventType,
		PartitionKey: event.PartitionKey,
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    event.OccurredAt.UTC(),
	}
	return tx.Create(&row).Error
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("reconciliation_repo_list_outbox_failed", err)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      row.Payload,
			CreatedAt:    row.CreatedAt,
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error {
	update := r.db.WithContext(ctx).Model(&outboxModel{}).
		Where("outbox_id = ?", outboxID).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": sentAt.UTC(),
		})
	if update.Error != nil {
		return r.logError("reconciliation_repo_mark_outbox_sent_failed", update.Error,
			"outbox_id", outboxID,
		)
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "voting-core/payment-reconciliation",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("reconciliation repository operation failed", fields...)
	return err
}

func marshalEnvelope(event ports.EventEnvelope) ([]byte, error) {
	return json.Marshal(event)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type transactionModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	Reference   string    `gorm:"column:reference;uniqueIndex"`
	CandidateID string    `gorm:"column:candidate_id;index"`
	VoteCount   int64     `gorm:"column:vote_count"`
	AmountMajor int64     `gorm:"column:amount_major"`
	Email       string    `gorm:"column:email"`
	Status      string    `gorm:"column:status;index"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (transactionModel) TableName() string {
	return "transactions"
}

func transactionModelFromEntity(txn entities.Transaction) transactionModel {
	row := transactionModel{
		ID:          strings.TrimSpace(txn.TransactionID),
		Reference:   strings.TrimSpace(txn.Reference),
		CandidateID: strings.TrimSpace(txn.CandidateID),
		VoteCount:   txn.VoteCount,
		AmountMajor: txn.AmountMajor,
		Email:       strings.TrimSpace(txn.Email),
		Status:      string(txn.Status),
		CreatedAt:   txn.CreatedAt.UTC(),
		UpdatedAt:   txn.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m transactionModel) toEntity() entities.Transaction {
	return entities.Transaction{
		TransactionID: m.ID,
		Reference:     m.Reference,
		CandidateID:   m.CandidateID,
		VoteCount:     m.VoteCount,
		AmountMajor:   m.AmountMajor,
		Email:         m.Email,
		Status:        entities.TransactionStatus(m.Status),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toTransactionEntities(rows []transactionModel) []entities.Transaction {
	items := make([]entities.Transaction, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items
}

// candidateModel is this adapter's view of the registry-owned candidates
// table, enough for existence checks and the settle-time credit.
type candidateModel struct {
	ID    string `gorm:"column:id;primaryKey"`
	Name  string `gorm:"column:name"`
	Club  string `gorm:"column:club"`
	Votes int64  `gorm:"column:votes"`
}

func (candidateModel) TableName() string {
	return "candidates"
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status;index"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "payment_outbox"
}

var _ ports.TransactionRepository = (*Repository)(nil)
var _ ports.CandidateDirectory = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
