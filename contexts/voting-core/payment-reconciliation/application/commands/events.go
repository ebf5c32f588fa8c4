package commands

import (
	"encoding/json"
	"time"

	"ovation/contexts/voting-core/payment-reconciliation/domain/entities"
	"ovation/contexts/voting-core/payment-reconciliation/ports"
)

func newPaymentEnvelope(
	eventID string,
	eventType string,
	txn entities.Transaction,
	occurredAt time.Time,
	metadata map[string]any,
) (ports.EventEnvelope, error) {
	// Events are partitioned by reference so per-payment consumers observe a
	// stable ordering.
	data := map[string]any{
		"transaction_id": txn.TransactionID,
		"reference":      txn.Reference,
		"candidate_id":   txn.CandidateID,
		"vote_count":     txn.VoteCount,
		"amount_major":   txn.AmountMajor,
		"status":         string(txn.Status),
		"occurred_at":    occurredAt.Format(time.RFC3339),
	}
	for key, value := range metadata {
		data[key] = value
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "payment-reconciliation",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "reference",
		PartitionKey:     txn.Reference,
		Data:             payload,
	}, nil
}
