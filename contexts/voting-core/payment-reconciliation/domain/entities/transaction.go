package entities

import "time"

type TransactionStatus string

const (
	StatusPending TransactionStatus = "pending"
	StatusSuccess TransactionStatus = "success"
	StatusFailed  TransactionStatus = "failed"
)

// Transaction records one paid-vote attempt. Reference is the caller-generated
// correlation key shared with the gateway; it is unique and immutable once
// written. AmountMajor is kept in display units, the gateway wire format uses
// minor units (major x 100).
type Transaction struct {
	TransactionID string
	Reference     string
	CandidateID   string
	VoteCount     int64
	AmountMajor   int64
	Email         string
	Status        TransactionStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Terminal reports whether the transaction already reached a final state.
// Terminal transactions never transition again.
func (t Transaction) Terminal() bool {
	return t.Status == StatusSuccess || t.Status == StatusFailed
}
