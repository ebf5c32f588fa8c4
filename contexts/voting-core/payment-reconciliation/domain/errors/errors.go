package errors

import "errors"

var (
	ErrInvalidVoteRequest      = errors.New("paid vote request requires a candidate, email and a vote count of at least 1")
	ErrCandidateNotFound       = errors.New("candidate not found")
	ErrTransactionNotFound     = errors.New("transaction not found")
	ErrDuplicateReference      = errors.New("transaction reference already exists")
	ErrGatewayDeclined         = errors.New("payment gateway declined the request")
	ErrPaymentInitFailed       = errors.New("payment initialization failed")
	ErrVerificationUnreachable = errors.New("payment gateway unreachable during verification")
)
