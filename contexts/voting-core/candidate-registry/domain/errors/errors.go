package errors

import "errors"

var (
	ErrCandidateNotFound    = errors.New("candidate not found")
	ErrInvalidVoteCount     = errors.New("vote count must be at least 1")
	ErrInvalidCandidateSeed = errors.New("candidate seed requires name and club")
)
