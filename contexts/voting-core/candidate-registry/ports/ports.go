package ports

import (
	"context"
	"time"

	"ovation/contexts/voting-core/candidate-registry/domain/entities"
)

// CandidateRepository owns candidate rows and their vote counters.
// IncrementVotes must be atomic with respect to concurrent increments for the
// same candidate.
type CandidateRepository interface {
	GetCandidate(ctx context.Context, candidateID string) (entities.Candidate, error)
	IncrementVotes(ctx context.Context, candidateID string, by int64) (entities.Candidate, error)
	ListCandidates(ctx context.Context) ([]entities.Candidate, error)
	UpsertCandidate(ctx context.Context, candidate entities.Candidate) (entities.Candidate, bool, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
