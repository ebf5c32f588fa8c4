package commands

import (
	"context"
	"log/slog"
	"strings"

	application "ovation/contexts/voting-core/candidate-registry/application"
	"ovation/contexts/voting-core/candidate-registry/domain/entities"
	domainerrors "ovation/contexts/voting-core/candidate-registry/domain/errors"
	"ovation/contexts/voting-core/candidate-registry/ports"
)

// FreeVoteCommand is the direct vote path: no payment, no transaction row,
// just an atomic counter increment.
type FreeVoteCommand struct {
	CandidateID string
	VoteCount   int64
}

type VoteUseCase struct {
	Candidates ports.CandidateRepository
	Logger     *slog.Logger
}

func (uc VoteUseCase) CastFreeVotes(ctx context.Context, cmd FreeVoteCommand) (entities.Candidate, error) {
	logger := application.ResolveLogger(uc.Logger)
	candidateID := strings.TrimSpace(cmd.CandidateID)
	if candidateID == "" || cmd.VoteCount < 1 {
		logger.Warn("free vote validation failed",
			"event", "registry_free_vote_validation_failed",
			"module", "voting-core/candidate-registry",
			"layer", "application",
			"candidate_id", candidateID,
			"vote_count", cmd.VoteCount,
		)
		return entities.Candidate{}, domainerrors.ErrInvalidVoteCount
	}

	candidate, err := uc.Candidates.IncrementVotes(ctx, candidateID, cmd.VoteCount)
	if err != nil {
		return entities.Candidate{}, err
	}
	logger.Info("free votes credited",
		"event", "registry_free_votes_credited",
		"module", "voting-core/candidate-registry",
		"layer", "application",
		"candidate_id", candidate.CandidateID,
		"vote_count", cmd.VoteCount,
		"total_votes", candidate.Votes,
	)
	return candidate, nil
}
