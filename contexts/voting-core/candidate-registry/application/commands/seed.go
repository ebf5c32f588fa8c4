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

// CandidateSeed is one candidate in an import batch. The seed step replaces
// runtime discovery from asset filenames: import is explicit, validated, and
// repeatable.
type CandidateSeed struct {
	Name      string
	Club      string
	ImagePath string
}

// SeedResult reports how a batch landed. Re-importing an existing
// (name, club) pair refreshes the image path and never resets the counter.
type SeedResult struct {
	Created int
	Updated int
}

type SeedUseCase struct {
	Candidates ports.CandidateRepository
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func (uc SeedUseCase) ImportCandidates(ctx context.Context, seeds []CandidateSeed) (SeedResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	for _, seed := range seeds {
		if strings.TrimSpace(seed.Name) == "" || strings.TrimSpace(seed.Club) == "" {
			logger.Warn("candidate seed validation failed",
				"event", "registry_seed_validation_failed",
				"module", "voting-core/candidate-registry",
				"layer", "application",
				"name", strings.TrimSpace(seed.Name),
				"club", strings.TrimSpace(seed.Club),
			)
			return SeedResult{}, domainerrors.ErrInvalidCandidateSeed
		}
	}

	var result SeedResult
	now := uc.Clock.Now().UTC()
	for _, seed := range seeds {
		candidateID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return result, err
		}
		candidate := entities.Candidate{
			CandidateID: candidateID,
			Name:        strings.TrimSpace(seed.Name),
			Club:        strings.TrimSpace(seed.Club),
			ImagePath:   strings.TrimSpace(seed.ImagePath),
			Votes:       0,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		stored, created, err := uc.Candidates.UpsertCandidate(ctx, candidate)
		if err != nil {
			return result, err
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
		logger.Info("candidate imported",
			"event", "registry_candidate_imported",
			"module", "voting-core/candidate-registry",
			"layer", "application",
			"candidate_id", stored.CandidateID,
			"name", stored.Name,
			"club", stored.Club,
			"created", created,
		)
	}
	return result, nil
}
