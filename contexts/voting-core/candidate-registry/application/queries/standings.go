package queries

import (
	"context"
	"math"

	"ovation/contexts/voting-core/candidate-registry/domain/entities"
	"ovation/contexts/voting-core/candidate-registry/ports"
)

// Standing is one candidate's read-side row: counter plus share of the total.
type Standing struct {
	Candidate  entities.Candidate
	Percentage float64
	Rank       int
}

type StandingsResult struct {
	Items      []Standing
	TotalVotes int64
}

// StandingsUseCase is a pure read-side projection: ordering is computed at
// query time from the counters, never maintained as an index.
type StandingsUseCase struct {
	Candidates ports.CandidateRepository
}

func (uc StandingsUseCase) Standings(ctx context.Context) (StandingsResult, error) {
	candidates, err := uc.Candidates.ListCandidates(ctx)
	if err != nil {
		return StandingsResult{}, err
	}

	var total int64
	for _, candidate := range candidates {
		total += candidate.Votes
	}

	items := make([]Standing, 0, len(candidates))
	for i, candidate := range candidates {
		percentage := 0.0
		if total > 0 {
			percentage = math.Round(float64(candidate.Votes)/float64(total)*1000) / 10
		}
		items = append(items, Standing{
			Candidate:  candidate,
			Percentage: percentage,
			Rank:       i + 1,
		})
	}
	return StandingsResult{Items: items, TotalVotes: total}, nil
}
