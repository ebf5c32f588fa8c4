package httpadapter

import (
	"context"
	"log/slog"

	"ovation/contexts/voting-core/candidate-registry/application/commands"
	"ovation/contexts/voting-core/candidate-registry/application/queries"
	"ovation/contexts/voting-core/candidate-registry/domain/entities"
	httptransport "ovation/contexts/voting-core/candidate-registry/transport/http"
)

type Handler struct {
	Votes     commands.VoteUseCase
	Seeds     commands.SeedUseCase
	Standings queries.StandingsUseCase
	Logger    *slog.Logger
}

func (h Handler) FreeVoteHandler(ctx context.Context, req httptransport.FreeVoteRequest) (httptransport.CandidateResponse, error) {
	candidate, err := h.Votes.CastFreeVotes(ctx, commands.FreeVoteCommand{
		CandidateID: req.CandidateID,
		VoteCount:   req.VoteCount,
	})
	if err != nil {
		return httptransport.CandidateResponse{}, err
	}
	return candidateResponse(candidate), nil
}

func (h Handler) StandingsHandler(ctx context.Context) (httptransport.StandingsResponse, error) {
	result, err := h.Standings.Standings(ctx)
	if err != nil {
		return httptransport.StandingsResponse{}, err
	}
	items := make([]httptransport.StandingItem, 0, len(result.Items))
	for _, standing := range result.Items {
		items = append(items, httptransport.StandingItem{
			CandidateID: standing.Candidate.CandidateID,
			Name:        standing.Candidate.Name,
			Club:        standing.Candidate.Club,
			Votes:       standing.Candidate.Votes,
			Percentage:  standing.Percentage,
			Rank:        standing.Rank,
		})
	}
	return httptransport.StandingsResponse{
		Items:      items,
		TotalVotes: result.TotalVotes,
	}, nil
}

func (h Handler) SeedHandler(ctx context.Context, req httptransport.SeedRequest) (httptransport.SeedResponse, error) {
	seeds := make([]commands.CandidateSeed, 0, len(req.Candidates))
	for _, candidate := range req.Candidates {
		seeds = append(seeds, commands.CandidateSeed{
			Name:      candidate.Name,
			Club:      candidate.Club,
			ImagePath: candidate.ImagePath,
		})
	}
	result, err := h.Seeds.ImportCandidates(ctx, seeds)
	if err != nil {
		return httptransport.SeedResponse{}, err
	}
	return httptransport.SeedResponse{
		Created: result.Created,
		Updated: result.Updated,
	}, nil
}

func candidateResponse(candidate entities.Candidate) httptransport.CandidateResponse {
	return httptransport.CandidateResponse{
		CandidateID: candidate.CandidateID,
		Name:        candidate.Name,
		Club:        candidate.Club,
		ImagePath:   candidate.ImagePath,
		Votes:       candidate.Votes,
	}
}
