package unit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	candidateregistry "ovation/contexts/voting-core/candidate-registry"
	"ovation/contexts/voting-core/candidate-registry/domain/entities"
	domainerrors "ovation/contexts/voting-core/candidate-registry/domain/errors"
	httptransport "ovation/contexts/voting-core/candidate-registry/transport/http"
)

func seededRegistry() candidateregistry.Module {
	now := time.Now().UTC()
	return candidateregistry.NewInMemoryModule([]entities.Candidate{
		{CandidateID: "cand-1", Name: "Ada", Club: "Chess", CreatedAt: now, UpdatedAt: now},
		{CandidateID: "cand-2", Name: "Grace", Club: "Debate", CreatedAt: now, UpdatedAt: now},
		{CandidateID: "cand-3", Name: "Linus", Club: "Robotics", CreatedAt: now, UpdatedAt: now},
	}, nil)
}

func TestFreeVoteCreditsCandidate(t *testing.T) {
	module := seededRegistry()

	resp, err := module.Handler.FreeVoteHandler(context.Background(), httptransport.FreeVoteRequest{
		CandidateID: "cand-1",
		VoteCount:   3,
	})
	if err != nil {
		t.Fatalf("free vote failed: %v", err)
	}
	if resp.Votes != 3 {
		t.Fatalf("expected 3 votes, got %d", resp.Votes)
	}

	resp, err = module.Handler.FreeVoteHandler(context.Background(), httptransport.FreeVoteRequest{
		CandidateID: "cand-1",
		VoteCount:   2,
	})
	if err != nil {
		t.Fatalf("second free vote failed: %v", err)
	}
	if resp.Votes != 5 {
		t.Fatalf("expected 5 votes after second cast, got %d", resp.Votes)
	}
}

func TestFreeVoteRejectsInvalidRequests(t *testing.T) {
	module := seededRegistry()

	_, err := module.Handler.FreeVoteHandler(context.Background(), httptransport.FreeVoteRequest{
		CandidateID: "cand-1",
		VoteCount:   0,
	})
	if !errors.Is(err, domainerrors.ErrInvalidVoteCount) {
		t.Fatalf("expected ErrInvalidVoteCount for zero votes, got %v", err)
	}

	_, err = module.Handler.FreeVoteHandler(context.Background(), httptransport.FreeVoteRequest{
		CandidateID: "cand-1",
		VoteCount:   -4,
	})
	if !errors.Is(err, domainerrors.ErrInvalidVoteCount) {
		t.Fatalf("expected ErrInvalidVoteCount for negative votes, got %v", err)
	}

	_, err = module.Handler.FreeVoteHandler(context.Background(), httptransport.FreeVoteRequest{
		CandidateID: "nobody",
		VoteCount:   1,
	})
	if !errors.Is(err, domainerrors.ErrCandidateNotFound) {
		t.Fatalf("expected ErrCandidateNotFound, got %v", err)
	}

	standings, err := module.Handler.StandingsHandler(context.Background())
	if err != nil {
		t.Fatalf("standings failed: %v", err)
	}
	if standings.TotalVotes != 0 {
		t.Fatalf("rejected votes must not be credited, got total %d", standings.TotalVotes)
	}
}

func TestConcurrentFreeVotesAreAtomic(t *testing.T) {
	module := seededRegistry()

	const workers = 25
	const perWorker = 4

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if _, err := module.Handler.FreeVoteHandler(context.Background(), httptransport.FreeVoteRequest{
					CandidateID: "cand-2",
					VoteCount:   1,
				}); err != nil {
					t.Errorf("concurrent vote failed: %v", err)
				}
			}
		}()
	}
	wg.Wait()

	standings, err := module.Handler.StandingsHandler(context.Background())
	if err != nil {
		t.Fatalf("standings failed: %v", err)
	}
	if standings.TotalVotes != workers*perWorker {
		t.Fatalf("expected %d total votes, got %d", workers*perWorker, standings.TotalVotes)
	}
}

func TestStandingsOrderingAndPercentages(t *testing.T) {
	module := seededRegistry()

	casts := map[string]int64{"cand-1": 6, "cand-2": 3, "cand-3": 1}
	for candidateID, count := range casts {
		if _, err := module.Handler.FreeVoteHandler(context.Background(), httptransport.FreeVoteRequest{
			CandidateID: candidateID,
			VoteCount:   count,
		}); err != nil {
			t.Fatalf("vote for %s failed: %v", candidateID, err)
		}
	}

	resp, err := module.Handler.StandingsHandler(context.Background())
	if err != nil {
		t.Fatalf("standings failed: %v", err)
	}
	if resp.TotalVotes != 10 {
		t.Fatalf("expected 10 total votes, got %d", resp.TotalVotes)
	}
	if len(resp.Items) != 3 {
		t.Fatalf("expected 3 standings, got %d", len(resp.Items))
	}
	if resp.Items[0].CandidateID != "cand-1" || resp.Items[0].Rank != 1 {
		t.Fatalf("expected cand-1 ranked first, got %s rank %d", resp.Items[0].CandidateID, resp.Items[0].Rank)
	}
	if resp.Items[0].Percentage != 60.0 {
		t.Fatalf("expected 60%% for the leader, got %f", resp.Items[0].Percentage)
	}
	if resp.Items[2].CandidateID != "cand-3" || resp.Items[2].Percentage != 10.0 {
		t.Fatalf("expected cand-3 last at 10%%, got %s at %f", resp.Items[2].CandidateID, resp.Items[2].Percentage)
	}
}

func TestSeedImportIsRepeatable(t *testing.T) {
	module := candidateregistry.NewInMemoryModule(nil, nil)

	batch := httptransport.SeedRequest{Candidates: []httptransport.SeedCandidate{
		{Name: "Ada", Club: "Chess", ImagePath: "/img/ada.png"},
		{Name: "Grace", Club: "Debate", ImagePath: "/img/grace.png"},
	}}

	first, err := module.Handler.SeedHandler(context.Background(), batch)
	if err != nil {
		t.Fatalf("first seed import failed: %v", err)
	}
	if first.Created != 2 || first.Updated != 0 {
		t.Fatalf("expected 2 created on first import, got created=%d updated=%d", first.Created, first.Updated)
	}

	// Credit some votes, then re-import the same batch. The counters must
	// survive the refresh.
	if _, err := module.Handler.SeedHandler(context.Background(), batch); err != nil {
		t.Fatalf("second seed import failed: %v", err)
	}
	candidates, err := module.Store.ListCandidates(context.Background())
	if err != nil {
		t.Fatalf("list candidates failed: %v", err)
	}
	if _, err := module.Handler.FreeVoteHandler(context.Background(), httptransport.FreeVoteRequest{
		CandidateID: candidates[0].CandidateID,
		VoteCount:   4,
	}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	second, err := module.Handler.SeedHandler(context.Background(), batch)
	if err != nil {
		t.Fatalf("third seed import failed: %v", err)
	}
	if second.Created != 0 || second.Updated != 2 {
		t.Fatalf("expected 2 updated on re-import, got created=%d updated=%d", second.Created, second.Updated)
	}

	refreshed, err := module.Store.GetCandidate(context.Background(), candidates[0].CandidateID)
	if err != nil {
		t.Fatalf("get candidate failed: %v", err)
	}
	if refreshed.Votes != 4 {
		t.Fatalf("re-import must not reset votes, got %d", refreshed.Votes)
	}
}

func TestSeedImportValidatesEntries(t *testing.T) {
	module := candidateregistry.NewInMemoryModule(nil, nil)

	_, err := module.Handler.SeedHandler(context.Background(), httptransport.SeedRequest{
		Candidates: []httptransport.SeedCandidate{{Name: " ", Club: "Chess"}},
	})
	if !errors.Is(err, domainerrors.ErrInvalidCandidateSeed) {
		t.Fatalf("expected ErrInvalidCandidateSeed, got %v", err)
	}
}
