package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"ovation/contexts/voting-core/candidate-registry/domain/entities"
	domainerrors "ovation/contexts/voting-core/candidate-registry/domain/errors"

	"github.com/google/uuid"
)

type Store struct {
	mu         sync.RWMutex
	candidates map[string]entities.Candidate
}

func NewStore(seed []entities.Candidate) *Store {
	candidates := make(map[string]entities.Candidate, len(seed))
	for _, candidate := range seed {
		candidates[candidate.CandidateID] = candidate
	}
	return &Store{candidates: candidates}
}

func (s *Store) GetCandidate(_ context.Context, candidateID string) (entities.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	candidate, ok := s.candidates[strings.TrimSpace(candidateID)]
	if !ok {
		return entities.Candidate{}, domainerrors.ErrCandidateNotFound
	}
	return candidate, nil
}

func (s *Store) IncrementVotes(_ context.Context, candidateID string, by int64) (entities.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	candidate, ok := s.candidates[strings.TrimSpace(candidateID)]
	if !ok {
		return entities.Candidate{}, domainerrors.ErrCandidateNotFound
	}
	candidate.Votes += by
	candidate.UpdatedAt = time.Now().UTC()
	s.candidates[candidate.CandidateID] = candidate
	return candidate, nil
}

func (s *Store) ListCandidates(_ context.Context) ([]entities.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Candidate, 0, len(s.candidates))
	for _, candidate := range s.candidates {
		items = append(items, candidate)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Votes != items[j].Votes {
			return items[i].Votes > items[j].Votes
		}
		return items[i].Name < items[j].Name
	})
	return items, nil
}

func (s *Store) UpsertCandidate(_ context.Context, candidate entities.Candidate) (entities.Candidate, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.candidates {
		if existing.Name == candidate.Name && existing.Club == candidate.Club {
			existing.ImagePath = candidate.ImagePath
			existing.UpdatedAt = candidate.UpdatedAt
			s.candidates[existing.CandidateID] = existing
			return existing, false, nil
		}
	}
	s.candidates[candidate.CandidateID] = candidate
	return candidate, true, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
