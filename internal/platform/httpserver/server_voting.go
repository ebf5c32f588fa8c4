package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	registryerrors "ovation/contexts/voting-core/candidate-registry/domain/errors"
	registryhttp "ovation/contexts/voting-core/candidate-registry/transport/http"
)

func (s *Server) handleFreeVote(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeRegistryError(w, http.StatusBadRequest, "invalid_form", "request body must be form encoded")
		return
	}

	voteCount, err := parseVoteCount(r.PostFormValue("vote_count"))
	if err != nil {
		writeRegistryError(w, http.StatusBadRequest, "invalid_vote_count", "vote_count must be a positive integer")
		return
	}

	resp, err := s.registry.Handler.FreeVoteHandler(r.Context(), registryhttp.FreeVoteRequest{
		CandidateID: r.PostFormValue("candidate_id"),
		VoteCount:   voteCount,
	})
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	resp, err := s.registry.Handler.StandingsHandler(r.Context())
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	// The public listing hides percentages and ranks; those stay behind the
	// admin results route.
	items := make([]registryhttp.CandidateResponse, 0, len(resp.Items))
	for _, item := range resp.Items {
		items = append(items, registryhttp.CandidateResponse{
			CandidateID: item.CandidateID,
			Name:        item.Name,
			Club:        item.Club,
			Votes:       item.Votes,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"candidates": items})
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	resp, err := s.registry.Handler.StandingsHandler(r.Context())
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSeedCandidates(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	var req registryhttp.SeedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRegistryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.registry.Handler.SeedHandler(r.Context(), req)
	if err != nil {
		writeRegistryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func parseVoteCount(raw string) (int64, error) {
	count, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func writeRegistryDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registryerrors.ErrCandidateNotFound):
		writeRegistryError(w, http.StatusNotFound, "candidate_not_found", err.Error())
	case errors.Is(err, registryerrors.ErrInvalidVoteCount):
		writeRegistryError(w, http.StatusBadRequest, "invalid_vote_count", err.Error())
	case errors.Is(err, registryerrors.ErrInvalidCandidateSeed):
		writeRegistryError(w, http.StatusBadRequest, "invalid_candidate_seed", err.Error())
	default:
		writeRegistryError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeRegistryError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, registryhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
