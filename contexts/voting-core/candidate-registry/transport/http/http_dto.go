package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type FreeVoteRequest struct {
	CandidateID string `json:"candidate_id"`
	VoteCount   int64  `json:"vote_count"`
}

type CandidateResponse struct {
	CandidateID string `json:"candidate_id"`
	Name        string `json:"name"`
	Club        string `json:"club"`
	ImagePath   string `json:"image_path,omitempty"`
	Votes       int64  `json:"votes"`
}

type StandingItem struct {
	CandidateID string  `json:"candidate_id"`
	Name        string  `json:"name"`
	Club        string  `json:"club"`
	Votes       int64   `json:"votes"`
	Percentage  float64 `json:"percentage"`
	Rank        int     `json:"rank"`
}

type StandingsResponse struct {
	Items      []StandingItem `json:"items"`
	TotalVotes int64          `json:"total_votes"`
}

type SeedCandidate struct {
	Name      string `json:"name"`
	Club      string `json:"club"`
	ImagePath string `json:"image_path,omitempty"`
}

type SeedRequest struct {
	Candidates []SeedCandidate `json:"candidates"`
}

type SeedResponse struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}
