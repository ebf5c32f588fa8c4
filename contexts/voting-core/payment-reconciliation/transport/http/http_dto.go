package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type InitiatePaymentRequest struct {
	CandidateID string `json:"candidate_id"`
	VoteCount   int64  `json:"vote_count"`
	Email       string `json:"email"`
}

type InitiatePaymentResponse struct {
	Status           string `json:"status"`
	AuthorizationURL string `json:"authorization_url"`
	Reference        string `json:"reference"`
}

type ReconcileResponse struct {
	Reference     string `json:"reference"`
	Status        string `json:"status"`
	CandidateID   string `json:"candidate_id,omitempty"`
	VotesCredited int64  `json:"votes_credited"`
	Replayed      bool   `json:"replayed"`
}

type TransactionItem struct {
	TransactionID string `json:"transaction_id"`
	Reference     string `json:"reference"`
	CandidateID   string `json:"candidate_id"`
	VoteCount     int64  `json:"vote_count"`
	AmountMajor   int64  `json:"amount"`
	Email         string `json:"email"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

type LedgerResponse struct {
	Items []TransactionItem `json:"items"`
}
