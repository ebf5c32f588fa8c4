package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"ovation/contexts/voting-core/payment-reconciliation/domain/entities"
	paymenterrors "ovation/contexts/voting-core/payment-reconciliation/domain/errors"
	paymenthttp "ovation/contexts/voting-core/payment-reconciliation/transport/http"
)

func (s *Server) handleInitiatePayment(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writePaymentError(w, http.StatusBadRequest, "invalid_form", "request body must be form encoded")
		return
	}

	voteCount, err := strconv.ParseInt(r.PostFormValue("vote_count"), 10, 64)
	if err != nil {
		writePaymentError(w, http.StatusBadRequest, "invalid_vote_count", "vote_count must be a positive integer")
		return
	}

	resp, err := s.payments.Handler.InitiatePaymentHandler(r.Context(), paymenthttp.InitiatePaymentRequest{
		CandidateID: r.PostFormValue("candidate_id"),
		VoteCount:   voteCount,
		Email:       r.PostFormValue("email"),
	})
	if err != nil {
		writePaymentDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleVerifyPayment is the checkout return leg: the payment page sends the
// voter back here, the result is folded into a redirect the landing page can
// render without calling the API again.
func (s *Server) handleVerifyPayment(w http.ResponseWriter, r *http.Request) {
	reference := r.URL.Query().Get("reference")

	resp, err := s.payments.Handler.VerifyPaymentHandler(r.Context(), reference)
	if err != nil {
		switch {
		case errors.Is(err, paymenterrors.ErrTransactionNotFound):
			redirect(w, r, "/?error=invalid_transaction")
		case errors.Is(err, paymenterrors.ErrVerificationUnreachable):
			redirect(w, r, "/?error=verification_error")
		default:
			s.logger.Error("verify payment failed",
				"event", "verify_payment_failed",
				"module", "internal/platform/httpserver",
				"layer", "platform",
				"reference", reference,
				"error", err.Error(),
			)
			redirect(w, r, "/?error=verification_error")
		}
		return
	}

	switch resp.Status {
	case string(entities.StatusSuccess):
		redirect(w, r, fmt.Sprintf("/?success=true&votes=%d", resp.VotesCredited))
	case string(entities.StatusFailed):
		redirect(w, r, "/?error=payment_failed")
	default:
		// Provider has no terminal answer yet; the sweeper or a retry of
		// this URL settles it later.
		redirect(w, r, "/?pending=true&reference="+resp.Reference)
	}
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	limit := 0
	if limitRaw := r.URL.Query().Get("limit"); limitRaw != "" {
		parsed, err := strconv.Atoi(limitRaw)
		if err != nil {
			writePaymentError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
			return
		}
		limit = parsed
	}

	resp, err := s.payments.Handler.LedgerHandler(r.Context(), limit)
	if err != nil {
		writePaymentDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	resp, err := s.payments.Handler.TransactionHandler(r.Context(), r.PathValue("reference"))
	if err != nil {
		writePaymentDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func redirect(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusSeeOther)
}

func writePaymentDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, paymenterrors.ErrInvalidVoteRequest):
		writePaymentError(w, http.StatusBadRequest, "invalid_vote_request", err.Error())
	case errors.Is(err, paymenterrors.ErrCandidateNotFound):
		writePaymentError(w, http.StatusNotFound, "candidate_not_found", err.Error())
	case errors.Is(err, paymenterrors.ErrTransactionNotFound):
		writePaymentError(w, http.StatusNotFound, "transaction_not_found", err.Error())
	case errors.Is(err, paymenterrors.ErrDuplicateReference):
		writePaymentError(w, http.StatusConflict, "duplicate_reference", err.Error())
	case errors.Is(err, paymenterrors.ErrPaymentInitFailed),
		errors.Is(err, paymenterrors.ErrGatewayDeclined),
		errors.Is(err, paymenterrors.ErrVerificationUnreachable):
		writePaymentError(w, http.StatusBadGateway, "gateway_error", err.Error())
	default:
		writePaymentError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writePaymentError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, paymenthttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
