package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	adminsession "ovation/contexts/identity-access/admin-session-service"
	candidateregistry "ovation/contexts/voting-core/candidate-registry"
	registryentities "ovation/contexts/voting-core/candidate-registry/domain/entities"
	paymentreconciliation "ovation/contexts/voting-core/payment-reconciliation"
	"ovation/contexts/voting-core/payment-reconciliation/application/commands"
	"ovation/contexts/voting-core/payment-reconciliation/ports"
)

func testServer(t *testing.T) (*Server, paymentreconciliation.Module) {
	t.Helper()
	now := time.Now().UTC()
	registry := candidateregistry.NewInMemoryModule([]registryentities.Candidate{
		{CandidateID: "cand-1", Name: "Ada", Club: "Chess", CreatedAt: now, UpdatedAt: now},
	}, nil)
	payments := paymentreconciliation.NewInMemoryModule(0, "http://localhost:8080/verify-payment", nil)
	payments.Store.SetCandidate(ports.CandidateRef{CandidateID: "cand-1", Name: "Ada", Club: "Chess"}, 0)
	sessions := adminsession.NewInMemoryModule("correct horse", []byte("server-test-secret"), time.Hour, nil)
	return New(registry, payments, sessions, nil, ""), payments
}

func doRequest(t *testing.T, server *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, req)
	return recorder
}

func TestVerifyPaymentRedirects(t *testing.T) {
	server, payments := testServer(t)

	initiated, err := payments.Initiations.Initiate(context.Background(), commands.InitiateCommand{
		CandidateID: "cand-1",
		VoteCount:   3,
		Email:       "voter@example.com",
	})
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}

	resp := doRequest(t, server, httptest.NewRequest(http.MethodGet, "/verify-payment?reference="+initiated.Reference, nil))
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.Code)
	}
	if location := resp.Header().Get("Location"); location != "/?success=true&votes=3" {
		t.Fatalf("unexpected success redirect %s", location)
	}

	// Replaying the callback settles nothing new but still lands on success.
	resp = doRequest(t, server, httptest.NewRequest(http.MethodGet, "/verify-payment?reference="+initiated.Reference, nil))
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 on replay, got %d", resp.Code)
	}
	if votes := payments.Store.CandidateVotes("cand-1"); votes != 3 {
		t.Fatalf("callback replay double-credited: %d votes", votes)
	}
}

func TestVerifyPaymentFailureAndUnknownRedirects(t *testing.T) {
	server, payments := testServer(t)

	initiated, err := payments.Initiations.Initiate(context.Background(), commands.InitiateCommand{
		CandidateID: "cand-1",
		VoteCount:   1,
		Email:       "voter@example.com",
	})
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}
	payments.Gateway.SetVerifyResult(initiated.Reference, ports.VerifyResult{Status: ports.VerifyStatusFailed})

	resp := doRequest(t, server, httptest.NewRequest(http.MethodGet, "/verify-payment?reference="+initiated.Reference, nil))
	if location := resp.Header().Get("Location"); location != "/?error=payment_failed" {
		t.Fatalf("unexpected failure redirect %s", location)
	}

	resp = doRequest(t, server, httptest.NewRequest(http.MethodGet, "/verify-payment?reference=vote_missing", nil))
	if location := resp.Header().Get("Location"); location != "/?error=invalid_transaction" {
		t.Fatalf("unexpected unknown-reference redirect %s", location)
	}
}

func TestInitiatePaymentEndpoint(t *testing.T) {
	server, _ := testServer(t)

	form := url.Values{}
	form.Set("candidate_id", "cand-1")
	form.Set("vote_count", "2")
	form.Set("email", "voter@example.com")
	req := httptest.NewRequest(http.MethodPost, "/initiate-payment", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp := doRequest(t, server, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	body := resp.Body.String()
	if !strings.Contains(body, `"status":"success"`) || !strings.Contains(body, "authorization_url") {
		t.Fatalf("unexpected body %s", body)
	}

	form.Set("vote_count", "zero")
	req = httptest.NewRequest(http.MethodPost, "/initiate-payment", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if resp := doRequest(t, server, req); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for garbage vote_count, got %d", resp.Code)
	}
}

func TestAdminRoutesRequireSession(t *testing.T) {
	server, _ := testServer(t)

	if resp := doRequest(t, server, httptest.NewRequest(http.MethodGet, "/results", nil)); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a session, got %d", resp.Code)
	}

	login := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{"password":"wrong"}`))
	if resp := doRequest(t, server, login); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", resp.Code)
	}

	login = httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{"password":"correct horse"}`))
	loginResp := doRequest(t, server, login)
	if loginResp.Code != http.StatusOK {
		t.Fatalf("expected 200 login, got %d", loginResp.Code)
	}
	cookies := loginResp.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("expected session cookie")
	}

	gated := httptest.NewRequest(http.MethodGet, "/results", nil)
	for _, cookie := range cookies {
		gated.AddCookie(cookie)
	}
	if resp := doRequest(t, server, gated); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 with session cookie, got %d: %s", resp.Code, resp.Body.String())
	}

	logout := httptest.NewRequest(http.MethodPost, "/admin/logout", nil)
	for _, cookie := range cookies {
		logout.AddCookie(cookie)
	}
	if resp := doRequest(t, server, logout); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 logout, got %d", resp.Code)
	}

	gatedAgain := httptest.NewRequest(http.MethodGet, "/admin/transactions", nil)
	for _, cookie := range cookies {
		gatedAgain.AddCookie(cookie)
	}
	if resp := doRequest(t, server, gatedAgain); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.Code)
	}
}

func TestPublicVoteAndCandidates(t *testing.T) {
	server, _ := testServer(t)

	form := url.Values{}
	form.Set("candidate_id", "cand-1")
	form.Set("vote_count", "2")
	req := httptest.NewRequest(http.MethodPost, "/vote", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if resp := doRequest(t, server, req); resp.Code != http.StatusOK {
		t.Fatalf("expected 200 vote, got %d: %s", resp.Code, resp.Body.String())
	}

	resp := doRequest(t, server, httptest.NewRequest(http.MethodGet, "/candidates", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 candidates, got %d", resp.Code)
	}
	if body := resp.Body.String(); !strings.Contains(body, `"votes":2`) {
		t.Fatalf("expected credited votes in listing, got %s", body)
	}
}
