package paystack

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "ovation/contexts/voting-core/payment-reconciliation/domain/errors"
	"ovation/contexts/voting-core/payment-reconciliation/ports"
)

func TestInitializeSendsAuthorizedRequest(t *testing.T) {
	var captured struct {
		path    string
		auth    string
		payload map[string]any
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.path = r.URL.Path
		captured.auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured.payload))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": true,
			"message": "Authorization URL created",
			"data": {
				"authorization_url": "https://checkout.paystack.com/abc123",
				"access_code": "abc123",
				"reference": "vote_ref1"
			}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test_secret", time.Second, nil)
	result, err := client.Initialize(context.Background(), ports.InitializeRequest{
		Email:       "voter@example.com",
		AmountMinor: 15000,
		Reference:   "vote_ref1",
		CallbackURL: "http://localhost:8080/verify-payment",
		Metadata:    map[string]any{"candidate_id": "cand-1"},
	})
	require.NoError(t, err)

	assert.Equal(t, "/transaction/initialize", captured.path)
	assert.Equal(t, "Bearer sk_test_secret", captured.auth)
	assert.Equal(t, "voter@example.com", captured.payload["email"])
	assert.Equal(t, float64(15000), captured.payload["amount"])
	assert.Equal(t, "vote_ref1", captured.payload["reference"])
	assert.Equal(t, "http://localhost:8080/verify-payment", captured.payload["callback_url"])

	assert.Equal(t, "https://checkout.paystack.com/abc123", result.AuthorizationURL)
	assert.Equal(t, "abc123", result.AccessCode)
	assert.Equal(t, "vote_ref1", result.Reference)
}

func TestInitializeMapsProviderRefusal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status": false, "message": "Invalid amount"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test_secret", time.Second, nil)
	_, err := client.Initialize(context.Background(), ports.InitializeRequest{
		Email:       "voter@example.com",
		AmountMinor: 0,
		Reference:   "vote_ref2",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrGatewayDeclined))
	assert.Contains(t, err.Error(), "Invalid amount")
}

func TestInitializeNetworkFaultIsNotADecline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, "sk_test_secret", time.Second, nil)
	_, err := client.Initialize(context.Background(), ports.InitializeRequest{
		Email:     "voter@example.com",
		Reference: "vote_ref3",
	})
	require.Error(t, err)
	assert.False(t, errors.Is(err, domainerrors.ErrGatewayDeclined))
}

func TestVerifyMapsProviderStatuses(t *testing.T) {
	cases := []struct {
		provider string
		want     ports.VerifyStatus
	}{
		{provider: "success", want: ports.VerifyStatusSuccess},
		{provider: "failed", want: ports.VerifyStatusFailed},
		{provider: "reversed", want: ports.VerifyStatusFailed},
		{provider: "abandoned", want: ports.VerifyStatusAbandoned},
		{provider: "ongoing", want: ports.VerifyStatusPending},
	}
	for _, tc := range cases {
		t.Run(tc.provider, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/transaction/verify/vote_ref4", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{
					"status": true,
					"message": "Verification successful",
					"data": {"status": "` + tc.provider + `", "amount": 15000, "gateway_response": "Approved"}
				}`))
			}))
			defer server.Close()

			client := NewClient(server.URL, "sk_test_secret", time.Second, nil)
			result, err := client.Verify(context.Background(), "vote_ref4")
			require.NoError(t, err)
			assert.Equal(t, tc.want, result.Status)
			assert.Equal(t, int64(15000), result.AmountMinor)
			assert.Equal(t, "Approved", result.GatewayMessage)
			assert.NotEmpty(t, result.Raw)
		})
	}
}

func TestVerifyUnknownReferenceIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status": false, "message": "Transaction reference not found"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test_secret", time.Second, nil)
	result, err := client.Verify(context.Background(), "vote_unknown")
	require.NoError(t, err)
	assert.Equal(t, ports.VerifyStatusNotFound, result.Status)
	assert.Equal(t, "Transaction reference not found", result.GatewayMessage)
}

func TestVerifyServerErrorSurfacesAsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"status": false, "message": "Gateway timeout"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test_secret", time.Second, nil)
	_, err := client.Verify(context.Background(), "vote_ref5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestVerifyTimesOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"status": true}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test_secret", 20*time.Millisecond, nil)
	_, err := client.Verify(context.Background(), "vote_ref6")
	require.Error(t, err)
}
