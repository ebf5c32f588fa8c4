package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	domainerrors "ovation/contexts/voting-core/payment-reconciliation/domain/errors"
	"ovation/contexts/voting-core/payment-reconciliation/ports"
)

const defaultBaseURL = "https://api.paystack.co"

// Client implements ports.Gateway against the Paystack transaction API.
// Provider refusals map to ErrGatewayDeclined; anything that never produced a
// provider response surfaces as a plain error so callers can classify it as a
// network fault.
type Client struct {
	httpClient *http.Client
	baseURL    string
	secretKey  string
	logger     *slog.Logger
}

func NewClient(baseURL string, secretKey string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		secretKey:  secretKey,
		logger:     logger,
	}
}

type initializePayload struct {
	Email       string         `json:"email"`
	Amount      int64          `json:"amount"`
	Reference   string         `json:"reference"`
	CallbackURL string         `json:"callback_url"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type initializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status          string `json:"status"`
		Amount          int64  `json:"amount"`
		GatewayResponse string `json:"gateway_response"`
	} `json:"data"`
}

func (c *Client) Initialize(ctx context.Context, req ports.InitializeRequest) (ports.InitializeResult, error) {
	body, err := json.Marshal(initializePayload{
		Email:       req.Email,
		Amount:      req.AmountMinor,
		Reference:   req.Reference,
		CallbackURL: req.CallbackURL,
		Metadata:    req.Metadata,
	})
	if err != nil {
		return ports.InitializeResult{}, fmt.Errorf("encode initialize payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return ports.InitializeResult{}, fmt.Errorf("build initialize request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return ports.InitializeResult{}, fmt.Errorf("paystack initialize request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return ports.InitializeResult{}, fmt.Errorf("read initialize response: %w", err)
	}

	var decoded initializeResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return ports.InitializeResult{}, fmt.Errorf("decode initialize response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !decoded.Status {
		c.logger.Warn("paystack declined initialization",
			"event", "paystack_initialize_declined",
			"module", "voting-core/payment-reconciliation",
			"layer", "adapter",
			"reference", req.Reference,
			"http_status", resp.StatusCode,
			"provider_message", decoded.Message,
		)
		return ports.InitializeResult{}, fmt.Errorf("%w: %s", domainerrors.ErrGatewayDeclined, providerMessage(decoded.Message))
	}

	return ports.InitializeResult{
		AuthorizationURL: decoded.Data.AuthorizationURL,
		AccessCode:       decoded.Data.AccessCode,
		Reference:        decoded.Data.Reference,
	}, nil
}

func (c *Client) Verify(ctx context.Context, reference string) (ports.VerifyResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transaction/verify/"+strings.TrimSpace(reference), nil)
	if err != nil {
		return ports.VerifyResult{}, fmt.Errorf("build verify request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return ports.VerifyResult{}, fmt.Errorf("paystack verify request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return ports.VerifyResult{}, fmt.Errorf("read verify response: %w", err)
	}

	var decoded verifyResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return ports.VerifyResult{}, fmt.Errorf("decode verify response: %w", err)
	}

	// Paystack answers an unknown reference with 404 and status=false; that is
	// a distinguishable outcome, not a transport failure.
	if resp.StatusCode == http.StatusNotFound || (!decoded.Status && resp.StatusCode < 500) {
		return ports.VerifyResult{
			Status:         ports.VerifyStatusNotFound,
			GatewayMessage: decoded.Message,
			Raw:            raw,
		}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ports.VerifyResult{}, fmt.Errorf("paystack verify http %d: %s", resp.StatusCode, providerMessage(decoded.Message))
	}

	return ports.VerifyResult{
		Status:         mapProviderStatus(decoded.Data.Status),
		GatewayMessage: firstNonEmpty(decoded.Data.GatewayResponse, decoded.Message),
		AmountMinor:    decoded.Data.Amount,
		Raw:            raw,
	}, nil
}

func mapProviderStatus(status string) ports.VerifyStatus {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "success":
		return ports.VerifyStatusSuccess
	case "failed", "reversed":
		return ports.VerifyStatusFailed
	case "abandoned":
		return ports.VerifyStatusAbandoned
	default:
		return ports.VerifyStatusPending
	}
}

func providerMessage(message string) string {
	if strings.TrimSpace(message) == "" {
		return "no provider detail"
	}
	return message
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

var _ ports.Gateway = (*Client)(nil)
