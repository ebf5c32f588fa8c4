package memory

import (
	"context"
	"strings"
	"sync"

	"ovation/contexts/voting-core/payment-reconciliation/ports"
)

// Gateway is a deterministic in-process stand-in for the payment provider.
// Tests script its outcomes per reference and inspect the calls it received.
type Gateway struct {
	mu sync.Mutex

	authorizationURL string
	initializeErr    error
	verifyErr        error
	defaultVerify    ports.VerifyStatus
	verifyByRef      map[string]ports.VerifyResult

	initialized []ports.InitializeRequest
	verified    []string
}

func NewGateway() *Gateway {
	return &Gateway{
		authorizationURL: "https://checkout.example/pay",
		defaultVerify:    ports.VerifyStatusSuccess,
		verifyByRef:      make(map[string]ports.VerifyResult),
	}
}

func (g *Gateway) SetAuthorizationURL(url string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.authorizationURL = url
}

// FailInitialize makes every Initialize call return err as-is.
func (g *Gateway) FailInitialize(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.initializeErr = err
}

// FailVerify makes every Verify call return err, simulating a network fault.
func (g *Gateway) FailVerify(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.verifyErr = err
}

// SetDefaultVerifyStatus scripts the outcome for references without an
// explicit SetVerifyResult entry.
func (g *Gateway) SetDefaultVerifyStatus(status ports.VerifyStatus) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.defaultVerify = status
}

func (g *Gateway) SetVerifyResult(reference string, result ports.VerifyResult) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.verifyByRef[strings.TrimSpace(reference)] = result
}

func (g *Gateway) Initialize(_ context.Context, req ports.InitializeRequest) (ports.InitializeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.initialized = append(g.initialized, req)
	if g.initializeErr != nil {
		return ports.InitializeResult{}, g.initializeErr
	}
	return ports.InitializeResult{
		AuthorizationURL: g.authorizationURL,
		AccessCode:       "access_" + req.Reference,
		Reference:        req.Reference,
	}, nil
}

func (g *Gateway) Verify(_ context.Context, reference string) (ports.VerifyResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	reference = strings.TrimSpace(reference)
	g.verified = append(g.verified, reference)
	if g.verifyErr != nil {
		return ports.VerifyResult{}, g.verifyErr
	}
	if result, ok := g.verifyByRef[reference]; ok {
		return result, nil
	}
	return ports.VerifyResult{Status: g.defaultVerify}, nil
}

func (g *Gateway) InitializeCalls() []ports.InitializeRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]ports.InitializeRequest(nil), g.initialized...)
}

func (g *Gateway) VerifyCalls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.verified...)
}

var _ ports.Gateway = (*Gateway)(nil)
