package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"

	adminsession "ovation/contexts/identity-access/admin-session-service"
	candidateregistry "ovation/contexts/voting-core/candidate-registry"
	paymentreconciliation "ovation/contexts/voting-core/payment-reconciliation"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "ovation/internal/platform/httpserver/docs"
)

type Server struct {
	mux      *http.ServeMux
	logger   *slog.Logger
	addr     string
	registry candidateregistry.Module
	payments paymentreconciliation.Module
	sessions *adminsession.Module
}

func New(
	registry candidateregistry.Module,
	payments paymentreconciliation.Module,
	sessions *adminsession.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		addr:     addr,
		registry: registry,
		payments: payments,
		sessions: sessions,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the routed mux for httptest callers.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("POST /vote", s.handleFreeVote)
	s.mux.HandleFunc("GET /candidates", s.handleListCandidates)
	s.mux.HandleFunc("GET /results", s.handleResults)
	s.mux.HandleFunc("POST /admin/candidates/seed", s.handleSeedCandidates)

	s.mux.HandleFunc("POST /initiate-payment", s.handleInitiatePayment)
	s.mux.HandleFunc("GET /verify-payment", s.handleVerifyPayment)
	s.mux.HandleFunc("GET /admin/transactions", s.handleListTransactions)
	s.mux.HandleFunc("GET /admin/transactions/{reference}", s.handleGetTransaction)

	s.mux.HandleFunc("POST /admin/login", s.handleAdminLogin)
	s.mux.HandleFunc("POST /admin/logout", s.handleAdminLogout)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
