package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	adminsession "ovation/contexts/identity-access/admin-session-service"
	sessionmemory "ovation/contexts/identity-access/admin-session-service/adapters/memory"
	sessionredis "ovation/contexts/identity-access/admin-session-service/adapters/redis"
	sessionports "ovation/contexts/identity-access/admin-session-service/ports"
	candidateregistry "ovation/contexts/voting-core/candidate-registry"
	registrypostgres "ovation/contexts/voting-core/candidate-registry/adapters/postgres"
	paymentreconciliation "ovation/contexts/voting-core/payment-reconciliation"
	"ovation/contexts/voting-core/payment-reconciliation/adapters/paystack"
	paymentpostgres "ovation/contexts/voting-core/payment-reconciliation/adapters/postgres"
	workerapp "ovation/contexts/voting-core/payment-reconciliation/application/workers"
	"ovation/internal/platform/config"
	"ovation/internal/platform/db"
	"ovation/internal/platform/httpserver"
	"ovation/internal/platform/messaging"

	goredis "github.com/redis/go-redis/v9"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	redis    *goredis.Client
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres      *db.Postgres
	outboxRelay   workerapp.OutboxRelay
	sweeper       workerapp.PendingSweeper
	enableRelay   bool
	enableSweeper bool
	pollInterval  time.Duration
	logger        *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}
	if strings.TrimSpace(cfg.SessionSecret) == "" {
		return nil, errors.New("SESSION_SECRET is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	models := append(registrypostgres.Models(), paymentpostgres.Models()...)
	if err := pg.Migrate(models...); err != nil {
		_ = pg.Close()
		return nil, err
	}

	registryRepo := registrypostgres.NewRepository(pg.DB, logger)
	registryModule := candidateregistry.NewModule(candidateregistry.Dependencies{
		Candidates: registryRepo,
		Clock:      registrypostgres.SystemClock{},
		IDGen:      registrypostgres.UUIDGenerator{},
		Logger:     logger,
	})

	paymentRepo := paymentpostgres.NewRepository(pg.DB, logger)
	gateway := paystack.NewClient(cfg.PaystackBaseURL, cfg.PaystackSecretKey, cfg.GatewayTimeout, logger)
	paymentModule := paymentreconciliation.NewModule(paymentreconciliation.Dependencies{
		Transactions: paymentRepo,
		Candidates:   paymentRepo,
		Gateway:      gateway,
		Clock:        paymentpostgres.SystemClock{},
		IDGen:        paymentpostgres.UUIDGenerator{},
		RefGen:       paymentpostgres.VoteReferenceGenerator{},
		UnitPrice:    cfg.VoteUnitPrice,
		CallbackURL:  cfg.BaseURL + "/verify-payment",
		Logger:       logger,
	})

	var redisClient *goredis.Client
	var sessionStore sessionports.SessionStore
	if cfg.RedisAddr != "" {
		redisClient = goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		sessionStore = sessionredis.NewStore(redisClient, logger)
	} else {
		sessionStore = sessionmemory.NewStore()
		logger.Warn("admin sessions are in-memory, restarts log admins out",
			"event", "bootstrap_session_store_memory",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	sessionModule := adminsession.NewModule(adminsession.Dependencies{
		AdminPassword: cfg.AdminPassword,
		SigningSecret: []byte(cfg.SessionSecret),
		SessionTTL:    cfg.SessionTTL,
		Sessions:      sessionStore,
		Clock:         sessionredis.SystemClock{},
		IDGen:         sessionredis.UUIDGenerator{},
		Logger:        logger,
	})

	server := httpserver.New(registryModule, paymentModule, sessionModule, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		redis:    redisClient,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(nil, logger)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}

	repo := paymentpostgres.NewRepository(pg.DB, logger)
	gateway := paystack.NewClient(cfg.PaystackBaseURL, cfg.PaystackSecretKey, cfg.GatewayTimeout, logger)
	reconcile := paymentreconciliation.NewModule(paymentreconciliation.Dependencies{
		Transactions: repo,
		Candidates:   repo,
		Gateway:      gateway,
		Clock:        paymentpostgres.SystemClock{},
		IDGen:        paymentpostgres.UUIDGenerator{},
		RefGen:       paymentpostgres.VoteReferenceGenerator{},
		UnitPrice:    cfg.VoteUnitPrice,
		CallbackURL:  cfg.BaseURL + "/verify-payment",
		Logger:       logger,
	}).Reconciliations

	return &WorkerApp{
		postgres: pg,
		outboxRelay: workerapp.OutboxRelay{
			Outbox:    repo,
			Publisher: kafka,
			Clock:     paymentpostgres.SystemClock{},
			Topic:     "payments.reconciled",
			BatchSize: 100,
			Logger:    logger,
		},
		sweeper: workerapp.PendingSweeper{
			Transactions: repo,
			Reconcile:    reconcile,
			Clock:        paymentpostgres.SystemClock{},
			MinAge:       cfg.SweepPendingAge,
			BatchSize:    50,
			Logger:       logger,
		},
		enableRelay:   cfg.EnableOutboxDrip,
		enableSweeper: cfg.EnableSweeper,
		pollInterval:  2 * time.Second,
		logger:        logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
		"outbox_relay", w.enableRelay,
		"pending_sweeper", w.enableSweeper,
	)

	for {
		// A failed pass is logged and retried on the next tick; the loop
		// exists to outlast transient store and broker faults.
		if w.enableSweeper {
			if err := w.sweeper.RunOnce(ctx); err != nil {
				w.logger.Error("pending sweep pass failed",
					"event", "bootstrap_worker_sweep_failed",
					"module", "internal/app/bootstrap",
					"layer", "platform",
					"error", err.Error(),
				)
			}
		}
		if w.enableRelay {
			if err := w.outboxRelay.RunOnce(ctx); err != nil {
				w.logger.Error("outbox relay pass failed",
					"event", "bootstrap_worker_relay_failed",
					"module", "internal/app/bootstrap",
					"layer", "platform",
					"error", err.Error(),
				)
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
