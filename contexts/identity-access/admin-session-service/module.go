package adminsession

import (
	"log/slog"
	"time"

	"ovation/contexts/identity-access/admin-session-service/adapters/memory"
	"ovation/contexts/identity-access/admin-session-service/application"
	"ovation/contexts/identity-access/admin-session-service/ports"
)

// Module bundles the admin session surface for host wiring.
type Module struct {
	Sessions application.Service

	// Store is set when the module was built in-memory; tests use it to
	// manipulate the clock and inspect stored sessions.
	Store *memory.Store
}

type Dependencies struct {
	AdminPassword string
	SigningSecret []byte
	SessionTTL    time.Duration
	Sessions      ports.SessionStore
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	Logger        *slog.Logger
}

func NewModule(deps Dependencies) *Module {
	return &Module{
		Sessions: application.Service{
			AdminPassword: deps.AdminPassword,
			SigningSecret: deps.SigningSecret,
			SessionTTL:    deps.SessionTTL,
			Sessions:      deps.Sessions,
			Clock:         deps.Clock,
			IDGen:         deps.IDGen,
			Logger:        deps.Logger,
		},
	}
}

// NewInMemoryModule wires the service against the in-memory store.
func NewInMemoryModule(adminPassword string, signingSecret []byte, sessionTTL time.Duration, logger *slog.Logger) *Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		AdminPassword: adminPassword,
		SigningSecret: signingSecret,
		SessionTTL:    sessionTTL,
		Sessions:      store,
		Clock:         store,
		IDGen:         store,
		Logger:        logger,
	})
	module.Store = store
	return module
}
