package paymentreconciliation

import (
	"log/slog"

	httpadapter "ovation/contexts/voting-core/payment-reconciliation/adapters/http"
	"ovation/contexts/voting-core/payment-reconciliation/adapters/memory"
	"ovation/contexts/voting-core/payment-reconciliation/application/commands"
	"ovation/contexts/voting-core/payment-reconciliation/application/queries"
	"ovation/contexts/voting-core/payment-reconciliation/ports"
)

type Module struct {
	Handler         httpadapter.Handler
	Initiations     commands.InitiateUseCase
	Reconciliations commands.ReconcileUseCase
	Store           *memory.Store
	Gateway         *memory.Gateway
}

type Dependencies struct {
	Transactions ports.TransactionRepository
	Candidates   ports.CandidateDirectory
	Gateway      ports.Gateway
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	RefGen       ports.ReferenceGenerator
	UnitPrice    int64
	CallbackURL  string
	Logger       *slog.Logger
}

func NewModule(deps Dependencies) Module {
	initiateUseCase := commands.InitiateUseCase{
		Transactions: deps.Transactions,
		Candidates:   deps.Candidates,
		Gateway:      deps.Gateway,
		Clock:        deps.Clock,
		IDGen:        deps.IDGen,
		RefGen:       deps.RefGen,
		UnitPrice:    deps.UnitPrice,
		CallbackURL:  deps.CallbackURL,
		Logger:       deps.Logger,
	}
	reconcileUseCase := commands.ReconcileUseCase{
		Transactions: deps.Transactions,
		Gateway:      deps.Gateway,
		Clock:        deps.Clock,
		IDGen:        deps.IDGen,
		Logger:       deps.Logger,
	}
	ledgerUseCase := queries.LedgerUseCase{
		Transactions: deps.Transactions,
	}
	return Module{
		Handler: httpadapter.Handler{
			Initiations:     initiateUseCase,
			Reconciliations: reconcileUseCase,
			Ledger:          ledgerUseCase,
			Logger:          deps.Logger,
		},
		Initiations:     initiateUseCase,
		Reconciliations: reconcileUseCase,
	}
}

func NewInMemoryModule(unitPrice int64, callbackURL string, logger *slog.Logger) Module {
	store := memory.NewStore()
	gateway := memory.NewGateway()
	module := NewModule(Dependencies{
		Transactions: store,
		Candidates:   store,
		Gateway:      gateway,
		Clock:        store,
		IDGen:        store,
		RefGen:       store,
		UnitPrice:    unitPrice,
		CallbackURL:  callbackURL,
		Logger:       logger,
	})
	module.Store = store
	module.Gateway = gateway
	return module
}
