package candidateregistry

import (
	"log/slog"

	httpadapter "ovation/contexts/voting-core/candidate-registry/adapters/http"
	"ovation/contexts/voting-core/candidate-registry/adapters/memory"
	"ovation/contexts/voting-core/candidate-registry/application/commands"
	"ovation/contexts/voting-core/candidate-registry/application/queries"
	"ovation/contexts/voting-core/candidate-registry/domain/entities"
	"ovation/contexts/voting-core/candidate-registry/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Candidates ports.CandidateRepository
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	voteUseCase := commands.VoteUseCase{
		Candidates: deps.Candidates,
		Logger:     deps.Logger,
	}
	seedUseCase := commands.SeedUseCase{
		Candidates: deps.Candidates,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Logger:     deps.Logger,
	}
	standingsUseCase := queries.StandingsUseCase{
		Candidates: deps.Candidates,
	}
	return Module{
		Handler: httpadapter.Handler{
			Votes:     voteUseCase,
			Seeds:     seedUseCase,
			Standings: standingsUseCase,
			Logger:    deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.Candidate, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Candidates: store,
		Clock:      store,
		IDGen:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
