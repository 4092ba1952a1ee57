package votegateway

import (
	"log/slog"
	"time"

	httpadapter "agora/contexts/governance-core/vote-gateway/adapters/http"
	"agora/contexts/governance-core/vote-gateway/adapters/memory"
	"agora/contexts/governance-core/vote-gateway/application/commands"
	"agora/contexts/governance-core/vote-gateway/application/queries"
	"agora/contexts/governance-core/vote-gateway/application/verifier"
	"agora/contexts/governance-core/vote-gateway/ports"
)

type Module struct {
	Handler  httpadapter.Handler
	Verifier verifier.Verifier
	Store    *memory.Store
}

type Dependencies struct {
	Votes       ports.VoteRepository
	Ledger      ports.LedgerReader
	Log         ports.LedgerLog
	Proposals   ports.ProposalDirectory
	Identity    ports.IdentityDirectory
	Events      ports.EventPublisher
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	MaxAttempts int
	RetryDelay  time.Duration
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	claimVerifier := verifier.Verifier{
		Ledger:      deps.Ledger,
		MaxAttempts: deps.MaxAttempts,
		RetryDelay:  deps.RetryDelay,
		Logger:      deps.Logger,
	}
	submitUseCase := commands.SubmitVoteUseCase{
		Votes:    deps.Votes,
		Verifier: claimVerifier,
		Events:   deps.Events,
		Clock:    deps.Clock,
		IDGen:    deps.IDGen,
		Logger:   deps.Logger,
	}
	rebuildUseCase := commands.RebuildUseCase{
		Votes:     deps.Votes,
		Log:       deps.Log,
		Proposals: deps.Proposals,
		Identity:  deps.Identity,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	tallyUseCase := queries.TallyUseCase{
		Votes: deps.Votes,
	}
	return Module{
		Handler: httpadapter.Handler{
			Submissions: submitUseCase,
			Rebuilds:    rebuildUseCase,
			Tallies:     tallyUseCase,
			Logger:      deps.Logger,
		},
		Verifier: claimVerifier,
	}
}

// NewInMemoryModule wires the gateway over the in-memory store, keeping the
// supplied ledger ports. Used by tests and local runs without postgres.
func NewInMemoryModule(
	ledger ports.LedgerReader,
	log ports.LedgerLog,
	proposals ports.ProposalDirectory,
	logger *slog.Logger,
) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Votes:       store,
		Ledger:      ledger,
		Log:         log,
		Proposals:   proposals,
		Identity:    store,
		Clock:       store,
		IDGen:       store,
		MaxAttempts: 3,
		RetryDelay:  10 * time.Millisecond,
		Logger:      logger,
	})
	module.Store = store
	return module
}
