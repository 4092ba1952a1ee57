package ballotledger

import (
	"log/slog"

	httpadapter "agora/contexts/governance-core/ballot-ledger/adapters/http"
	"agora/contexts/governance-core/ballot-ledger/program"

	"github.com/ethereum/go-ethereum/common"
)

type Module struct {
	Handler httpadapter.Handler
	Program *program.Program
}

type Dependencies struct {
	ProgramAddress common.Address
	GenesisAdmin   common.Address
	Clock          program.Clock
	Logger         *slog.Logger
}

func NewModule(deps Dependencies) Module {
	ledger := program.New(deps.ProgramAddress, deps.GenesisAdmin, deps.Clock, deps.Logger)
	return Module{
		Handler: httpadapter.Handler{
			Program: ledger,
			Logger:  deps.Logger,
		},
		Program: ledger,
	}
}
