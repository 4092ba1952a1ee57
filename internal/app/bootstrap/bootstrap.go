package bootstrap

import (
	"context"
	"log/slog"
	"strings"
	"time"

	ballotledger "agora/contexts/governance-core/ballot-ledger"
	votegateway "agora/contexts/governance-core/vote-gateway"
	ledgeradapter "agora/contexts/governance-core/vote-gateway/adapters/ledger"
	"agora/contexts/governance-core/vote-gateway/adapters/memory"
	postgresadapter "agora/contexts/governance-core/vote-gateway/adapters/postgres"
	"agora/contexts/governance-core/vote-gateway/application/workers"
	"agora/contexts/governance-core/vote-gateway/ports"
	"agora/internal/platform/config"
	"agora/internal/platform/db"
	"agora/internal/platform/httpserver"
	"agora/internal/platform/messaging"

	"github.com/ethereum/go-ethereum/common"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type App struct {
	server        *httpserver.Server
	postgres      *db.Postgres
	closer        workers.DeadlineCloser
	closerEnabled bool
	sweepInterval time.Duration
	logger        *slog.Logger
}

func Build() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")

	authority := common.HexToAddress(cfg.LedgerAuthority)
	ledgerModule := ballotledger.NewModule(ballotledger.Dependencies{
		ProgramAddress: common.HexToAddress(cfg.LedgerProgramAddress),
		GenesisAdmin:   authority,
		Logger:         logger,
	})
	ledger := ledgeradapter.Adapter{
		Program:   ledgerModule.Program,
		Authority: authority,
	}

	var (
		votes    ports.VoteRepository
		identity ports.IdentityDirectory
		pg       *db.Postgres
	)
	if strings.TrimSpace(cfg.PostgresDSN) != "" {
		pg, err = db.Connect(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		repo := postgresadapter.NewRepository(pg.DB, logger)
		votes = repo
		identity = repo
	} else {
		logger.Warn("no postgres dsn configured; using in-memory vote cache",
			"event", "bootstrap_memory_cache",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		store := memory.NewStore()
		votes = store
		identity = store
	}

	bus := messaging.NewBus(logger)
	gatewayModule := votegateway.NewModule(votegateway.Dependencies{
		Votes:       votes,
		Ledger:      ledger,
		Log:         ledger,
		Proposals:   ledger,
		Identity:    identity,
		Events:      bus,
		Clock:       postgresadapter.SystemClock{},
		IDGen:       postgresadapter.UUIDGenerator{},
		MaxAttempts: cfg.VerifierMaxAttempts,
		RetryDelay:  cfg.VerifierRetryDelay,
		Logger:      logger,
	})

	server := httpserver.New(ledgerModule, gatewayModule, logger, normalizeAddr(cfg.HTTPPort))
	return &App{
		server:   server,
		postgres: pg,
		closer: workers.DeadlineCloser{
			Proposals: ledger,
			Closer:    ledger,
			Events:    bus,
			Clock:     postgresadapter.SystemClock{},
			Logger:    logger,
		},
		closerEnabled: cfg.EnableDeadlineCloser,
		sweepInterval: cfg.DeadlineSweepInterval,
		logger:        logger,
	}, nil
}

// Run starts the deadline sweep loop and serves HTTP until the listener
// fails. The ledger lives in this process, so the sweep shares it rather
// than running as a separate binary.
func (a *App) Run() error {
	defer func() {
		if a.postgres != nil {
			_ = a.postgres.Close()
		}
	}()

	if a.closerEnabled {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go a.sweepLoop(ctx)
	}
	return a.server.Start()
}

func (a *App) sweepLoop(ctx context.Context) {
	interval := a.sweepInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.closer.RunOnce(ctx); err != nil {
				a.logger.Error("deadline sweep cycle failed",
					"event", "bootstrap_sweep_failed",
					"module", "internal/app/bootstrap",
					"layer", "platform",
					"error", err.Error(),
				)
			}
		}
	}
}

func normalizeAddr(port string) string {
	port = strings.TrimSpace(port)
	if port == "" {
		return ":8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}
