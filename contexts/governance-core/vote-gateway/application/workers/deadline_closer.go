package workers

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	application "agora/contexts/governance-core/vote-gateway/application"
	"agora/contexts/governance-core/vote-gateway/ports"
)

// DeadlineCloser sweeps the ledger for open proposals whose deadline has
// passed and closes them under the configured authority. Close is
// idempotent on the ledger, so observing a proposal twice is harmless.
type DeadlineCloser struct {
	Proposals ports.ProposalDirectory
	Closer    ports.ProposalCloser
	Events    ports.EventPublisher
	Clock     ports.Clock
	Logger    *slog.Logger
}

// RunOnce performs one sweep. Failures on individual proposals are logged
// and the sweep continues; the first error is reported so the scheduler can
// re-run the cycle.
func (w DeadlineCloser) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(w.Logger)

	proposals, err := w.Proposals.ListProposals(ctx)
	if err != nil {
		logger.Error("deadline sweep listing failed",
			"event", "gateway_deadline_sweep_list_failed",
			"module", "governance-core/vote-gateway",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	now := time.Now().UTC()
	if w.Clock != nil {
		now = w.Clock.Now().UTC()
	}

	var firstErr error
	closed := 0
	for _, proposal := range proposals {
		if proposal.Closed || proposal.EndAt == 0 || now.Unix() < proposal.EndAt {
			continue
		}
		if err := w.Closer.Close(ctx, proposal.ID); err != nil {
			logger.Error("deadline close failed",
				"event", "gateway_deadline_close_failed",
				"module", "governance-core/vote-gateway",
				"layer", "worker",
				"proposal_id", proposal.ID,
				"error", err.Error(),
			)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		closed++
		if w.Events != nil {
			_ = w.Events.Publish(ctx, "governance.proposals", ports.EventEnvelope{
				EventID:       strconv.FormatUint(proposal.ID, 10) + "-closed",
				EventType:     "proposal_closed",
				SourceService: "governance-core/vote-gateway",
				OccurredAtUTC: now,
				EntityType:    "proposal",
				EntityID:      strconv.FormatUint(proposal.ID, 10),
				Payload: map[string]any{
					"proposal_id": proposal.ID,
					"end_at":      proposal.EndAt,
				},
			})
		}
		logger.Info("expired proposal closed",
			"event", "gateway_deadline_closed",
			"module", "governance-core/vote-gateway",
			"layer", "worker",
			"proposal_id", proposal.ID,
			"end_at", proposal.EndAt,
		)
	}

	if closed > 0 || firstErr != nil {
		logger.Info("deadline sweep finished",
			"event", "gateway_deadline_sweep_finished",
			"module", "governance-core/vote-gateway",
			"layer", "worker",
			"closed", closed,
		)
	}
	return firstErr
}
