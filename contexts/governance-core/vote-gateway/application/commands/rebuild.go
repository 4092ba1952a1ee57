package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "agora/contexts/governance-core/vote-gateway/application"
	"agora/contexts/governance-core/vote-gateway/domain/calldata"
	"agora/contexts/governance-core/vote-gateway/domain/entities"
	domainerrors "agora/contexts/governance-core/vote-gateway/domain/errors"
	"agora/contexts/governance-core/vote-gateway/ports"
)

// RebuildResult summarizes one cache rebuild.
type RebuildResult struct {
	ProposalsSeeded int
	VotesRestored   int
}

// RebuildUseCase is the canonical disaster-recovery procedure: wipe the
// derived store and replay the ledger log in block order. Every cached row
// is derivable from a verified ledger event, so the result matches what the
// submission path would have produced.
type RebuildUseCase struct {
	Votes     ports.VoteRepository
	Log       ports.LedgerLog
	Proposals ports.ProposalDirectory
	Identity  ports.IdentityDirectory
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func (uc RebuildUseCase) Rebuild(ctx context.Context) (RebuildResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	logger.Info("cache rebuild started",
		"event", "gateway_rebuild_started",
		"module", "governance-core/vote-gateway",
		"layer", "application",
	)

	records, err := uc.Log.TransactionsInOrder(ctx)
	if err != nil {
		return RebuildResult{}, err
	}
	proposals, err := uc.Proposals.ListProposals(ctx)
	if err != nil {
		return RebuildResult{}, err
	}

	if err := uc.Votes.Reset(ctx); err != nil {
		return RebuildResult{}, err
	}

	result := RebuildResult{}
	for _, proposal := range proposals {
		if err := uc.Votes.EnsureTally(ctx, proposal.ID); err != nil {
			return result, err
		}
		result.ProposalsSeeded++
	}

	for _, record := range records {
		if !record.Succeeded || !calldata.IsVoteCall(record.Input) {
			continue
		}
		proposalID, supportYes, err := calldata.DecodeVoteParams(record.Input)
		if err != nil {
			logger.Warn("skipping undecodable vote transaction",
				"event", "gateway_rebuild_decode_skipped",
				"module", "governance-core/vote-gateway",
				"layer", "application",
				"tx_hash", record.Hash.Hex(),
				"error", err.Error(),
			)
			continue
		}

		userID := strings.ToLower(record.From.Hex())
		if uc.Identity != nil {
			if resolved, found, err := uc.Identity.UserIDByWallet(ctx, record.From); err == nil && found {
				userID = resolved
			}
		}

		voteID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return result, err
		}
		row := entities.VoteRecord{
			VoteID:          voteID,
			ProposalID:      proposalID,
			UserID:          userID,
			WalletAddress:   record.From.Hex(),
			VoteValue:       supportYes,
			TransactionHash: record.Hash.Hex(),
			BlockNumber:     record.BlockNumber,
			CreatedAt:       uc.now(),
		}
		if err := uc.Votes.InsertVote(ctx, row); err != nil {
			// The ledger enforces one vote per address, so a conflict here
			// means two wallets resolved to the same user. Keep the earlier
			// row and continue the replay.
			if errors.Is(err, domainerrors.ErrAlreadyVoted) {
				logger.Warn("replayed vote collided with an earlier row",
					"event", "gateway_rebuild_vote_collision",
					"module", "governance-core/vote-gateway",
					"layer", "application",
					"proposal_id", proposalID,
					"user_id", userID,
					"tx_hash", record.Hash.Hex(),
				)
				continue
			}
			return result, err
		}
		result.VotesRestored++
	}

	logger.Info("cache rebuild finished",
		"event", "gateway_rebuild_finished",
		"module", "governance-core/vote-gateway",
		"layer", "application",
		"proposals_seeded", result.ProposalsSeeded,
		"votes_restored", result.VotesRestored,
	)
	return result, nil
}

func (uc RebuildUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
