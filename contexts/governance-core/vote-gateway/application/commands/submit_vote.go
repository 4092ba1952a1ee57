package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "agora/contexts/governance-core/vote-gateway/application"
	"agora/contexts/governance-core/vote-gateway/domain/entities"
	domainerrors "agora/contexts/governance-core/vote-gateway/domain/errors"
	"agora/contexts/governance-core/vote-gateway/ports"

	"github.com/ethereum/go-ethereum/common"
)

// SubmitVoteCommand is the write-model input for one vote submission.
type SubmitVoteCommand struct {
	TransactionHash string
	ProposalID      uint64
	VoteValue       bool
	WalletAddress   string
	UserID          string
}

// SubmitVoteResult carries the committed vote and the updated tallies.
type SubmitVoteResult struct {
	Vote        entities.VoteRecord
	BlockNumber uint64
	Tally       entities.VoteTally
}

// submitPipelineTimeout bounds one accepted submission end to end once it
// no longer follows the caller's context.
const submitPipelineTimeout = 30 * time.Second

// SubmitVoteUseCase sequences the submission pipeline: fast duplicate
// pre-check, independent verification, atomic cache commit, tally response.
// The pre-check and the insert are separated by the verification round-trip,
// so two racing submissions can both pass the pre-check; the unique insert
// is the sole serialization point and decides the winner.
type SubmitVoteUseCase struct {
	Votes    ports.VoteRepository
	Verifier ports.ClaimVerifier
	Events   ports.EventPublisher
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

func (uc SubmitVoteUseCase) SubmitVote(ctx context.Context, cmd SubmitVoteCommand) (SubmitVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	logger.Info("vote submission started",
		"event", "gateway_submit_started",
		"module", "governance-core/vote-gateway",
		"layer", "application",
		"proposal_id", cmd.ProposalID,
		"user_id", strings.TrimSpace(cmd.UserID),
		"tx_hash", strings.TrimSpace(cmd.TransactionHash),
	)

	userID := strings.TrimSpace(cmd.UserID)
	if userID == "" || cmd.ProposalID == 0 ||
		strings.TrimSpace(cmd.TransactionHash) == "" ||
		!common.IsHexAddress(strings.TrimSpace(cmd.WalletAddress)) {
		logger.Warn("vote submission validation failed",
			"event", "gateway_submit_validation_failed",
			"module", "governance-core/vote-gateway",
			"layer", "application",
			"proposal_id", cmd.ProposalID,
			"user_id", userID,
		)
		return SubmitVoteResult{}, domainerrors.ErrInvalidClaimInput
	}
	wallet := common.HexToAddress(strings.TrimSpace(cmd.WalletAddress))

	// The submission is accepted past this point. A caller disconnecting
	// mid-verification must not abandon the claim before the cache write
	// commits, so the pipeline runs on its own deadline from here.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), submitPipelineTimeout)
	defer cancel()

	// First defense within the gateway: a local row lookup avoids the ledger
	// round-trip for a repeat submission. A race slipping past here is still
	// caught by the unique insert below.
	if exists, err := uc.Votes.HasVote(ctx, cmd.ProposalID, userID); err != nil {
		logger.Error("vote pre-check failed",
			"event", "gateway_submit_precheck_failed",
			"module", "governance-core/vote-gateway",
			"layer", "application",
			"proposal_id", cmd.ProposalID,
			"user_id", userID,
			"error", err.Error(),
		)
		return SubmitVoteResult{}, err
	} else if exists {
		logger.Info("vote submission rejected on pre-check",
			"event", "gateway_submit_duplicate_precheck",
			"module", "governance-core/vote-gateway",
			"layer", "application",
			"proposal_id", cmd.ProposalID,
			"user_id", userID,
		)
		return SubmitVoteResult{}, domainerrors.ErrAlreadyVoted
	}

	verified, err := uc.Verifier.Verify(ctx, entities.VoteClaim{
		TransactionHash: strings.TrimSpace(cmd.TransactionHash),
		ProposalID:      cmd.ProposalID,
		VoteValue:       cmd.VoteValue,
		WalletAddress:   wallet.Hex(),
		UserID:          userID,
	})
	if err != nil {
		logger.Warn("vote claim failed verification",
			"event", "gateway_submit_verification_failed",
			"module", "governance-core/vote-gateway",
			"layer", "application",
			"proposal_id", cmd.ProposalID,
			"user_id", userID,
			"tx_hash", strings.TrimSpace(cmd.TransactionHash),
			"error", err.Error(),
		)
		return SubmitVoteResult{}, err
	}

	voteID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return SubmitVoteResult{}, err
	}
	record := entities.VoteRecord{
		VoteID:          voteID,
		ProposalID:      cmd.ProposalID,
		UserID:          userID,
		WalletAddress:   verified.From.Hex(),
		VoteValue:       cmd.VoteValue,
		TransactionHash: verified.Hash.Hex(),
		BlockNumber:     verified.BlockNumber,
		CreatedAt:       uc.now(),
	}
	if err := uc.Votes.InsertVote(ctx, record); err != nil {
		if domainerrors.KindOf(err) == domainerrors.KindStateConflict {
			logger.Info("vote submission lost the insert race",
				"event", "gateway_submit_duplicate_insert",
				"module", "governance-core/vote-gateway",
				"layer", "application",
				"proposal_id", cmd.ProposalID,
				"user_id", userID,
			)
		} else {
			logger.Error("vote cache insert failed",
				"event", "gateway_submit_insert_failed",
				"module", "governance-core/vote-gateway",
				"layer", "application",
				"proposal_id", cmd.ProposalID,
				"user_id", userID,
				"error", err.Error(),
			)
		}
		return SubmitVoteResult{}, err
	}

	tally, err := uc.Votes.GetTally(ctx, cmd.ProposalID)
	if err != nil {
		return SubmitVoteResult{}, err
	}

	if uc.Events != nil {
		if err := uc.Events.Publish(ctx, "governance.votes", ports.EventEnvelope{
			EventID:       record.VoteID,
			EventType:     "vote_recorded",
			SourceService: "governance-core/vote-gateway",
			OccurredAtUTC: record.CreatedAt,
			EntityType:    "vote",
			EntityID:      record.VoteID,
			Payload: map[string]any{
				"proposal_id":  record.ProposalID,
				"user_id":      record.UserID,
				"vote_value":   record.VoteValue,
				"block_number": record.BlockNumber,
			},
		}); err != nil {
			logger.Warn("vote event publish failed",
				"event", "gateway_submit_event_failed",
				"module", "governance-core/vote-gateway",
				"layer", "application",
				"proposal_id", cmd.ProposalID,
				"vote_id", record.VoteID,
				"error", err.Error(),
			)
		}
	}

	logger.Info("vote submission committed",
		"event", "gateway_submit_committed",
		"module", "governance-core/vote-gateway",
		"layer", "application",
		"proposal_id", cmd.ProposalID,
		"user_id", userID,
		"vote_id", record.VoteID,
		"block_number", record.BlockNumber,
		"yes", tally.YesCount,
		"no", tally.NoCount,
		"total", tally.TotalVotes,
	)
	return SubmitVoteResult{
		Vote:        record,
		BlockNumber: record.BlockNumber,
		Tally:       tally,
	}, nil
}

func (uc SubmitVoteUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
