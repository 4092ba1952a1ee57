package queries

import (
	"context"

	"agora/contexts/governance-core/vote-gateway/domain/entities"
	"agora/contexts/governance-core/vote-gateway/ports"
)

// TallyUseCase serves the read side of the cache. Reads never touch the
// ledger; they may lag it by confirmation-plus-verification latency.
type TallyUseCase struct {
	Votes ports.VoteRepository
}

// GetTally returns the O(1) tally row for a proposal. A proposal with no
// cached votes reads as all zeroes.
func (uc TallyUseCase) GetTally(ctx context.Context, proposalID uint64) (entities.VoteTally, error) {
	return uc.Votes.GetTally(ctx, proposalID)
}

// ListVotes returns the cached vote rows for a proposal in block order,
// the audit view behind the tally.
func (uc TallyUseCase) ListVotes(ctx context.Context, proposalID uint64) ([]entities.VoteRecord, error) {
	return uc.Votes.ListVotes(ctx, proposalID)
}

// ProposalResult labels the cached outcome. A tie with votes present is
// reported as "recast"; the ledger's winner surface treats the same state
// as no winner, and the two labels are intentionally not unified.
func (uc TallyUseCase) ProposalResult(ctx context.Context, proposalID uint64) (entities.ProposalResult, error) {
	tally, err := uc.Votes.GetTally(ctx, proposalID)
	if err != nil {
		return entities.ProposalResult{}, err
	}
	outcome := entities.OutcomeNone
	switch {
	case tally.TotalVotes == 0:
		outcome = entities.OutcomeNone
	case tally.YesCount == tally.NoCount:
		outcome = entities.OutcomeRecast
	case tally.YesCount > tally.NoCount:
		outcome = entities.OutcomeYes
	default:
		outcome = entities.OutcomeNo
	}
	return entities.ProposalResult{
		ProposalID: proposalID,
		Outcome:    outcome,
		Tally:      tally,
	}, nil
}
