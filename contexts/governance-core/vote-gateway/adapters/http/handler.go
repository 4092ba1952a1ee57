package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"agora/contexts/governance-core/vote-gateway/application/commands"
	"agora/contexts/governance-core/vote-gateway/application/queries"
	httptransport "agora/contexts/governance-core/vote-gateway/transport/http"
)

type Handler struct {
	Submissions commands.SubmitVoteUseCase
	Rebuilds    commands.RebuildUseCase
	Tallies     queries.TallyUseCase
	Logger      *slog.Logger
}

func (h Handler) SubmitVoteHandler(
	ctx context.Context,
	userID string,
	req httptransport.SubmitVoteRequest,
) (httptransport.SubmitVoteResponse, error) {
	result, err := h.Submissions.SubmitVote(ctx, commands.SubmitVoteCommand{
		TransactionHash: req.TransactionHash,
		ProposalID:      req.ProposalID,
		VoteValue:       req.VoteValue,
		WalletAddress:   req.WalletAddress,
		UserID:          userID,
	})
	if err != nil {
		return httptransport.SubmitVoteResponse{}, err
	}
	return httptransport.SubmitVoteResponse{
		Success:     true,
		Verified:    true,
		BlockNumber: result.BlockNumber,
		Tallies: httptransport.TallyBody{
			Yes:   result.Tally.YesCount,
			No:    result.Tally.NoCount,
			Total: result.Tally.TotalVotes,
		},
	}, nil
}

func (h Handler) TallyHandler(ctx context.Context, proposalID uint64) (httptransport.TallyResponse, error) {
	tally, err := h.Tallies.GetTally(ctx, proposalID)
	if err != nil {
		return httptransport.TallyResponse{}, err
	}
	return httptransport.TallyResponse{
		ProposalID: proposalID,
		Tallies: httptransport.TallyBody{
			Yes:   tally.YesCount,
			No:    tally.NoCount,
			Total: tally.TotalVotes,
		},
	}, nil
}

func (h Handler) ProposalResultHandler(ctx context.Context, proposalID uint64) (httptransport.ProposalResultResponse, error) {
	result, err := h.Tallies.ProposalResult(ctx, proposalID)
	if err != nil {
		return httptransport.ProposalResultResponse{}, err
	}
	return httptransport.ProposalResultResponse{
		ProposalID: result.ProposalID,
		Outcome:    result.Outcome,
		Tallies: httptransport.TallyBody{
			Yes:   result.Tally.YesCount,
			No:    result.Tally.NoCount,
			Total: result.Tally.TotalVotes,
		},
	}, nil
}

func (h Handler) ProposalVotesHandler(ctx context.Context, proposalID uint64) (httptransport.ProposalVotesResponse, error) {
	votes, err := h.Tallies.ListVotes(ctx, proposalID)
	if err != nil {
		return httptransport.ProposalVotesResponse{}, err
	}
	items := make([]httptransport.VoteItem, 0, len(votes))
	for _, vote := range votes {
		items = append(items, httptransport.VoteItem{
			VoteID:          vote.VoteID,
			UserID:          vote.UserID,
			WalletAddress:   vote.WalletAddress,
			VoteValue:       vote.VoteValue,
			TransactionHash: vote.TransactionHash,
			BlockNumber:     vote.BlockNumber,
			CreatedAt:       vote.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return httptransport.ProposalVotesResponse{
		ProposalID: proposalID,
		Votes:      items,
	}, nil
}

func (h Handler) RebuildHandler(ctx context.Context) (httptransport.RebuildResponse, error) {
	result, err := h.Rebuilds.Rebuild(ctx)
	if err != nil {
		return httptransport.RebuildResponse{}, err
	}
	return httptransport.RebuildResponse{
		ProposalsSeeded: result.ProposalsSeeded,
		VotesRestored:   result.VotesRestored,
	}, nil
}
