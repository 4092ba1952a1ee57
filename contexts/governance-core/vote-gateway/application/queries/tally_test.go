package queries

import (
	"context"
	"testing"
	"time"

	"agora/contexts/governance-core/vote-gateway/adapters/memory"
	"agora/contexts/governance-core/vote-gateway/domain/entities"
)

func seedVote(t *testing.T, store *memory.Store, proposalID uint64, userID string, yes bool) {
	t.Helper()
	err := store.InsertVote(context.Background(), entities.VoteRecord{
		VoteID:          userID + "-vote",
		ProposalID:      proposalID,
		UserID:          userID,
		WalletAddress:   "0x00000000000000000000000000000000000000aa",
		VoteValue:       yes,
		TransactionHash: "0x00",
		BlockNumber:     1,
		CreatedAt:       time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed vote failed: %v", err)
	}
}

func TestGetTallyUnknownProposalReadsZero(t *testing.T) {
	uc := TallyUseCase{Votes: memory.NewStore()}
	tally, err := uc.GetTally(context.Background(), 99)
	if err != nil {
		t.Fatalf("tally read failed: %v", err)
	}
	if tally.ProposalID != 99 || tally.TotalVotes != 0 {
		t.Fatalf("expected an all-zero tally, got %+v", tally)
	}
}

func TestListVotesReturnsRowsInBlockOrder(t *testing.T) {
	store := memory.NewStore()
	uc := TallyUseCase{Votes: store}
	ctx := context.Background()

	later := entities.VoteRecord{
		VoteID: "v-later", ProposalID: 1, UserID: "u1",
		WalletAddress: "0x00000000000000000000000000000000000000aa",
		VoteValue:     true, BlockNumber: 9, CreatedAt: time.Now().UTC(),
	}
	earlier := entities.VoteRecord{
		VoteID: "v-earlier", ProposalID: 1, UserID: "u2",
		WalletAddress: "0x00000000000000000000000000000000000000bb",
		VoteValue:     false, BlockNumber: 4, CreatedAt: time.Now().UTC(),
	}
	for _, record := range []entities.VoteRecord{later, earlier} {
		if err := store.InsertVote(ctx, record); err != nil {
			t.Fatalf("seed vote failed: %v", err)
		}
	}

	votes, err := uc.ListVotes(ctx, 1)
	if err != nil {
		t.Fatalf("list votes failed: %v", err)
	}
	if len(votes) != 2 || votes[0].VoteID != "v-earlier" || votes[1].VoteID != "v-later" {
		t.Fatalf("unexpected order: %+v", votes)
	}

	empty, err := uc.ListVotes(ctx, 2)
	if err != nil {
		t.Fatalf("list votes failed: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no rows for an unseeded proposal, got %+v", empty)
	}
}

func TestProposalResultLabels(t *testing.T) {
	store := memory.NewStore()
	uc := TallyUseCase{Votes: store}
	ctx := context.Background()

	// No votes at all.
	result, err := uc.ProposalResult(ctx, 1)
	if err != nil {
		t.Fatalf("result read failed: %v", err)
	}
	if result.Outcome != entities.OutcomeNone {
		t.Fatalf("expected %q for an empty proposal, got %q", entities.OutcomeNone, result.Outcome)
	}

	// One yes.
	seedVote(t, store, 1, "u1", true)
	result, _ = uc.ProposalResult(ctx, 1)
	if result.Outcome != entities.OutcomeYes {
		t.Fatalf("expected %q, got %q", entities.OutcomeYes, result.Outcome)
	}

	// Balanced with votes present is a recast, not none.
	seedVote(t, store, 1, "u2", false)
	result, _ = uc.ProposalResult(ctx, 1)
	if result.Outcome != entities.OutcomeRecast {
		t.Fatalf("expected %q on a tie, got %q", entities.OutcomeRecast, result.Outcome)
	}

	// No pulls ahead.
	seedVote(t, store, 1, "u3", false)
	result, _ = uc.ProposalResult(ctx, 1)
	if result.Outcome != entities.OutcomeNo {
		t.Fatalf("expected %q, got %q", entities.OutcomeNo, result.Outcome)
	}
	if result.Tally.TotalVotes != 3 {
		t.Fatalf("expected the tally alongside the label, got %+v", result.Tally)
	}
}
