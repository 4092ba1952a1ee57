package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"agora/contexts/governance-core/vote-gateway/domain/entities"
	domainerrors "agora/contexts/governance-core/vote-gateway/domain/errors"

	"github.com/ethereum/go-ethereum/common"
)

func record(proposalID uint64, userID string, yes bool) entities.VoteRecord {
	return entities.VoteRecord{
		VoteID:          userID + "-vote",
		ProposalID:      proposalID,
		UserID:          userID,
		WalletAddress:   "0x00000000000000000000000000000000000000aa",
		VoteValue:       yes,
		TransactionHash: "0x01",
		BlockNumber:     7,
		CreatedAt:       time.Now().UTC(),
	}
}

func TestInsertVoteUpdatesTallyAtomically(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if err := store.InsertVote(ctx, record(1, "u1", true)); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := store.InsertVote(ctx, record(1, "u2", false)); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	tally, err := store.GetTally(ctx, 1)
	if err != nil {
		t.Fatalf("tally read failed: %v", err)
	}
	if tally.YesCount != 1 || tally.NoCount != 1 || tally.TotalVotes != 2 {
		t.Fatalf("unexpected tally: %+v", tally)
	}
}

func TestInsertVoteRejectsDuplicateUser(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if err := store.InsertVote(ctx, record(1, "u1", true)); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := store.InsertVote(ctx, record(1, "u1", false)); !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}

	// The rejected insert must not move the tally.
	tally, _ := store.GetTally(ctx, 1)
	if tally.TotalVotes != 1 || tally.YesCount != 1 {
		t.Fatalf("duplicate moved the tally: %+v", tally)
	}

	// Same user on another proposal is a fresh vote.
	if err := store.InsertVote(ctx, record(2, "u1", false)); err != nil {
		t.Fatalf("cross-proposal insert failed: %v", err)
	}
}

func TestListVotesOrdersByBlockNumber(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	first := record(1, "u1", true)
	first.BlockNumber = 3
	second := record(1, "u2", false)
	second.BlockNumber = 1
	if err := store.InsertVote(ctx, first); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := store.InsertVote(ctx, second); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	votes, err := store.ListVotes(ctx, 1)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(votes) != 2 || votes[0].UserID != "u2" || votes[1].UserID != "u1" {
		t.Fatalf("unexpected order: %+v", votes)
	}
}

func TestResetClearsVotesAndTallies(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if err := store.InsertVote(ctx, record(1, "u1", true)); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := store.EnsureTally(ctx, 2); err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	if err := store.Reset(ctx); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	if has, _ := store.HasVote(ctx, 1, "u1"); has {
		t.Fatalf("reset left a vote row")
	}
	tally, _ := store.GetTally(ctx, 1)
	if tally.TotalVotes != 0 {
		t.Fatalf("reset left a tally: %+v", tally)
	}
}

func TestEnsureTallyKeepsExistingCounts(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	if err := store.InsertVote(ctx, record(1, "u1", true)); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if err := store.EnsureTally(ctx, 1); err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	tally, _ := store.GetTally(ctx, 1)
	if tally.YesCount != 1 {
		t.Fatalf("ensure reset an existing tally: %+v", tally)
	}
}

func TestIdentityLookup(t *testing.T) {
	store := NewStore()
	wallet := common.HexToAddress("0x00000000000000000000000000000000000000aa")

	if _, found, _ := store.UserIDByWallet(context.Background(), wallet); found {
		t.Fatalf("unexpected identity hit")
	}
	store.SetIdentity(wallet, "user-1")
	userID, found, err := store.UserIDByWallet(context.Background(), wallet)
	if err != nil || !found || userID != "user-1" {
		t.Fatalf("expected user-1, got %q found=%v err=%v", userID, found, err)
	}
}
