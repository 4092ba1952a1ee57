package entities

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// VoteClaim is a client assertion that a vote transaction exists on the
// ledger. Nothing in it is trusted until the verifier has checked it.
type VoteClaim struct {
	TransactionHash string
	ProposalID      uint64
	VoteValue       bool
	WalletAddress   string
	UserID          string
}

// VerifiedTransaction is the ledger evidence extracted once all
// verification checks pass.
type VerifiedTransaction struct {
	Hash        common.Hash
	BlockNumber uint64
	From        common.Address
}

// VoteRecord is one cached vote row. Rows are insert-only; normal operation
// never mutates or deletes them.
type VoteRecord struct {
	VoteID          string
	ProposalID      uint64
	UserID          string
	WalletAddress   string
	VoteValue       bool
	TransactionHash string
	BlockNumber     uint64
	CreatedAt       time.Time
}

// VoteTally is the O(1) read model per proposal. It is only ever updated in
// the same transaction that inserts a vote row.
type VoteTally struct {
	ProposalID uint64
	YesCount   uint64
	NoCount    uint64
	TotalVotes uint64
}

const (
	OutcomeYes    = "yes"
	OutcomeNo     = "no"
	OutcomeRecast = "recast"
	OutcomeNone   = "none"
)

// ProposalResult is the cache-side outcome label. A tie with votes present
// reads "recast"; the ledger's winner surface reports the same condition as
// no winner, and the two are deliberately kept distinct.
type ProposalResult struct {
	ProposalID uint64
	Outcome    string
	Tally      VoteTally
}
