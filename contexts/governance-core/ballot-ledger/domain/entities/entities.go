package entities

import "github.com/ethereum/go-ethereum/common"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleCouncil Role = "council"
)

// Proposal is the ledger-side view of a proposal. Times are unix seconds;
// EndAt == 0 marks an open-ended proposal.
type Proposal struct {
	ID           uint64
	Title        string
	Text         string
	Creator      string
	Authorizer   string
	DecisionDate int64
	StartAt      int64
	EndAt        int64
	Closed       bool
	Yes          uint64
	No           uint64
}

const (
	TxStatusReverted uint64 = 0
	TxStatusSuccess  uint64 = 1
)

// TransactionRecord is one entry of the append-only execution log.
type TransactionRecord struct {
	Hash        common.Hash
	BlockNumber uint64
	From        common.Address
	To          common.Address
	Input       []byte
	Status      uint64
}

// VoteOutcome carries the totals emitted by a successful vote transition.
type VoteOutcome struct {
	TxHash      common.Hash
	BlockNumber uint64
	Yes         uint64
	No          uint64
}
