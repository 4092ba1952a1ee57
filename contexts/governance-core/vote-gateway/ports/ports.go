package ports

import (
	"context"
	"time"

	"agora/contexts/governance-core/vote-gateway/domain/entities"

	"github.com/ethereum/go-ethereum/common"
)

// LedgerTransaction is the gateway's projection of one ledger log entry.
type LedgerTransaction struct {
	Hash        common.Hash
	BlockNumber uint64
	From        common.Address
	To          common.Address
	Input       []byte
	Succeeded   bool
}

// ProposalSummary is the gateway's projection of ledger proposal state.
type ProposalSummary struct {
	ID     uint64
	EndAt  int64
	Closed bool
}

// LedgerReader is the read surface the verifier needs. Implementations must
// return an InfrastructureError for transport faults so the retry loop can
// tell them apart from a genuinely missing transaction.
type LedgerReader interface {
	TransactionByHash(ctx context.Context, hash common.Hash) (LedgerTransaction, bool, error)
	ProgramAddress() common.Address
}

// LedgerLog exposes the full execution log for cache rebuilds.
type LedgerLog interface {
	TransactionsInOrder(ctx context.Context) ([]LedgerTransaction, error)
}

type ProposalDirectory interface {
	ListProposals(ctx context.Context) ([]ProposalSummary, error)
}

// ProposalCloser closes a proposal on the ledger under the configured
// authority.
type ProposalCloser interface {
	Close(ctx context.Context, proposalID uint64) error
}

// ClaimVerifier confirms that a claimed vote transaction genuinely occurred
// exactly as claimed.
type ClaimVerifier interface {
	Verify(ctx context.Context, claim entities.VoteClaim) (entities.VerifiedTransaction, error)
}

// VoteRepository is the cache & tally store. InsertVote must update the
// tally atomically with the row insert and surface uniqueness violations as
// the domain's already-voted conflict.
type VoteRepository interface {
	InsertVote(ctx context.Context, record entities.VoteRecord) error
	HasVote(ctx context.Context, proposalID uint64, userID string) (bool, error)
	GetTally(ctx context.Context, proposalID uint64) (entities.VoteTally, error)
	ListVotes(ctx context.Context, proposalID uint64) ([]entities.VoteRecord, error)
	EnsureTally(ctx context.Context, proposalID uint64) error
	Reset(ctx context.Context) error
}

// IdentityDirectory resolves the pseudonymous wallet back to the platform
// user, used on replay when no submission context exists.
type IdentityDirectory interface {
	UserIDByWallet(ctx context.Context, wallet common.Address) (string, bool, error)
}

// EventEnvelope is the shape governance events travel in on the bus.
type EventEnvelope struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	SourceService string    `json:"source_service"`
	OccurredAtUTC time.Time `json:"occurred_at_utc"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	Payload       any       `json:"payload"`
}

// EventPublisher fans governance events out to interested consumers.
// Publishing is best-effort; a failed publish never rolls back the write it
// announces.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
