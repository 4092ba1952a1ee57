package program

import (
	"log/slog"
	"sync"
	"time"

	"agora/contexts/governance-core/ballot-ledger/domain/entities"
	domainerrors "agora/contexts/governance-core/ballot-ledger/domain/errors"

	"github.com/ethereum/go-ethereum/common"
)

// Clock abstracts time so deadline behavior is testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

type proposalState struct {
	entities.Proposal
	voted map[common.Address]bool
}

// Program is the authoritative proposal/vote state machine. One mutex
// serializes every state-changing call, which makes each check-then-set
// transition atomic without further locking; this models the single global
// execution order of the original substrate.
type Program struct {
	mu sync.RWMutex

	address common.Address
	clock   Clock
	logger  *slog.Logger

	nextProposalID uint64
	height         uint64
	proposals      map[uint64]*proposalState
	proposalOrder  []uint64

	roles map[entities.Role]map[common.Address]bool

	txByHash map[common.Hash]entities.TransactionRecord
	txOrder  []common.Hash
}

// New builds a program deployed at address with one genesis admin.
func New(address common.Address, genesisAdmin common.Address, clock Clock, logger *slog.Logger) *Program {
	if clock == nil {
		clock = systemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	roles := map[entities.Role]map[common.Address]bool{
		entities.RoleAdmin:   {genesisAdmin: true},
		entities.RoleCouncil: {},
	}
	return &Program{
		address:        address,
		clock:          clock,
		logger:         logger,
		nextProposalID: 1,
		proposals:      make(map[uint64]*proposalState),
		roles:          roles,
		txByHash:       make(map[common.Hash]entities.TransactionRecord),
	}
}

// Address returns the deployment address claims must target.
func (p *Program) Address() common.Address {
	return p.address
}

// Create registers a new proposal. Restricted to admin or council callers.
// EndAt is left at the open-ended sentinel when durationSeconds is zero.
func (p *Program) Create(
	caller common.Address,
	title, text, creator, authorizer string,
	decisionDate int64,
	durationSeconds int64,
) (uint64, common.Hash, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	input := encodeCreateCall(title, text, creator, authorizer, decisionDate, durationSeconds)
	if !p.hasProposalRole(caller) {
		hash := p.appendTx(caller, input, entities.TxStatusReverted)
		return 0, hash, domainerrors.ErrUnauthorized
	}

	startAt := p.clock.Now().Unix()
	var endAt int64
	if durationSeconds != 0 {
		endAt = startAt + durationSeconds
		if endAt <= startAt {
			hash := p.appendTx(caller, input, entities.TxStatusReverted)
			return 0, hash, domainerrors.ErrInvalidDuration
		}
	}

	id := p.nextProposalID
	p.nextProposalID++
	p.proposals[id] = &proposalState{
		Proposal: entities.Proposal{
			ID:           id,
			Title:        title,
			Text:         text,
			Creator:      creator,
			Authorizer:   authorizer,
			DecisionDate: decisionDate,
			StartAt:      startAt,
			EndAt:        endAt,
		},
		voted: make(map[common.Address]bool),
	}
	p.proposalOrder = append(p.proposalOrder, id)
	hash := p.appendTx(caller, input, entities.TxStatusSuccess)

	p.logger.Info("ledger proposal created",
		"event", "ledger_proposal_created",
		"module", "governance-core/ballot-ledger",
		"layer", "domain",
		"proposal_id", id,
		"start_at", startAt,
		"end_at", endAt,
		"tx_hash", hash.Hex(),
	)
	return id, hash, nil
}

// Vote records one yes/no vote for the caller. Voting is ungated by role;
// the per-address voted flag is the first double-vote defense.
func (p *Program) Vote(caller common.Address, proposalID uint64, supportYes bool) (entities.VoteOutcome, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	input := EncodeVoteCall(proposalID, supportYes)
	state, ok := p.proposals[proposalID]
	if !ok {
		hash := p.appendTx(caller, input, entities.TxStatusReverted)
		return entities.VoteOutcome{TxHash: hash}, domainerrors.ErrProposalNotFound
	}
	if state.Closed || (state.EndAt != 0 && p.clock.Now().Unix() >= state.EndAt) {
		hash := p.appendTx(caller, input, entities.TxStatusReverted)
		return entities.VoteOutcome{TxHash: hash}, domainerrors.ErrVotingClosed
	}
	if state.voted[caller] {
		hash := p.appendTx(caller, input, entities.TxStatusReverted)
		return entities.VoteOutcome{TxHash: hash}, domainerrors.ErrAlreadyVoted
	}

	state.voted[caller] = true
	if supportYes {
		state.Yes++
	} else {
		state.No++
	}
	hash := p.appendTx(caller, input, entities.TxStatusSuccess)
	outcome := entities.VoteOutcome{
		TxHash:      hash,
		BlockNumber: p.height,
		Yes:         state.Yes,
		No:          state.No,
	}

	p.logger.Info("ledger vote recorded",
		"event", "ledger_vote_recorded",
		"module", "governance-core/ballot-ledger",
		"layer", "domain",
		"proposal_id", proposalID,
		"voter", caller.Hex(),
		"support_yes", supportYes,
		"yes", outcome.Yes,
		"no", outcome.No,
		"tx_hash", hash.Hex(),
	)
	return outcome, nil
}

// Close transitions a proposal to the terminal closed state. Closing an
// already-closed proposal succeeds without effect.
func (p *Program) Close(caller common.Address, proposalID uint64) (common.Hash, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	input := encodeCloseCall(proposalID)
	if !p.hasProposalRole(caller) {
		hash := p.appendTx(caller, input, entities.TxStatusReverted)
		return hash, domainerrors.ErrUnauthorized
	}
	state, ok := p.proposals[proposalID]
	if !ok {
		hash := p.appendTx(caller, input, entities.TxStatusReverted)
		return hash, domainerrors.ErrProposalNotFound
	}
	if state.Closed {
		return p.appendTx(caller, input, entities.TxStatusSuccess), nil
	}
	if state.EndAt != 0 && p.clock.Now().Unix() < state.EndAt {
		hash := p.appendTx(caller, input, entities.TxStatusReverted)
		return hash, domainerrors.ErrNotClosableYet
	}

	state.Closed = true
	hash := p.appendTx(caller, input, entities.TxStatusSuccess)
	p.logger.Info("ledger proposal closed",
		"event", "ledger_proposal_closed",
		"module", "governance-core/ballot-ledger",
		"layer", "domain",
		"proposal_id", proposalID,
		"yes", state.Yes,
		"no", state.No,
		"tx_hash", hash.Hex(),
	)
	return hash, nil
}

// GrantRole adds an address to a role. Admin only.
func (p *Program) GrantRole(caller common.Address, role entities.Role, account common.Address) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	input := encodeRoleCall(grantSelector, string(role), account)
	members, ok := p.roles[role]
	if !ok {
		p.appendTx(caller, input, entities.TxStatusReverted)
		return domainerrors.ErrUnknownRole
	}
	if !p.roles[entities.RoleAdmin][caller] {
		p.appendTx(caller, input, entities.TxStatusReverted)
		return domainerrors.ErrUnauthorized
	}
	members[account] = true
	p.appendTx(caller, input, entities.TxStatusSuccess)
	return nil
}

// RevokeRole removes an address from a role. Admin only.
func (p *Program) RevokeRole(caller common.Address, role entities.Role, account common.Address) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	input := encodeRoleCall(revokeSelector, string(role), account)
	members, ok := p.roles[role]
	if !ok {
		p.appendTx(caller, input, entities.TxStatusReverted)
		return domainerrors.ErrUnknownRole
	}
	if !p.roles[entities.RoleAdmin][caller] {
		p.appendTx(caller, input, entities.TxStatusReverted)
		return domainerrors.ErrUnauthorized
	}
	delete(members, account)
	p.appendTx(caller, input, entities.TxStatusSuccess)
	return nil
}

// HasRole reports role membership.
func (p *Program) HasRole(role entities.Role, account common.Address) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.roles[role][account]
}

// GetProposal returns a snapshot of one proposal.
func (p *Program) GetProposal(proposalID uint64) (entities.Proposal, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	state, ok := p.proposals[proposalID]
	if !ok {
		return entities.Proposal{}, domainerrors.ErrProposalNotFound
	}
	return state.Proposal, nil
}

// ListProposals returns snapshots in creation order.
func (p *Program) ListProposals() []entities.Proposal {
	p.mu.RLock()
	defer p.mu.RUnlock()
	items := make([]entities.Proposal, 0, len(p.proposalOrder))
	for _, id := range p.proposalOrder {
		items = append(items, p.proposals[id].Proposal)
	}
	return items
}

// HasVoted reports whether an address already voted on a proposal.
func (p *Program) HasVoted(proposalID uint64, account common.Address) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	state, ok := p.proposals[proposalID]
	if !ok {
		return false, domainerrors.ErrProposalNotFound
	}
	return state.voted[account], nil
}

// CurrentWinner reports the leading side. exists is false whenever the
// counts are tied, the 0-0 case included.
func (p *Program) CurrentWinner(proposalID uint64) (yesWins bool, exists bool, err error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	state, ok := p.proposals[proposalID]
	if !ok {
		return false, false, domainerrors.ErrProposalNotFound
	}
	if state.Yes == state.No {
		return false, false, nil
	}
	return state.Yes > state.No, true, nil
}

// TransactionByHash looks up one log entry.
func (p *Program) TransactionByHash(hash common.Hash) (entities.TransactionRecord, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	record, ok := p.txByHash[hash]
	return record, ok
}

// TransactionsInOrder returns the full log in execution order. This is the
// replay surface used to rebuild derived stores.
func (p *Program) TransactionsInOrder() []entities.TransactionRecord {
	p.mu.RLock()
	defer p.mu.RUnlock()
	records := make([]entities.TransactionRecord, 0, len(p.txOrder))
	for _, hash := range p.txOrder {
		records = append(records, p.txByHash[hash])
	}
	return records
}

func (p *Program) hasProposalRole(caller common.Address) bool {
	return p.roles[entities.RoleAdmin][caller] || p.roles[entities.RoleCouncil][caller]
}

// appendTx assigns the next block number and stores the record. Callers must
// hold the write lock.
func (p *Program) appendTx(from common.Address, input []byte, status uint64) common.Hash {
	p.height++
	hash := transactionHash(p.height, from, input)
	record := entities.TransactionRecord{
		Hash:        hash,
		BlockNumber: p.height,
		From:        from,
		To:          p.address,
		Input:       input,
		Status:      status,
	}
	p.txByHash[hash] = record
	p.txOrder = append(p.txOrder, hash)
	return hash
}
