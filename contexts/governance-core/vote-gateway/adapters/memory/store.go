package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"agora/contexts/governance-core/vote-gateway/domain/entities"
	domainerrors "agora/contexts/governance-core/vote-gateway/domain/errors"
	"agora/contexts/governance-core/vote-gateway/ports"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

type voteKey struct {
	proposalID uint64
	userID     string
}

// Store is the in-memory cache & tally store used for tests and local
// wiring. One mutex gives it the same atomic insert-plus-tally behavior the
// relational adapter gets from a transaction and the unique index.
type Store struct {
	mu sync.RWMutex

	votes    map[voteKey]entities.VoteRecord
	tallies  map[uint64]entities.VoteTally
	identity map[common.Address]string
}

func NewStore() *Store {
	return &Store{
		votes:    make(map[voteKey]entities.VoteRecord),
		tallies:  make(map[uint64]entities.VoteTally),
		identity: make(map[common.Address]string),
	}
}

// SetIdentity seeds a wallet-to-user mapping for replay resolution.
func (s *Store) SetIdentity(wallet common.Address, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity[wallet] = strings.TrimSpace(userID)
}

func (s *Store) InsertVote(_ context.Context, record entities.VoteRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := voteKey{proposalID: record.ProposalID, userID: strings.TrimSpace(record.UserID)}
	if _, exists := s.votes[key]; exists {
		return domainerrors.ErrAlreadyVoted
	}
	s.votes[key] = record

	// First association between a wallet and a user wins, mirroring the
	// relational adapter.
	if common.IsHexAddress(record.WalletAddress) && strings.ToLower(record.WalletAddress) != key.userID {
		wallet := common.HexToAddress(record.WalletAddress)
		if _, known := s.identity[wallet]; !known {
			s.identity[wallet] = key.userID
		}
	}

	tally := s.tallies[record.ProposalID]
	tally.ProposalID = record.ProposalID
	if record.VoteValue {
		tally.YesCount++
	} else {
		tally.NoCount++
	}
	tally.TotalVotes++
	s.tallies[record.ProposalID] = tally
	return nil
}

func (s *Store) HasVote(_ context.Context, proposalID uint64, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.votes[voteKey{proposalID: proposalID, userID: strings.TrimSpace(userID)}]
	return exists, nil
}

func (s *Store) GetTally(_ context.Context, proposalID uint64) (entities.VoteTally, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tally, ok := s.tallies[proposalID]
	if !ok {
		return entities.VoteTally{ProposalID: proposalID}, nil
	}
	return tally, nil
}

func (s *Store) ListVotes(_ context.Context, proposalID uint64) ([]entities.VoteRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.VoteRecord, 0)
	for key, record := range s.votes {
		if key.proposalID == proposalID {
			items = append(items, record)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].BlockNumber < items[j].BlockNumber
	})
	return items, nil
}

func (s *Store) EnsureTally(_ context.Context, proposalID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tallies[proposalID]; !ok {
		s.tallies[proposalID] = entities.VoteTally{ProposalID: proposalID}
	}
	return nil
}

func (s *Store) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votes = make(map[voteKey]entities.VoteRecord)
	s.tallies = make(map[uint64]entities.VoteTally)
	return nil
}

func (s *Store) UserIDByWallet(_ context.Context, wallet common.Address) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.identity[wallet]
	return userID, ok, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.VoteRepository = (*Store)(nil)
var _ ports.IdentityDirectory = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
