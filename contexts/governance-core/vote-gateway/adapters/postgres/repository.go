package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"agora/contexts/governance-core/vote-gateway/domain/entities"
	domainerrors "agora/contexts/governance-core/vote-gateway/domain/errors"
	"agora/contexts/governance-core/vote-gateway/ports"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the relational cache & tally store. Vote rows are
// insert-only under the (proposal_id, user_id) unique index; the tally row
// is maintained inside the same transaction as the insert so both read
// models stay consistent at every observed instant.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// InsertVote writes one vote row and bumps the tally atomically. A unique
// violation surfaces as the already-voted conflict; the caller treats it as
// the losing side of a submission race.
func (r *Repository) InsertVote(ctx context.Context, record entities.VoteRecord) error {
	row := voteModelFromEntity(record)

	yesDelta, noDelta := 0, 1
	if record.VoteValue {
		yesDelta, noDelta = 1, 0
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		// First association between a wallet and a platform user wins; it
		// is how replays resolve user ids after a cache loss.
		if wallet := strings.ToLower(row.WalletAddress); wallet != "" && wallet != row.UserID {
			identity := walletIdentityModel{
				WalletAddress: wallet,
				UserID:        row.UserID,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "wallet_address"}},
				DoNothing: true,
			}).Create(&identity).Error; err != nil {
				return err
			}
		}
		tally := tallyModel{
			ProposalID: record.ProposalID,
			YesCount:   uint64(yesDelta),
			NoCount:    uint64(noDelta),
			TotalVotes: 1,
		}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "proposal_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"yes_count":   gorm.Expr("vote_tallies.yes_count + ?", yesDelta),
				"no_count":    gorm.Expr("vote_tallies.no_count + ?", noDelta),
				"total_votes": gorm.Expr("vote_tallies.total_votes + 1"),
			}),
		}).Create(&tally).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyVoted
		}
		return r.logError("gateway_repo_insert_vote_failed", err,
			"proposal_id", record.ProposalID,
			"user_id", strings.TrimSpace(record.UserID),
		)
	}
	return nil
}

func (r *Repository) HasVote(ctx context.Context, proposalID uint64, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&voteModel{}).
		Where("proposal_id = ?", proposalID).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Count(&count).
		Error
	if err != nil {
		return false, r.logError("gateway_repo_has_vote_failed", err,
			"proposal_id", proposalID,
			"user_id", strings.TrimSpace(userID),
		)
	}
	return count > 0, nil
}

// GetTally reads the tally row. Proposals without cached votes read as all
// zeroes; the read never rescans vote rows.
func (r *Repository) GetTally(ctx context.Context, proposalID uint64) (entities.VoteTally, error) {
	var row tallyModel
	err := r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.VoteTally{ProposalID: proposalID}, nil
		}
		return entities.VoteTally{}, r.logError("gateway_repo_get_tally_failed", err,
			"proposal_id", proposalID,
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListVotes(ctx context.Context, proposalID uint64) ([]entities.VoteRecord, error) {
	var rows []voteModel
	err := r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("block_number ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("gateway_repo_list_votes_failed", err,
			"proposal_id", proposalID,
		)
	}
	items := make([]entities.VoteRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

// EnsureTally creates an all-zero tally row if none exists, used when
// seeding rebuilt caches with proposals that have no votes yet.
func (r *Repository) EnsureTally(ctx context.Context, proposalID uint64) error {
	tally := tallyModel{ProposalID: proposalID}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "proposal_id"}},
		DoNothing: true,
	}).Create(&tally).Error
	if err != nil {
		return r.logError("gateway_repo_ensure_tally_failed", err,
			"proposal_id", proposalID,
		)
	}
	return nil
}

// Reset wipes votes and tallies ahead of a replay rebuild.
func (r *Repository) Reset(ctx context.Context) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&voteModel{}).Error; err != nil {
			return err
		}
		return tx.Where("1 = 1").Delete(&tallyModel{}).Error
	})
	if err != nil {
		return r.logError("gateway_repo_reset_failed", err)
	}
	return nil
}

// UserIDByWallet resolves a wallet to the platform user it last voted as.
func (r *Repository) UserIDByWallet(ctx context.Context, wallet common.Address) (string, bool, error) {
	var row walletIdentityModel
	err := r.db.WithContext(ctx).
		Where("wallet_address = ?", strings.ToLower(wallet.Hex())).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, r.logError("gateway_repo_identity_lookup_failed", err,
			"wallet", wallet.Hex(),
		)
	}
	return row.UserID, true, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "governance-core/vote-gateway",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("gateway repository operation failed", fields...)
	return err
}

type voteModel struct {
	ID              string    `gorm:"column:id;primaryKey"`
	ProposalID      uint64    `gorm:"column:proposal_id;uniqueIndex:idx_votes_proposal_user"`
	UserID          string    `gorm:"column:user_id;uniqueIndex:idx_votes_proposal_user"`
	WalletAddress   string    `gorm:"column:wallet_address"`
	VoteValue       bool      `gorm:"column:vote_value"`
	TransactionHash string    `gorm:"column:transaction_hash"`
	BlockNumber     uint64    `gorm:"column:block_number"`
	CreatedAt       time.Time `gorm:"column:created_at"`
}

func (voteModel) TableName() string {
	return "votes"
}

func voteModelFromEntity(record entities.VoteRecord) voteModel {
	row := voteModel{
		ID:              strings.TrimSpace(record.VoteID),
		ProposalID:      record.ProposalID,
		UserID:          strings.TrimSpace(record.UserID),
		WalletAddress:   strings.TrimSpace(record.WalletAddress),
		VoteValue:       record.VoteValue,
		TransactionHash: strings.TrimSpace(record.TransactionHash),
		BlockNumber:     record.BlockNumber,
		CreatedAt:       record.CreatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return row
}

func (m voteModel) toEntity() entities.VoteRecord {
	return entities.VoteRecord{
		VoteID:          m.ID,
		ProposalID:      m.ProposalID,
		UserID:          m.UserID,
		WalletAddress:   m.WalletAddress,
		VoteValue:       m.VoteValue,
		TransactionHash: m.TransactionHash,
		BlockNumber:     m.BlockNumber,
		CreatedAt:       m.CreatedAt.UTC(),
	}
}

type walletIdentityModel struct {
	WalletAddress string `gorm:"column:wallet_address;primaryKey"`
	UserID        string `gorm:"column:user_id"`
}

func (walletIdentityModel) TableName() string {
	return "wallet_identities"
}

type tallyModel struct {
	ProposalID uint64 `gorm:"column:proposal_id;primaryKey"`
	YesCount   uint64 `gorm:"column:yes_count"`
	NoCount    uint64 `gorm:"column:no_count"`
	TotalVotes uint64 `gorm:"column:total_votes"`
}

func (tallyModel) TableName() string {
	return "vote_tallies"
}

func (m tallyModel) toEntity() entities.VoteTally {
	return entities.VoteTally{
		ProposalID: m.ProposalID,
		YesCount:   m.YesCount,
		NoCount:    m.NoCount,
		TotalVotes: m.TotalVotes,
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// SystemClock satisfies ports.Clock with wall time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator satisfies ports.IDGenerator with random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.VoteRepository = (*Repository)(nil)
var _ ports.IdentityDirectory = (*Repository)(nil)
var _ ports.Clock = SystemClock{}
var _ ports.IDGenerator = UUIDGenerator{}
