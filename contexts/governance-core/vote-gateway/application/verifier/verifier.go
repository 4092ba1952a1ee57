package verifier

import (
	"context"
	"log/slog"
	"regexp"
	"time"

	application "agora/contexts/governance-core/vote-gateway/application"
	"agora/contexts/governance-core/vote-gateway/domain/calldata"
	"agora/contexts/governance-core/vote-gateway/domain/entities"
	domainerrors "agora/contexts/governance-core/vote-gateway/domain/errors"
	"agora/contexts/governance-core/vote-gateway/ports"

	"github.com/ethereum/go-ethereum/common"
)

// transactionHashPattern is the canonical fixed-length identifier shape:
// 0x followed by 64 hex digits.
var transactionHashPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// Verifier runs the ordered verification checks against the ledger read
// surface. Verification is idempotent and side-effect-free; a check failure
// is permanent and never retried, only ledger transport faults are retried
// with bounded backoff.
type Verifier struct {
	Ledger      ports.LedgerReader
	MaxAttempts int
	RetryDelay  time.Duration
	Logger      *slog.Logger
}

// Verify confirms that the claimed vote transaction occurred on the ledger
// exactly as claimed. The first failing check determines the rejection.
func (v Verifier) Verify(ctx context.Context, claim entities.VoteClaim) (entities.VerifiedTransaction, error) {
	logger := application.ResolveLogger(v.Logger)

	// Check 1: identifier shape.
	if !transactionHashPattern.MatchString(claim.TransactionHash) {
		logger.Warn("claim rejected on hash format",
			"event", "gateway_verify_hash_format_rejected",
			"module", "governance-core/vote-gateway",
			"layer", "application",
			"proposal_id", claim.ProposalID,
			"tx_hash", claim.TransactionHash,
		)
		return entities.VerifiedTransaction{}, domainerrors.ErrInvalidHashFormat
	}
	hash := common.HexToHash(claim.TransactionHash)

	// Check 2: the ledger knows this identifier.
	record, found, err := v.lookupWithRetry(ctx, hash)
	if err != nil {
		return entities.VerifiedTransaction{}, err
	}
	if !found {
		return entities.VerifiedTransaction{}, domainerrors.ErrTransactionNotFound
	}

	// Check 3: the recorded execution succeeded.
	if !record.Succeeded {
		return entities.VerifiedTransaction{}, domainerrors.ErrTransactionFailed
	}

	// Check 4: recorded caller equals the claimed wallet. Parsing both sides
	// makes the comparison case-insensitive.
	if record.From != common.HexToAddress(claim.WalletAddress) {
		logger.Warn("claim rejected on sender",
			"event", "gateway_verify_sender_rejected",
			"module", "governance-core/vote-gateway",
			"layer", "application",
			"proposal_id", claim.ProposalID,
			"tx_hash", hash.Hex(),
			"recorded_from", record.From.Hex(),
			"claimed_wallet", claim.WalletAddress,
		)
		return entities.VerifiedTransaction{}, domainerrors.ErrSenderMismatch
	}

	// Check 5: recorded destination is this deployment's program.
	if record.To != v.Ledger.ProgramAddress() {
		return entities.VerifiedTransaction{}, domainerrors.ErrWrongContract
	}

	// Check 6: the call targets the vote method.
	if !calldata.IsVoteCall(record.Input) {
		return entities.VerifiedTransaction{}, domainerrors.ErrWrongFunction
	}

	// Check 7: decoded parameters equal the claim.
	proposalID, supportYes, err := calldata.DecodeVoteParams(record.Input)
	if err != nil || proposalID != claim.ProposalID || supportYes != claim.VoteValue {
		return entities.VerifiedTransaction{}, domainerrors.ErrParameterMismatch
	}

	logger.Info("claim verified",
		"event", "gateway_verify_passed",
		"module", "governance-core/vote-gateway",
		"layer", "application",
		"proposal_id", claim.ProposalID,
		"tx_hash", hash.Hex(),
		"block_number", record.BlockNumber,
		"wallet", record.From.Hex(),
	)
	return entities.VerifiedTransaction{
		Hash:        record.Hash,
		BlockNumber: record.BlockNumber,
		From:        record.From,
	}, nil
}

// lookupWithRetry retries ledger lookups on transient faults only. A clean
// "not found" answer is authoritative and returned immediately.
func (v Verifier) lookupWithRetry(ctx context.Context, hash common.Hash) (ports.LedgerTransaction, bool, error) {
	logger := application.ResolveLogger(v.Logger)
	attempts := v.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	delay := v.RetryDelay
	if delay <= 0 {
		delay = 200 * time.Millisecond
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		record, found, err := v.Ledger.TransactionByHash(ctx, hash)
		if err == nil {
			return record, found, nil
		}
		if !domainerrors.Retryable(err) {
			return ports.LedgerTransaction{}, false, err
		}
		lastErr = err
		logger.Warn("ledger lookup failed; will retry",
			"event", "gateway_verify_ledger_lookup_retry",
			"module", "governance-core/vote-gateway",
			"layer", "application",
			"tx_hash", hash.Hex(),
			"attempt", attempt,
			"max_attempts", attempts,
			"error", err.Error(),
		)
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ports.LedgerTransaction{}, false, &domainerrors.InfrastructureError{
				Op:  "ledger lookup",
				Err: ctx.Err(),
			}
		case <-time.After(delay):
		}
		delay *= 2
	}
	return ports.LedgerTransaction{}, false, lastErr
}

var _ ports.ClaimVerifier = Verifier{}
