package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidClaimInput = errors.New("invalid vote claim input")

	// Verification rejections, in check order. Each is permanent: retrying
	// the same claim cannot change the result.
	ErrInvalidHashFormat   = errors.New("invalid hash format")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrTransactionFailed   = errors.New("transaction failed")
	ErrSenderMismatch      = errors.New("sender mismatch")
	ErrWrongContract       = errors.New("wrong contract")
	ErrWrongFunction       = errors.New("wrong function")
	ErrParameterMismatch   = errors.New("parameter mismatch")

	ErrAlreadyVoted     = errors.New("already voted")
	ErrProposalNotFound = errors.New("proposal not found")
)

// InfrastructureError marks a transient fault talking to the ledger node or
// the cache database. It is the only kind the caller may retry.
type InfrastructureError struct {
	Op  string
	Err error
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InfrastructureError) Unwrap() error {
	return e.Err
}

// Kind classifies gateway errors so callers can branch on retry semantics
// without matching message strings.
type Kind int

const (
	KindUnknown Kind = iota
	KindFormat
	KindNotFound
	KindPolicy
	KindStateConflict
	KindInfrastructure
)

func KindOf(err error) Kind {
	var infra *InfrastructureError
	switch {
	case err == nil:
		return KindUnknown
	case errors.As(err, &infra):
		return KindInfrastructure
	case errors.Is(err, ErrInvalidHashFormat), errors.Is(err, ErrInvalidClaimInput):
		return KindFormat
	case errors.Is(err, ErrTransactionNotFound), errors.Is(err, ErrProposalNotFound):
		return KindNotFound
	case errors.Is(err, ErrTransactionFailed),
		errors.Is(err, ErrSenderMismatch),
		errors.Is(err, ErrWrongContract),
		errors.Is(err, ErrWrongFunction),
		errors.Is(err, ErrParameterMismatch):
		return KindPolicy
	case errors.Is(err, ErrAlreadyVoted):
		return KindStateConflict
	default:
		return KindUnknown
	}
}

// Retryable reports whether a failed operation may be attempted again.
func Retryable(err error) bool {
	return KindOf(err) == KindInfrastructure
}
