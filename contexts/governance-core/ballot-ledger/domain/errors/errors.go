package errors

import "errors"

var (
	ErrProposalNotFound = errors.New("proposal not found")
	ErrInvalidDuration  = errors.New("invalid proposal duration")
	ErrVotingClosed     = errors.New("voting is closed")
	ErrAlreadyVoted     = errors.New("address already voted")
	ErrNotClosableYet   = errors.New("proposal is not closable yet")
	ErrUnauthorized     = errors.New("caller lacks the required role")
	ErrUnknownRole      = errors.New("unknown role")
	ErrInvalidAddress   = errors.New("invalid address")
)
