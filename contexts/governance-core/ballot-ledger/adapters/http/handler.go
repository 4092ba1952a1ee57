package httpadapter

import (
	"context"
	"log/slog"

	"agora/contexts/governance-core/ballot-ledger/domain/entities"
	domainerrors "agora/contexts/governance-core/ballot-ledger/domain/errors"
	"agora/contexts/governance-core/ballot-ledger/program"
	httptransport "agora/contexts/governance-core/ballot-ledger/transport/http"

	"github.com/ethereum/go-ethereum/common"
)

// Handler exposes the ledger program to the HTTP surface. Caller identity is
// the wallet address the boundary supplies; the program's role table does
// the actual gating.
type Handler struct {
	Program *program.Program
	Logger  *slog.Logger
}

func (h Handler) CreateProposalHandler(
	_ context.Context,
	caller string,
	req httptransport.CreateProposalRequest,
) (httptransport.CreateProposalResponse, error) {
	address, err := parseAddress(caller)
	if err != nil {
		return httptransport.CreateProposalResponse{}, err
	}
	id, txHash, err := h.Program.Create(
		address,
		req.Title, req.Text, req.Creator, req.Authorizer,
		req.DecisionDate, req.DurationSeconds,
	)
	if err != nil {
		return httptransport.CreateProposalResponse{}, err
	}
	proposal, err := h.Program.GetProposal(id)
	if err != nil {
		return httptransport.CreateProposalResponse{}, err
	}
	return httptransport.CreateProposalResponse{
		ProposalID:      id,
		TransactionHash: txHash.Hex(),
		StartAt:         proposal.StartAt,
		EndAt:           proposal.EndAt,
	}, nil
}

func (h Handler) CastBallotHandler(
	_ context.Context,
	caller string,
	proposalID uint64,
	req httptransport.BallotRequest,
) (httptransport.BallotResponse, error) {
	address, err := parseAddress(caller)
	if err != nil {
		return httptransport.BallotResponse{}, err
	}
	outcome, err := h.Program.Vote(address, proposalID, req.SupportYes)
	if err != nil {
		return httptransport.BallotResponse{}, err
	}
	return httptransport.BallotResponse{
		TransactionHash: outcome.TxHash.Hex(),
		BlockNumber:     outcome.BlockNumber,
		Yes:             outcome.Yes,
		No:              outcome.No,
	}, nil
}

func (h Handler) CloseProposalHandler(
	_ context.Context,
	caller string,
	proposalID uint64,
) (httptransport.CloseProposalResponse, error) {
	address, err := parseAddress(caller)
	if err != nil {
		return httptransport.CloseProposalResponse{}, err
	}
	txHash, err := h.Program.Close(address, proposalID)
	if err != nil {
		return httptransport.CloseProposalResponse{}, err
	}
	return httptransport.CloseProposalResponse{
		TransactionHash: txHash.Hex(),
		Closed:          true,
	}, nil
}

func (h Handler) GetProposalHandler(_ context.Context, proposalID uint64) (httptransport.ProposalResponse, error) {
	proposal, err := h.Program.GetProposal(proposalID)
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	yesWins, exists, err := h.Program.CurrentWinner(proposalID)
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	return httptransport.ProposalResponse{
		ProposalID:   proposal.ID,
		Title:        proposal.Title,
		Text:         proposal.Text,
		Creator:      proposal.Creator,
		Authorizer:   proposal.Authorizer,
		DecisionDate: proposal.DecisionDate,
		StartAt:      proposal.StartAt,
		EndAt:        proposal.EndAt,
		Closed:       proposal.Closed,
		Yes:          proposal.Yes,
		No:           proposal.No,
		YesWins:      yesWins,
		WinnerExists: exists,
	}, nil
}

func (h Handler) GrantRoleHandler(_ context.Context, caller string, req httptransport.RoleChangeRequest) error {
	address, err := parseAddress(caller)
	if err != nil {
		return err
	}
	account, err := parseAddress(req.Account)
	if err != nil {
		return err
	}
	return h.Program.GrantRole(address, entities.Role(req.Role), account)
}

func (h Handler) RevokeRoleHandler(_ context.Context, caller string, req httptransport.RoleChangeRequest) error {
	address, err := parseAddress(caller)
	if err != nil {
		return err
	}
	account, err := parseAddress(req.Account)
	if err != nil {
		return err
	}
	return h.Program.RevokeRole(address, entities.Role(req.Role), account)
}

func parseAddress(raw string) (common.Address, error) {
	if !common.IsHexAddress(raw) {
		return common.Address{}, domainerrors.ErrInvalidAddress
	}
	return common.HexToAddress(raw), nil
}
