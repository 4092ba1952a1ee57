package ledgeradapter

import (
	"context"

	ledgerentities "agora/contexts/governance-core/ballot-ledger/domain/entities"
	"agora/contexts/governance-core/ballot-ledger/program"
	"agora/contexts/governance-core/vote-gateway/ports"

	"github.com/ethereum/go-ethereum/common"
)

// Adapter projects the in-process ledger program onto the gateway's ledger
// ports. Authority is the address used for administrative close calls.
type Adapter struct {
	Program   *program.Program
	Authority common.Address
}

func (a Adapter) TransactionByHash(_ context.Context, hash common.Hash) (ports.LedgerTransaction, bool, error) {
	record, ok := a.Program.TransactionByHash(hash)
	if !ok {
		return ports.LedgerTransaction{}, false, nil
	}
	return toLedgerTransaction(record), true, nil
}

func (a Adapter) ProgramAddress() common.Address {
	return a.Program.Address()
}

func (a Adapter) TransactionsInOrder(_ context.Context) ([]ports.LedgerTransaction, error) {
	records := a.Program.TransactionsInOrder()
	items := make([]ports.LedgerTransaction, 0, len(records))
	for _, record := range records {
		items = append(items, toLedgerTransaction(record))
	}
	return items, nil
}

func (a Adapter) ListProposals(_ context.Context) ([]ports.ProposalSummary, error) {
	proposals := a.Program.ListProposals()
	items := make([]ports.ProposalSummary, 0, len(proposals))
	for _, proposal := range proposals {
		items = append(items, ports.ProposalSummary{
			ID:     proposal.ID,
			EndAt:  proposal.EndAt,
			Closed: proposal.Closed,
		})
	}
	return items, nil
}

func (a Adapter) Close(_ context.Context, proposalID uint64) error {
	_, err := a.Program.Close(a.Authority, proposalID)
	return err
}

func toLedgerTransaction(record ledgerentities.TransactionRecord) ports.LedgerTransaction {
	return ports.LedgerTransaction{
		Hash:        record.Hash,
		BlockNumber: record.BlockNumber,
		From:        record.From,
		To:          record.To,
		Input:       append([]byte(nil), record.Input...),
		Succeeded:   record.Status == ledgerentities.TxStatusSuccess,
	}
}

var _ ports.LedgerReader = Adapter{}
var _ ports.LedgerLog = Adapter{}
var _ ports.ProposalDirectory = Adapter{}
var _ ports.ProposalCloser = Adapter{}
